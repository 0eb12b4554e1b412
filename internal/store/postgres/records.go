package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"vnforge/internal/store"
)

func (c *Client) LoadPresets(ctx context.Context) ([]store.Preset, error) {
	rows, err := c.pool.Query(ctx, `SELECT name, data FROM presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying presets: %w", err)
	}
	presets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Preset, error) {
		var preset store.Preset
		err := row.Scan(&preset.Name, &preset.Data)
		return preset, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning presets: %w", err)
	}
	return presets, nil
}

func (c *Client) SavePreset(ctx context.Context, name string, data []byte) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("preset name is required")
	}
	_, err := c.pool.Exec(ctx, `
INSERT INTO presets (name, data, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		name, string(data))
	if err != nil {
		return fmt.Errorf("saving preset %q: %w", name, err)
	}
	return nil
}

func (c *Client) DeletePreset(ctx context.Context, name string) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM presets WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting preset %q: %w", name, err)
	}
	return nil
}

func (c *Client) LoadProject(ctx context.Context) ([]byte, error) {
	var data string
	err := c.pool.QueryRow(ctx, `SELECT data FROM project WHERE id = 1`).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return []byte(data), nil
}

func (c *Client) SaveProject(ctx context.Context, data []byte) error {
	_, err := c.pool.Exec(ctx, `
INSERT INTO project (id, data, updated_at)
VALUES (1, $1, now())
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		string(data))
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}
