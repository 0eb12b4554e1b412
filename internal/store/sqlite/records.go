package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vnforge/internal/store"
)

func (c *Client) LoadPresets(ctx context.Context) ([]store.Preset, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name, data FROM presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying presets: %w", err)
	}
	defer rows.Close()

	var presets []store.Preset
	for rows.Next() {
		var (
			name string
			data string
		)
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("scanning preset: %w", err)
		}
		presets = append(presets, store.Preset{Name: name, Data: []byte(data)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating presets: %w", err)
	}
	return presets, nil
}

func (c *Client) SavePreset(ctx context.Context, name string, data []byte) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("preset name is required")
	}
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO presets (name, data, updated_at)
	VALUES (?, ?, datetime('now'))
	ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, string(data))
	if err != nil {
		return fmt.Errorf("saving preset %q: %w", name, err)
	}
	return nil
}

func (c *Client) DeletePreset(ctx context.Context, name string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting preset %q: %w", name, err)
	}
	return nil
}

func (c *Client) LoadProject(ctx context.Context) ([]byte, error) {
	var data string
	err := c.db.QueryRowContext(ctx, `SELECT data FROM project WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return []byte(data), nil
}

func (c *Client) SaveProject(ctx context.Context, data []byte) error {
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO project (id, data, updated_at)
	VALUES (1, ?, datetime('now'))
	ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data))
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}
