//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	dsn := os.Getenv("VNFORGE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VNFORGE_TEST_POSTGRES_DSN is not set")
	}
	ctx := context.Background()
	client, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(ctx) })
	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := client.pool.Exec(ctx, `TRUNCATE presets, project`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return client
}

func TestPresets(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if err := client.SavePreset(ctx, "ana", []byte(`{"baseType":"male"}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := client.SavePreset(ctx, "ana", []byte(`{"baseType":"female"}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	presets, err := client.LoadPresets(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(presets) != 1 || presets[0].Name != "ana" {
		t.Fatalf("unexpected presets: %+v", presets)
	}
	var decoded map[string]string
	if err := json.Unmarshal(presets[0].Data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["baseType"] != "female" {
		t.Fatalf("expected overwritten preset, got %v", decoded)
	}

	if err := client.DeletePreset(ctx, "ana"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := client.DeletePreset(ctx, "ana"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	presets, err = client.LoadPresets(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(presets) != 0 {
		t.Fatalf("expected no presets, got %+v", presets)
	}
}

func TestProject(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	data, err := client.LoadProject(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if data != nil {
		t.Fatalf("expected no project, got %s", data)
	}

	// stored verbatim, even when it is not valid JSON
	if err := client.SaveProject(ctx, []byte(`{not json`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err = client.LoadProject(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `{not json` {
		t.Fatalf("unexpected project data: %s", data)
	}
}
