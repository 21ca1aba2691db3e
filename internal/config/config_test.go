package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "downloads.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const validYAML = `
version: 1
downloads:
  parts:
    folder: /tmp/parts
    base_url: https://example/search?q=
    filename_mode: title
    items:
      - ABC123
      - XYZ789
  appnotes:
    folder: /tmp/appnotes
    base_url: https://example/an?q=
    items:
      - AN-100
`

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("version = %d, want 1", cfg.Version)
	}
	if len(cfg.Downloads) != 2 {
		t.Fatalf("got %d collections, want 2", len(cfg.Downloads))
	}

	parts := cfg.Downloads["parts"]
	if parts.Folder != "/tmp/parts" {
		t.Errorf("folder = %q", parts.Folder)
	}
	if parts.Mode() != ModeTitle {
		t.Errorf("mode = %q, want %q", parts.Mode(), ModeTitle)
	}
	if len(parts.Items) != 2 || parts.Items[0] != "ABC123" {
		t.Errorf("items = %v", parts.Items)
	}

	// filename_mode omitted defaults to item naming
	if cfg.Downloads["appnotes"].Mode() != ModeItem {
		t.Errorf("appnotes mode = %q, want %q", cfg.Downloads["appnotes"].Mode(), ModeItem)
	}
}

func TestCollectionsStableOrder(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cols := cfg.Collections()
	if len(cols) != 2 {
		t.Fatalf("got %d collections, want 2", len(cols))
	}
	if cols[0].Name != "appnotes" || cols[1].Name != "parts" {
		t.Errorf("order = %s, %s; want appnotes, parts", cols[0].Name, cols[1].Name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing version",
			yaml:    "downloads:\n  a:\n    folder: /x\n    base_url: u\n    items: [i]\n",
			wantErr: "version",
		},
		{
			name:    "unsupported version",
			yaml:    "version: 2\ndownloads:\n  a:\n    folder: /x\n    base_url: u\n    items: [i]\n",
			wantErr: "unsupported config version",
		},
		{
			name:    "missing downloads",
			yaml:    "version: 1\n",
			wantErr: "downloads",
		},
		{
			name:    "missing folder",
			yaml:    "version: 1\ndownloads:\n  a:\n    base_url: u\n    items: [i]\n",
			wantErr: "'folder'",
		},
		{
			name:    "missing base_url",
			yaml:    "version: 1\ndownloads:\n  a:\n    folder: /x\n    items: [i]\n",
			wantErr: "'base_url'",
		},
		{
			name:    "bad filename_mode",
			yaml:    "version: 1\ndownloads:\n  a:\n    folder: /x\n    base_url: u\n    filename_mode: upper\n    items: [i]\n",
			wantErr: "filename_mode",
		},
		{
			name:    "missing items",
			yaml:    "version: 1\ndownloads:\n  a:\n    folder: /x\n    base_url: u\n",
			wantErr: "'items'",
		},
		{
			name:    "empty item",
			yaml:    "version: 1\ndownloads:\n  a:\n    folder: /x\n    base_url: u\n    items: [\"\"]\n",
			wantErr: "empty item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
