package config

import (
	"path/filepath"
	"testing"

	"github.com/confab-io/confab/internal/models"
)

func TestSaveLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.yaml")

	in := models.NewSettings()
	in.Shortcut.Binding = "ctrl+shift+k"
	in.Shell.Path = "/opt/confab/confab-shell"

	if err := SaveYAML(path, in); err != nil {
		t.Fatalf("SaveYAML() error = %v", err)
	}

	var out models.Settings
	if err := LoadYAML(path, &out); err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}

	if out.Shortcut.Binding != "ctrl+shift+k" {
		t.Errorf("Shortcut.Binding = %q, want %q", out.Shortcut.Binding, "ctrl+shift+k")
	}
	if out.Shell.Path != "/opt/confab/confab-shell" {
		t.Errorf("Shell.Path = %q, want %q", out.Shell.Path, "/opt/confab/confab-shell")
	}
	if out.Version != 1 {
		t.Errorf("Version = %d, want 1", out.Version)
	}
}

func TestLoadYAMLMissingFile(t *testing.T) {
	var out models.Settings
	err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"), &out)
	if err == nil {
		t.Fatal("LoadYAML() on missing file: expected error, got nil")
	}
}

func TestLoadYAMLOrDefault(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		writeFirst  bool
		wantBinding string
	}{
		{
			name:        "missing file returns defaults",
			writeFirst:  false,
			wantBinding: "ctrl+shift+space",
		},
		{
			name:        "existing file wins over defaults",
			writeFirst:  true,
			wantBinding: "ctrl+alt+c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if tt.writeFirst {
				s := models.NewSettings()
				s.Shortcut.Binding = "ctrl+alt+c"
				if err := SaveYAML(path, s); err != nil {
					t.Fatalf("SaveYAML() error = %v", err)
				}
			}

			got, err := LoadYAMLOrDefault(path, models.NewSettings)
			if err != nil {
				t.Fatalf("LoadYAMLOrDefault() error = %v", err)
			}
			if got.Shortcut.Binding != tt.wantBinding {
				t.Errorf("Shortcut.Binding = %q, want %q", got.Shortcut.Binding, tt.wantBinding)
			}
		})
	}
}
