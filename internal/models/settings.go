package models

import "time"

// ShellConfig holds configuration for the webview shell process.
type ShellConfig struct {
	Path string   `yaml:"path"`           // Empty means lookup in PATH / next to the binary
	Args []string `yaml:"args,omitempty"` // Extra arguments passed to the shell
}

// ShortcutConfig holds the global shortcut binding.
type ShortcutConfig struct {
	Binding string `yaml:"binding"` // e.g. "ctrl+shift+space"
	Enabled bool   `yaml:"enabled"`
}

// UpdatesConfig holds settings for update checking.
type UpdatesConfig struct {
	CheckOnStartup bool       `yaml:"check_on_startup"`
	CheckFrequency string     `yaml:"check_frequency"` // "every_launch" | "daily" | "weekly"
	LastChecked    *time.Time `yaml:"last_checked,omitempty"`
}

// NotificationsConfig holds desktop notification toggles.
type NotificationsConfig struct {
	UpdateAvailable bool `yaml:"update_available"`
}

// TelemetryConfig holds opt-in usage reporting settings.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AnonymousID string `yaml:"anonymous_id,omitempty"`
}

// AppearanceConfig holds appearance settings forwarded to the shell.
type AppearanceConfig struct {
	Theme string `yaml:"theme"` // "system" | "light" | "dark"
}

// Settings represents global application settings.
// This corresponds to ~/.confab/settings.yaml.
type Settings struct {
	Version       int                 `yaml:"version"`
	Shell         ShellConfig         `yaml:"shell"`
	Shortcut      ShortcutConfig      `yaml:"shortcut"`
	Updates       UpdatesConfig       `yaml:"updates"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Appearance    AppearanceConfig    `yaml:"appearance"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Shell: ShellConfig{
			Path: "", // Empty means lookup in PATH
		},
		Shortcut: ShortcutConfig{
			Binding: "ctrl+shift+space",
			Enabled: true,
		},
		Updates: UpdatesConfig{
			CheckOnStartup: true,
			CheckFrequency: "daily",
			LastChecked:    nil,
		},
		Notifications: NotificationsConfig{
			UpdateAvailable: true,
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
		Appearance: AppearanceConfig{
			Theme: "system",
		},
	}
}
