package models

// ShellLogEntry represents metadata for a single shell session log.
type ShellLogEntry struct {
	LogID     string `yaml:"log_id"`
	ShellPath string `yaml:"shell_path"`
	PID       int    `yaml:"pid"`
	StartedAt string `yaml:"started_at"`
}
