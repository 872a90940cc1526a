package models

import "time"

// UpdateStatus summarizes the latest release check.
type UpdateStatus struct {
	Available     bool   `json:"available"`
	LatestVersion string `json:"latest_version,omitempty"`
	ReleaseURL    string `json:"release_url,omitempty"`
}

// StatusReport is the daemon status served on /v1/status.
type StatusReport struct {
	Version        string       `json:"version"`
	Codename       string       `json:"codename"`
	PID            int          `json:"pid"`
	Port           int          `json:"port"`
	StartedAt      time.Time    `json:"started_at"`
	ShellConnected bool         `json:"shell_connected"`
	Window         *WindowState `json:"window,omitempty"`
	Conversations  int          `json:"conversations"`
	Update         UpdateStatus `json:"update"`
}
