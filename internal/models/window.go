package models

// WindowState is the shell-reported state of the main window.
// Focused is best-effort: some platforms grant focus silently or not at all.
type WindowState struct {
	Visible bool `json:"visible"`
	Focused bool `json:"focused"`
}
