package models

// PlatformInfo is the environment report returned by get_platform_info.
// Native tells the frontend it is talking to the host daemon rather than
// being loaded as a plain web page.
type PlatformInfo struct {
	Platform string `json:"platform"`
	Arch     string `json:"arch"`
	Version  string `json:"version"`
	Native   bool   `json:"is_native"`
}
