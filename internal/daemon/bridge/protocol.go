package bridge

import "github.com/confab-io/confab/internal/models"

// Frame types on the shell socket.
const (
	FrameHello   = "hello"
	FrameCommand = "command"
	FrameResult  = "result"
	FrameState   = "state"
)

// Window operations the daemon can ask of the shell.
const (
	OpShow  = "show"
	OpHide  = "hide"
	OpFocus = "focus"
)

// Frame is the envelope for every message on the shell socket, in both
// directions. Which fields are set depends on Type:
//
//	hello    shell → daemon   Shell, Window
//	command  daemon → shell   ID, Op
//	result   shell → daemon   ID, OK, Error, Window
//	state    shell → daemon   Window
type Frame struct {
	Type   string              `json:"type"`
	ID     string              `json:"id,omitempty"`
	Op     string              `json:"op,omitempty"`
	OK     bool                `json:"ok,omitempty"`
	Error  string              `json:"error,omitempty"`
	Shell  *ShellIdentity      `json:"shell,omitempty"`
	Window *models.WindowState `json:"window,omitempty"`
}

// ShellIdentity describes the shell process on the other end of the
// socket. Sent once in the hello frame.
type ShellIdentity struct {
	PID     int    `json:"pid"`
	Version string `json:"version"`
}
