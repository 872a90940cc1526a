package tray

// State is the daemon state the tray reads for display. Implemented
// by the server package to avoid a dependency cycle.
type State interface {
	// Port returns the port the daemon server is listening on.
	Port() int
	// ShellConnected reports whether a shell process is attached.
	ShellConnected() bool
	// WindowVisible reports the current window state. known is false
	// while no shell is connected.
	WindowVisible() (visible, known bool)
	// ConversationCount returns the number of stored conversations.
	ConversationCount() int
}
