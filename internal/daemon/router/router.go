// Package router turns tray and shortcut events into window actions.
package router

import (
	"context"
	"log"
	"os"
)

// Action is a parsed user intent from the tray or the global shortcut.
// Raw event identifiers are mapped to an Action once, at the boundary
// where the event arrives; everything downstream works on this type.
type Action int

const (
	// ActionUnknown is any event identifier the router does not
	// recognize. It is ignored.
	ActionUnknown Action = iota
	// ActionToggle flips window visibility. Emitted by tray icon
	// clicks and the global shortcut.
	ActionToggle
	// ActionShow makes the window visible and focused.
	ActionShow
	// ActionHide hides the window.
	ActionHide
	// ActionQuit exits the daemon immediately.
	ActionQuit
)

// String returns the action name for logging.
func (a Action) String() string {
	switch a {
	case ActionToggle:
		return "toggle"
	case ActionShow:
		return "show"
	case ActionHide:
		return "hide"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Menu item identifiers. These are the stable IDs the tray menu is
// built with; renaming a visible label must not change them.
const (
	MenuIDShow = "show"
	MenuIDHide = "hide"
	MenuIDQuit = "quit"
)

// ParseMenuAction maps a tray menu item identifier to its action.
// Identifiers outside the known set parse to ActionUnknown.
func ParseMenuAction(id string) Action {
	switch id {
	case MenuIDShow:
		return ActionShow
	case MenuIDHide:
		return ActionHide
	case MenuIDQuit:
		return ActionQuit
	default:
		return ActionUnknown
	}
}

// Windows is the subset of window control the router drives.
type Windows interface {
	Toggle(ctx context.Context) error
	ShowAndFocus(ctx context.Context) error
	Hide(ctx context.Context) error
}

// Router consumes actions from a single channel and applies them one
// at a time. Events arrive at human frequency, so a handler always
// runs to completion before the next event is taken.
type Router struct {
	events  chan Action
	windows Windows
	exit    func(code int)
}

// New creates a router driving the given window controller.
func New(windows Windows) *Router {
	return &Router{
		events:  make(chan Action, 16),
		windows: windows,
		exit:    func(code int) { os.Exit(code) },
	}
}

// SetExit replaces the process exit function invoked on ActionQuit.
func (r *Router) SetExit(fn func(code int)) {
	r.exit = fn
}

// Dispatch queues an action for the router. It never blocks the
// caller; if the queue is somehow full the event is dropped with a
// log line rather than stalling a tray or shortcut callback.
func (r *Router) Dispatch(a Action) {
	select {
	case r.events <- a:
	default:
		log.Printf("Event queue full, dropping %s", a)
	}
}

// Run processes actions until the context is canceled. It is the only
// consumer of the event channel.
func (r *Router) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-r.events:
			r.handle(ctx, a)
		}
	}
}

func (r *Router) handle(ctx context.Context, a Action) {
	switch a {
	case ActionToggle:
		if err := r.windows.Toggle(ctx); err != nil {
			log.Printf("Failed to toggle window: %v", err)
		}
	case ActionShow:
		if err := r.windows.ShowAndFocus(ctx); err != nil {
			log.Printf("Failed to show window: %v", err)
		}
	case ActionHide:
		if err := r.windows.Hide(ctx); err != nil {
			log.Printf("Failed to hide window: %v", err)
		}
	case ActionQuit:
		// Quit ignores window state entirely. No teardown beyond
		// what the process exit hooks already do.
		log.Printf("Quit requested, exiting")
		r.exit(0)
	default:
		log.Printf("Ignoring unknown action")
	}
}
