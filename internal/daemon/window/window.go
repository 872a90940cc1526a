// Package window coordinates visibility actions for the shell window.
package window

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/confab-io/confab/internal/models"
)

// ErrUnavailable reports that no shell process is connected to act on
// the window. Handle implementations wrap it so callers can tell a
// missing shell apart from a shell that refused an action.
var ErrUnavailable = errors.New("shell window unavailable")

// Handle performs visibility actions on the actual shell window. The
// daemon talks to the window through this interface so the controller
// never depends on how the shell process is reached.
type Handle interface {
	// Show makes the window visible.
	Show(ctx context.Context) error
	// Hide removes the window from view without exiting the shell.
	Hide(ctx context.Context) error
	// Focus brings the window to the foreground. Best effort on
	// platforms where focus stealing is restricted.
	Focus(ctx context.Context) error
	// State reports the window state as the shell currently sees it.
	State(ctx context.Context) (models.WindowState, error)
}

// Controller serializes visibility actions against a window handle.
// Each action reads the live window state first, so a toggle decided
// against stale local bookkeeping cannot happen.
type Controller struct {
	mu     sync.Mutex
	handle Handle
}

// NewController creates a controller for the given window handle.
func NewController(handle Handle) *Controller {
	return &Controller{handle: handle}
}

// Toggle hides the window when it is visible and shows and focuses it
// when it is not. The decision is based on the state the shell reports
// at call time, not on the outcome of earlier toggles.
func (c *Controller) Toggle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, err := c.handle.State(ctx)
	if err != nil {
		return fmt.Errorf("reading window state: %w", err)
	}

	if state.Visible {
		if err := c.handle.Hide(ctx); err != nil {
			return fmt.Errorf("hiding window: %w", err)
		}
		return nil
	}

	return c.showAndFocusLocked(ctx)
}

// ShowAndFocus makes the window visible and brings it to the
// foreground. Calling it while the window is already visible only
// re-focuses it.
func (c *Controller) ShowAndFocus(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showAndFocusLocked(ctx)
}

func (c *Controller) showAndFocusLocked(ctx context.Context) error {
	if err := c.handle.Show(ctx); err != nil {
		return fmt.Errorf("showing window: %w", err)
	}
	if err := c.handle.Focus(ctx); err != nil {
		return fmt.Errorf("focusing window: %w", err)
	}
	return nil
}

// Hide removes the window from view. Hiding an already hidden window
// is not an error.
func (c *Controller) Hide(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.handle.Hide(ctx); err != nil {
		return fmt.Errorf("hiding window: %w", err)
	}
	return nil
}

// Visible reports whether the shell currently shows the window.
func (c *Controller) Visible(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, err := c.handle.State(ctx)
	if err != nil {
		return false, fmt.Errorf("reading window state: %w", err)
	}
	return state.Visible, nil
}
