package window

import (
	"context"
	"errors"
	"testing"

	"github.com/confab-io/confab/internal/models"
)

// fakeHandle tracks visibility in memory and records the actions taken.
type fakeHandle struct {
	visible  bool
	focused  bool
	actions  []string
	stateErr error
	showErr  error
	hideErr  error
	focusErr error
}

func (f *fakeHandle) Show(ctx context.Context) error {
	f.actions = append(f.actions, "show")
	if f.showErr != nil {
		return f.showErr
	}
	f.visible = true
	return nil
}

func (f *fakeHandle) Hide(ctx context.Context) error {
	f.actions = append(f.actions, "hide")
	if f.hideErr != nil {
		return f.hideErr
	}
	f.visible = false
	f.focused = false
	return nil
}

func (f *fakeHandle) Focus(ctx context.Context) error {
	f.actions = append(f.actions, "focus")
	if f.focusErr != nil {
		return f.focusErr
	}
	f.focused = true
	return nil
}

func (f *fakeHandle) State(ctx context.Context) (models.WindowState, error) {
	if f.stateErr != nil {
		return models.WindowState{}, f.stateErr
	}
	return models.WindowState{Visible: f.visible, Focused: f.focused}, nil
}

func TestToggleFlipsVisibility(t *testing.T) {
	tests := []struct {
		name        string
		startHidden bool
		toggles     int
		wantVisible bool
	}{
		{name: "hidden after one toggle from visible", startHidden: false, toggles: 1, wantVisible: false},
		{name: "visible after one toggle from hidden", startHidden: true, toggles: 1, wantVisible: true},
		{name: "back to start after two toggles", startHidden: false, toggles: 2, wantVisible: true},
		{name: "odd toggle count flips", startHidden: true, toggles: 5, wantVisible: true},
		{name: "even toggle count restores", startHidden: true, toggles: 4, wantVisible: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handle := &fakeHandle{visible: !tt.startHidden}
			c := NewController(handle)

			for i := 0; i < tt.toggles; i++ {
				if err := c.Toggle(context.Background()); err != nil {
					t.Fatalf("Toggle() #%d error = %v", i+1, err)
				}
			}

			if handle.visible != tt.wantVisible {
				t.Errorf("visible after %d toggles = %v, want %v", tt.toggles, handle.visible, tt.wantVisible)
			}
		})
	}
}

func TestToggleShowsAndFocuses(t *testing.T) {
	handle := &fakeHandle{visible: false}
	c := NewController(handle)

	if err := c.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	want := []string{"show", "focus"}
	if len(handle.actions) != len(want) {
		t.Fatalf("actions = %v, want %v", handle.actions, want)
	}
	for i := range want {
		if handle.actions[i] != want[i] {
			t.Fatalf("actions = %v, want %v", handle.actions, want)
		}
	}
	if !handle.focused {
		t.Error("window not focused after toggle from hidden")
	}
}

func TestToggleReadsLiveState(t *testing.T) {
	// Visibility changed behind the controller's back; toggle must act
	// on the reported state, not on what the last call did.
	handle := &fakeHandle{visible: false}
	c := NewController(handle)

	if err := c.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !handle.visible {
		t.Fatal("window not visible after first toggle")
	}

	// The user hides the window through the shell directly.
	handle.visible = false

	if err := c.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !handle.visible {
		t.Error("toggle hid an already hidden window instead of showing it")
	}
}

func TestShowAndFocusWhenAlreadyVisible(t *testing.T) {
	handle := &fakeHandle{visible: true}
	c := NewController(handle)

	if err := c.ShowAndFocus(context.Background()); err != nil {
		t.Errorf("ShowAndFocus() on visible window error = %v, want nil", err)
	}
	if !handle.visible || !handle.focused {
		t.Errorf("window state = visible %v focused %v, want both true", handle.visible, handle.focused)
	}
}

func TestHideWhenAlreadyHidden(t *testing.T) {
	handle := &fakeHandle{visible: false}
	c := NewController(handle)

	if err := c.Hide(context.Background()); err != nil {
		t.Errorf("Hide() on hidden window error = %v, want nil", err)
	}
	if handle.visible {
		t.Error("window visible after Hide()")
	}
}

func TestToggleSurfacesStateError(t *testing.T) {
	stateErr := errors.New("shell not connected")
	handle := &fakeHandle{stateErr: stateErr}
	c := NewController(handle)

	err := c.Toggle(context.Background())
	if err == nil {
		t.Fatal("Toggle() error = nil, want error")
	}
	if !errors.Is(err, stateErr) {
		t.Errorf("Toggle() error = %v, want wrapped %v", err, stateErr)
	}
	if len(handle.actions) != 0 {
		t.Errorf("actions = %v after state failure, want none", handle.actions)
	}
}

func TestToggleSurfacesActionError(t *testing.T) {
	tests := []struct {
		name    string
		handle  *fakeHandle
		wantErr error
	}{
		{
			name:    "hide fails",
			handle:  &fakeHandle{visible: true, hideErr: errors.New("hide rejected")},
			wantErr: errors.New("hide rejected"),
		},
		{
			name:    "show fails",
			handle:  &fakeHandle{visible: false, showErr: errors.New("show rejected")},
			wantErr: errors.New("show rejected"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(tt.handle)
			err := c.Toggle(context.Background())
			if err == nil {
				t.Fatal("Toggle() error = nil, want error")
			}
		})
	}
}

func TestVisible(t *testing.T) {
	handle := &fakeHandle{visible: true}
	c := NewController(handle)

	visible, err := c.Visible(context.Background())
	if err != nil {
		t.Fatalf("Visible() error = %v", err)
	}
	if !visible {
		t.Error("Visible() = false, want true")
	}
}
