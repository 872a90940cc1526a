package router

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestParseMenuAction(t *testing.T) {
	tests := []struct {
		id   string
		want Action
	}{
		{id: "show", want: ActionShow},
		{id: "hide", want: ActionHide},
		{id: "quit", want: ActionQuit},
		{id: "", want: ActionUnknown},
		{id: "restart", want: ActionUnknown},
		{id: "Show", want: ActionUnknown},
		{id: "quit ", want: ActionUnknown},
	}

	for _, tt := range tests {
		t.Run("id "+tt.id, func(t *testing.T) {
			if got := ParseMenuAction(tt.id); got != tt.want {
				t.Errorf("ParseMenuAction(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{action: ActionToggle, want: "toggle"},
		{action: ActionShow, want: "show"},
		{action: ActionHide, want: "hide"},
		{action: ActionQuit, want: "quit"},
		{action: ActionUnknown, want: "unknown"},
		{action: Action(99), want: "unknown"},
	}

	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("Action(%d).String() = %q, want %q", tt.action, got, tt.want)
		}
	}
}

// recordingWindows records calls and signals each one on a channel so
// tests can wait for the router goroutine without sleeping.
type recordingWindows struct {
	mu    sync.Mutex
	calls []string
	seen  chan string
	err   error
}

func newRecordingWindows() *recordingWindows {
	return &recordingWindows{seen: make(chan string, 32)}
}

func (w *recordingWindows) record(name string) error {
	w.mu.Lock()
	w.calls = append(w.calls, name)
	w.mu.Unlock()
	w.seen <- name
	return w.err
}

func (w *recordingWindows) Toggle(ctx context.Context) error       { return w.record("toggle") }
func (w *recordingWindows) ShowAndFocus(ctx context.Context) error { return w.record("show") }
func (w *recordingWindows) Hide(ctx context.Context) error         { return w.record("hide") }

func (w *recordingWindows) waitFor(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-w.seen:
		if got != want {
			t.Fatalf("window call = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func TestRunRoutesActions(t *testing.T) {
	windows := newRecordingWindows()
	r := New(windows)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Dispatch(ActionToggle)
	windows.waitFor(t, "toggle")
	r.Dispatch(ActionShow)
	windows.waitFor(t, "show")
	r.Dispatch(ActionHide)
	windows.waitFor(t, "hide")
	r.Dispatch(ActionToggle)
	windows.waitFor(t, "toggle")
}

func TestRunQuitCallsExit(t *testing.T) {
	windows := newRecordingWindows()
	r := New(windows)

	exited := make(chan int, 1)
	r.SetExit(func(code int) { exited <- code })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Dispatch(ActionQuit)

	select {
	case code := <-exited:
		if code != 0 {
			t.Errorf("exit code = %d, want 0", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for exit")
	}

	windows.mu.Lock()
	defer windows.mu.Unlock()
	if len(windows.calls) != 0 {
		t.Errorf("quit touched the window: calls = %v", windows.calls)
	}
}

func TestRunIgnoresUnknown(t *testing.T) {
	windows := newRecordingWindows()
	r := New(windows)
	r.SetExit(func(code int) { t.Errorf("exit(%d) called for unknown action", code) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Dispatch(ActionUnknown)
	r.Dispatch(ActionToggle)

	// The toggle after the unknown action proves the loop is alive
	// and the unknown one was skipped.
	windows.waitFor(t, "toggle")

	windows.mu.Lock()
	defer windows.mu.Unlock()
	if len(windows.calls) != 1 {
		t.Errorf("calls = %v, want just the toggle", windows.calls)
	}
}

func TestRunContinuesAfterWindowError(t *testing.T) {
	windows := newRecordingWindows()
	windows.err = errors.New("shell unreachable")
	r := New(windows)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Dispatch(ActionToggle)
	windows.waitFor(t, "toggle")
	r.Dispatch(ActionShow)
	windows.waitFor(t, "show")
}

func TestRunHandlesSerially(t *testing.T) {
	// Each handler sleeps briefly while tracking concurrent entries.
	// With one consumer the active count can never exceed one.
	var mu sync.Mutex
	active, maxActive, handled := 0, 0, 0

	windows := &serialWindows{enter: func() {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		active--
		handled++
		mu.Unlock()
	}}

	r := New(windows)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	const n = 8
	for i := 0; i < n; i++ {
		r.Dispatch(ActionToggle)
	}

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		done := handled == n
		mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out: handled %d of %d", handled, n)
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if maxActive != 1 {
		t.Errorf("max concurrent handlers = %d, want 1", maxActive)
	}
}

type serialWindows struct {
	enter func()
}

func (w *serialWindows) Toggle(ctx context.Context) error       { w.enter(); return nil }
func (w *serialWindows) ShowAndFocus(ctx context.Context) error { w.enter(); return nil }
func (w *serialWindows) Hide(ctx context.Context) error         { w.enter(); return nil }
