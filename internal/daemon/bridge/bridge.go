// Package bridge connects the daemon to the shell window over a
// websocket. The shell dials in, announces itself with a hello frame,
// and from then on the daemon drives the window by sending command
// frames and reading result and state frames back.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/confab-io/confab/internal/daemon/window"
	"github.com/confab-io/confab/internal/models"
)

const (
	// helloTimeout bounds how long a fresh connection may stay silent
	// before it is rejected.
	helloTimeout = 10 * time.Second
	// commandTimeout bounds the round trip for a single window command.
	commandTimeout = 5 * time.Second
)

// session is one connected shell. At most one exists at a time.
type session struct {
	conn   *websocket.Conn
	shell  ShellIdentity
	state  models.WindowState // guarded by Bridge.mu after attach
	cancel context.CancelFunc
}

type commandResult struct {
	err error
}

// Bridge accepts the shell's websocket connection and implements
// window.Handle on top of it. A new hello replaces any previous
// connection; while no shell is connected every window action fails
// with window.ErrUnavailable.
type Bridge struct {
	mu      sync.Mutex
	session *session
	pending map[string]chan commandResult // keyed by command frame ID
	ready   bool
	readyCh chan struct{} // closed while ready; remade on disconnect
}

// New creates a bridge with no shell attached.
func New() *Bridge {
	return &Bridge{
		pending: make(map[string]chan commandResult),
		readyCh: make(chan struct{}),
	}
}

// HandleSocket upgrades the request and services the shell connection
// until it drops. Mounted by the daemon server on the shell socket
// route.
func (b *Bridge) HandleSocket(w http.ResponseWriter, r *http.Request) {
	// The shell dials from the local webview process; its origin
	// header varies by platform, so the origin check is skipped.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		log.Printf("Failed to accept shell connection: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	helloCtx, helloCancel := context.WithTimeout(ctx, helloTimeout)
	var hello Frame
	err = wsjson.Read(helloCtx, conn, &hello)
	helloCancel()
	if err != nil || hello.Type != FrameHello || hello.Shell == nil {
		log.Printf("Rejecting shell connection without hello frame")
		conn.Close(websocket.StatusPolicyViolation, "expected hello frame")
		return
	}

	sess := &session{conn: conn, shell: *hello.Shell, cancel: cancel}
	if hello.Window != nil {
		sess.state = *hello.Window
	}
	b.attach(sess)
	log.Printf("Shell connected (pid %d, version %s)", sess.shell.PID, sess.shell.Version)

	b.readLoop(ctx, sess)

	b.detach(sess)
	conn.Close(websocket.StatusNormalClosure, "")
}

// attach installs sess as the active session, displacing any previous
// shell connection.
func (b *Bridge) attach(sess *session) {
	b.mu.Lock()
	old := b.session
	b.session = sess
	var stale map[string]chan commandResult
	if old != nil {
		// Commands in flight were addressed to the old shell and
		// will never be answered.
		stale = b.takePendingLocked()
	}
	if !b.ready {
		b.ready = true
		close(b.readyCh)
	}
	b.mu.Unlock()

	failPending(stale)
	if old != nil {
		log.Printf("Replacing previous shell connection (pid %d)", old.shell.PID)
		old.cancel()
		old.conn.Close(websocket.StatusPolicyViolation, "replaced by a newer shell connection")
	}
}

// detach clears sess if it is still the active session and fails its
// in-flight commands.
func (b *Bridge) detach(sess *session) {
	b.mu.Lock()
	if b.session != sess {
		b.mu.Unlock()
		return
	}
	b.session = nil
	b.ready = false
	b.readyCh = make(chan struct{})
	stale := b.takePendingLocked()
	b.mu.Unlock()

	failPending(stale)
	log.Printf("Shell disconnected (pid %d)", sess.shell.PID)
}

func (b *Bridge) takePendingLocked() map[string]chan commandResult {
	pending := b.pending
	b.pending = make(map[string]chan commandResult)
	return pending
}

func failPending(pending map[string]chan commandResult) {
	for _, ch := range pending {
		ch <- commandResult{err: window.ErrUnavailable}
	}
}

func (b *Bridge) readLoop(ctx context.Context, sess *session) {
	for {
		var frame Frame
		if err := wsjson.Read(ctx, sess.conn, &frame); err != nil {
			if ctx.Err() == nil {
				log.Printf("Shell connection lost: %v", err)
			}
			return
		}

		switch frame.Type {
		case FrameResult:
			if frame.Window != nil {
				b.storeState(sess, *frame.Window)
			}
			b.deliverResult(frame)
		case FrameState:
			if frame.Window != nil {
				b.storeState(sess, *frame.Window)
			}
		case FrameHello:
			// A repeated hello refreshes identity and state in place.
			b.mu.Lock()
			if b.session == sess {
				if frame.Shell != nil {
					sess.shell = *frame.Shell
				}
				if frame.Window != nil {
					sess.state = *frame.Window
				}
			}
			b.mu.Unlock()
		default:
			log.Printf("Ignoring unknown frame type %q from shell", frame.Type)
		}
	}
}

func (b *Bridge) storeState(sess *session, state models.WindowState) {
	b.mu.Lock()
	if b.session == sess {
		sess.state = state
	}
	b.mu.Unlock()
}

func (b *Bridge) deliverResult(frame Frame) {
	b.mu.Lock()
	ch, ok := b.pending[frame.ID]
	if ok {
		delete(b.pending, frame.ID)
	}
	b.mu.Unlock()

	if !ok {
		// The waiter timed out or the command belonged to a replaced
		// connection.
		log.Printf("Dropping result for unknown command %s", frame.ID)
		return
	}

	var res commandResult
	if !frame.OK {
		msg := frame.Error
		if msg == "" {
			msg = "unspecified shell error"
		}
		res.err = errors.New(msg)
	}
	ch <- res
}

// command sends one window operation and waits for its result frame.
func (b *Bridge) command(ctx context.Context, op string) error {
	b.mu.Lock()
	sess := b.session
	var id string
	var ch chan commandResult
	if sess != nil {
		id = uuid.NewString()
		ch = make(chan commandResult, 1)
		b.pending[id] = ch
	}
	b.mu.Unlock()

	if sess == nil {
		return fmt.Errorf("%s: %w", op, window.ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	defer func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
	}()

	if err := wsjson.Write(ctx, sess.conn, Frame{Type: FrameCommand, ID: id, Op: op}); err != nil {
		return fmt.Errorf("sending %s to shell: %w", op, err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting for shell %s result: %w", op, ctx.Err())
	case res := <-ch:
		if res.err != nil {
			if errors.Is(res.err, window.ErrUnavailable) {
				return fmt.Errorf("%s: %w", op, res.err)
			}
			return fmt.Errorf("shell %s failed: %w", op, res.err)
		}
		return nil
	}
}

// Show asks the shell to make the window visible.
func (b *Bridge) Show(ctx context.Context) error {
	return b.command(ctx, OpShow)
}

// Hide asks the shell to hide the window.
func (b *Bridge) Hide(ctx context.Context) error {
	return b.command(ctx, OpHide)
}

// Focus asks the shell to bring the window to the foreground.
func (b *Bridge) Focus(ctx context.Context) error {
	return b.command(ctx, OpFocus)
}

// State returns the window state the shell last reported. No round
// trip: the shell pushes changes as they happen.
func (b *Bridge) State(ctx context.Context) (models.WindowState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return models.WindowState{}, window.ErrUnavailable
	}
	return b.session.state, nil
}

// Connected reports whether a shell is currently attached.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session != nil
}

// ShellInfo returns the identity of the attached shell, if any.
func (b *Bridge) ShellInfo() (ShellIdentity, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return ShellIdentity{}, false
	}
	return b.session.shell, true
}

// WaitReady blocks until a shell has connected or the context expires.
// Used at daemon startup to guard the window handle being obtainable.
func (b *Bridge) WaitReady(ctx context.Context) error {
	for {
		b.mu.Lock()
		connected := b.session != nil
		readyCh := b.readyCh
		b.mu.Unlock()

		if connected {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for shell to connect: %w", ctx.Err())
		case <-readyCh:
		}
	}
}

// Close drops the active shell connection, failing in-flight commands.
func (b *Bridge) Close() {
	b.mu.Lock()
	sess := b.session
	b.mu.Unlock()
	if sess != nil {
		sess.cancel()
		sess.conn.Close(websocket.StatusNormalClosure, "daemon shutting down")
	}
}
