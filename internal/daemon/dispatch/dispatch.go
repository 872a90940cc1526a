// Package dispatch executes frontend commands against daemon services.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/confab-io/confab/internal/buildinfo"
	"github.com/confab-io/confab/internal/daemon/window"
	"github.com/confab-io/confab/internal/models"
)

// Conversations is the slice of the conversation store commands use.
type Conversations interface {
	Save(id, content string) error
	Snapshot() map[string]string
}

// Windows toggles shell window visibility.
type Windows interface {
	Toggle(ctx context.Context) error
}

// Handler executes one command against its raw JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Dispatcher is the single boundary between the frontend and daemon
// state. Commands are independently invocable; shared state is guarded
// inside the collaborators, never here.
type Dispatcher struct {
	conversations Conversations
	windows       Windows
	handlers      map[string]Handler
}

// New creates a dispatcher over the given collaborators.
func New(conversations Conversations, windows Windows) *Dispatcher {
	d := &Dispatcher{
		conversations: conversations,
		windows:       windows,
	}
	// Keys are the wire command names the frontend invokes.
	d.handlers = map[string]Handler{
		"greet":                    d.handleGreet,
		"get_platform_info":        d.handlePlatformInfo,
		"save_conversation":        d.handleSaveConversation,
		"load_conversations":       d.handleLoadConversations,
		"toggle_window_visibility": d.handleToggleWindow,
	}
	return d
}

// Commands returns the sorted names of all registered commands.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named command. Failures come back as *Error so the
// transport layer can map them onto status codes.
func (d *Dispatcher) Invoke(ctx context.Context, command string, args json.RawMessage) (any, error) {
	handler, ok := d.handlers[command]
	if !ok {
		return nil, newError(CodeUnknownCommand, "unknown command %q", command)
	}
	return handler(ctx, args)
}

// decode unmarshals command arguments into a typed struct, rejecting
// fields the command does not define. An absent body decodes to zero
// arguments.
func decode[T any](raw json.RawMessage) (T, error) {
	var args T
	if len(raw) == 0 {
		return args, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&args); err != nil {
		return args, fmt.Errorf("decoding arguments: %w", err)
	}
	return args, nil
}

type greetArgs struct {
	Name string `json:"name"`
}

// handleGreet is pure formatting. The string is part of the frontend
// contract; change it there first.
func (d *Dispatcher) handleGreet(ctx context.Context, raw json.RawMessage) (any, error) {
	args, err := decode[greetArgs](raw)
	if err != nil {
		return nil, newError(CodeInvalidArgs, "greet: %v", err)
	}
	return fmt.Sprintf("Hello, %s! You've been greeted from Confab!", args.Name), nil
}

func (d *Dispatcher) handlePlatformInfo(ctx context.Context, raw json.RawMessage) (any, error) {
	if _, err := decode[struct{}](raw); err != nil {
		return nil, newError(CodeInvalidArgs, "get_platform_info: %v", err)
	}
	return models.PlatformInfo{
		Platform: runtime.GOOS,
		Arch:     runtime.GOARCH,
		Version:  buildinfo.Version,
		// Always true when served by the daemon. Tells the frontend
		// it is hosted by the native shell, not a plain browser tab.
		Native: true,
	}, nil
}

type saveConversationArgs struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func (d *Dispatcher) handleSaveConversation(ctx context.Context, raw json.RawMessage) (any, error) {
	args, err := decode[saveConversationArgs](raw)
	if err != nil {
		return nil, newError(CodeInvalidArgs, "save_conversation: %v", err)
	}
	if err := d.conversations.Save(args.ID, args.Content); err != nil {
		return nil, newError(CodeInvalidArgs, "save_conversation: %v", err)
	}
	return nil, nil
}

func (d *Dispatcher) handleLoadConversations(ctx context.Context, raw json.RawMessage) (any, error) {
	if _, err := decode[struct{}](raw); err != nil {
		return nil, newError(CodeInvalidArgs, "load_conversations: %v", err)
	}
	return d.conversations.Snapshot(), nil
}

func (d *Dispatcher) handleToggleWindow(ctx context.Context, raw json.RawMessage) (any, error) {
	if _, err := decode[struct{}](raw); err != nil {
		return nil, newError(CodeInvalidArgs, "toggle_window_visibility: %v", err)
	}
	if err := d.windows.Toggle(ctx); err != nil {
		if errors.Is(err, window.ErrUnavailable) {
			return nil, newError(CodeShellUnavailable, "toggle_window_visibility: %v", err)
		}
		return nil, newError(CodePlatformActionFailed, "toggle_window_visibility: %v", err)
	}
	return nil, nil
}
