// Package shortcut registers the global keyboard shortcut that
// toggles window visibility.
package shortcut

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.design/x/hotkey"

	"github.com/confab-io/confab/internal/daemon/router"
)

// keyNames maps binding tokens to keys. Modifier tokens live in the
// per-platform modifierNames maps.
var keyNames = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"space":  hotkey.KeySpace,
	"return": hotkey.KeyReturn,
	"enter":  hotkey.KeyReturn,
	"escape": hotkey.KeyEscape,
	"esc":    hotkey.KeyEscape,
	"tab":    hotkey.KeyTab,
	"delete": hotkey.KeyDelete,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
	"f1":     hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3,
	"f4": hotkey.KeyF4, "f5": hotkey.KeyF5, "f6": hotkey.KeyF6,
	"f7": hotkey.KeyF7, "f8": hotkey.KeyF8, "f9": hotkey.KeyF9,
	"f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}

// ParseBinding parses a binding like "ctrl+shift+space" into hotkey
// modifiers and a key. The last token is the key, everything before
// it a modifier. At least one modifier is required: a global hotkey
// on a bare key would swallow normal typing.
func ParseBinding(binding string) ([]hotkey.Modifier, hotkey.Key, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(binding)), "+")
	if len(parts) < 2 {
		return nil, 0, fmt.Errorf("binding %q needs at least one modifier and a key", binding)
	}

	keyName := strings.TrimSpace(parts[len(parts)-1])
	key, ok := keyNames[keyName]
	if !ok {
		return nil, 0, fmt.Errorf("unknown key %q in binding %q", keyName, binding)
	}

	mods := make([]hotkey.Modifier, 0, len(parts)-1)
	for _, name := range parts[:len(parts)-1] {
		name = strings.TrimSpace(name)
		mod, ok := modifierNames[name]
		if !ok {
			return nil, 0, fmt.Errorf("unknown modifier %q in binding %q", name, binding)
		}
		mods = append(mods, mod)
	}
	return mods, key, nil
}

// Manager owns the global shortcut registration. Keydown events are
// forwarded to the router as toggle actions.
type Manager struct {
	mu       sync.Mutex
	dispatch func(router.Action)
	hk       *hotkey.Hotkey
	binding  string
	done     chan struct{}
}

// NewManager creates a manager forwarding shortcut presses to
// dispatch.
func NewManager(dispatch func(router.Action)) *Manager {
	return &Manager{dispatch: dispatch}
}

// Register binds the shortcut system-wide and starts forwarding its
// keydown events. Any previously registered binding is released
// first.
func (m *Manager) Register(binding string) error {
	mods, key, err := ParseBinding(binding)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.unregisterLocked()

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("registering shortcut %q: %w", binding, err)
	}

	done := make(chan struct{})
	go m.forward(hk, done)

	m.hk = hk
	m.binding = binding
	m.done = done
	log.Printf("Registered global shortcut %s", binding)
	return nil
}

func (m *Manager) forward(hk *hotkey.Hotkey, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-hk.Keydown():
			m.dispatch(router.ActionToggle)
		}
	}
}

// Rebind replaces the active binding. On failure the previous binding
// is restored when possible, so a bad settings edit does not silently
// lose the shortcut.
func (m *Manager) Rebind(binding string) error {
	m.mu.Lock()
	previous := m.binding
	m.mu.Unlock()

	if binding == previous {
		return nil
	}
	if err := m.Register(binding); err != nil {
		if previous != "" {
			if restoreErr := m.Register(previous); restoreErr != nil {
				log.Printf("Failed to restore shortcut %s: %v", previous, restoreErr)
			}
		}
		return err
	}
	return nil
}

// Binding returns the currently registered binding, empty when none.
func (m *Manager) Binding() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.binding
}

// Unregister releases the shortcut.
func (m *Manager) Unregister() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unregisterLocked()
}

func (m *Manager) unregisterLocked() {
	if m.hk == nil {
		return
	}
	close(m.done)
	if err := m.hk.Unregister(); err != nil {
		log.Printf("Failed to unregister shortcut %s: %v", m.binding, err)
	}
	m.hk = nil
	m.binding = ""
	m.done = nil
}
