//go:build windows

package shortcut

import "golang.design/x/hotkey"

// modifierNames maps binding tokens to Windows modifiers. "super" is
// the Windows key.
var modifierNames = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.ModAlt,
	"super": hotkey.ModWin,
	"win":   hotkey.ModWin,
}
