//go:build darwin

package shortcut

import "golang.design/x/hotkey"

// modifierNames maps binding tokens to macOS modifiers. "alt" is the
// option key, "super" the command key.
var modifierNames = map[string]hotkey.Modifier{
	"ctrl":   hotkey.ModCtrl,
	"shift":  hotkey.ModShift,
	"alt":    hotkey.ModOption,
	"option": hotkey.ModOption,
	"cmd":    hotkey.ModCmd,
	"super":  hotkey.ModCmd,
}
