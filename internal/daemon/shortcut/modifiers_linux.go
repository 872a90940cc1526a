//go:build linux

package shortcut

import "golang.design/x/hotkey"

// modifierNames maps binding tokens to X11 modifier masks.
var modifierNames = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1,
	"super": hotkey.Mod4,
}
