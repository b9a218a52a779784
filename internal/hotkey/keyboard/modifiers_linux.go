//go:build linux

package keyboard

import xhotkey "golang.design/x/hotkey"

// On X11 Alt is Mod1 and Super/Win is Mod4.
var modifierMap = map[string]xhotkey.Modifier{
	"ctrl":  xhotkey.ModCtrl,
	"shift": xhotkey.ModShift,
	"alt":   xhotkey.Mod1,
	"cmd":   xhotkey.Mod4,
}
