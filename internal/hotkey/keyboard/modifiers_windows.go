//go:build windows

package keyboard

import xhotkey "golang.design/x/hotkey"

var modifierMap = map[string]xhotkey.Modifier{
	"ctrl":  xhotkey.ModCtrl,
	"shift": xhotkey.ModShift,
	"alt":   xhotkey.ModAlt,
	"cmd":   xhotkey.ModWin,
}
