//go:build darwin

package hotkey

import "golang.design/x/hotkey"

const comboPrefix = "Cmd+Shift+"

func modifiers() []hotkey.Modifier {
	return []hotkey.Modifier{hotkey.ModCmd, hotkey.ModShift}
}
