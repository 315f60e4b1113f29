//go:build !darwin

package hotkey

import "golang.design/x/hotkey"

const comboPrefix = "Ctrl+Shift+"

func modifiers() []hotkey.Modifier {
	return []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}
}
