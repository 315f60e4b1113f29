package hotkey

import (
	"fmt"
	"log"

	"golang.design/x/hotkey"
)

// Bindings holds the four registered global hotkeys. All share the same
// modifier chord (Ctrl+Shift, Cmd+Shift on darwin) and differ by key.
type Bindings struct {
	capture *hotkey.Hotkey // S: single-capture-and-finalize
	add     *hotkey.Hotkey // A: add-to-session
	reset   *hotkey.Hotkey // R: reset
	quit    *hotkey.Hotkey // Q: quit
}

// Register binds all four hotkeys with the OS. On partial failure every
// already-registered binding is released before returning the error.
func Register() (*Bindings, error) {
	mods := modifiers()
	b := &Bindings{}

	combos := []struct {
		key  hotkey.Key
		name string
		dst  **hotkey.Hotkey
	}{
		{hotkey.KeyS, "S", &b.capture},
		{hotkey.KeyA, "A", &b.add},
		{hotkey.KeyR, "R", &b.reset},
		{hotkey.KeyQ, "Q", &b.quit},
	}

	for _, s := range combos {
		hk := hotkey.New(mods, s.key)
		if err := hk.Register(); err != nil {
			b.Unregister()
			return nil, fmt.Errorf("failed to register %s: %w", Combo(s.name), err)
		}
		log.Printf("Registered global hotkey %s", Combo(s.name))
		*s.dst = hk
	}

	return b, nil
}

// Unregister releases every bound hotkey. Safe on partially-registered sets.
func (b *Bindings) Unregister() {
	for _, hk := range []*hotkey.Hotkey{b.capture, b.add, b.reset, b.quit} {
		if hk != nil {
			if err := hk.Unregister(); err != nil {
				log.Printf("Failed to unregister hotkey: %v", err)
			}
		}
	}
	b.capture, b.add, b.reset, b.quit = nil, nil, nil, nil
}

func (b *Bindings) CaptureKeydown() <-chan hotkey.Event { return b.capture.Keydown() }
func (b *Bindings) AddKeydown() <-chan hotkey.Event     { return b.add.Keydown() }
func (b *Bindings) ResetKeydown() <-chan hotkey.Event   { return b.reset.Keydown() }
func (b *Bindings) QuitKeydown() <-chan hotkey.Event    { return b.quit.Keydown() }

// Combo renders the platform-facing label for a bound key, e.g. "Ctrl+Shift+S".
func Combo(key string) string {
	return comboPrefix + key
}
