// Package input turns the surface's raw byte/key-code stream into
// structured events for the event loop.
package input

import (
	"fmt"
	"strings"
)

// Key represents a keyboard key. For character keys, use KeyRune and
// read the event's Rune field.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Special keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// Control chords (Ctrl-A through Ctrl-Z). Tab, Enter, and
	// Backspace shadow their control-byte equivalents.
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlG
	KeyCtrlH
	KeyCtrlI
	KeyCtrlJ
	KeyCtrlK
	KeyCtrlL
	KeyCtrlM
	KeyCtrlN
	KeyCtrlO
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlS
	KeyCtrlT
	KeyCtrlU
	KeyCtrlV
	KeyCtrlW
	KeyCtrlX
	KeyCtrlY
	KeyCtrlZ

	// KeyRune is used for character keys (letters, numbers,
	// punctuation). The actual character is in the event's Rune field.
	KeyRune
)

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch {
	case k == KeyNone:
		return "None"
	case k == KeyEscape:
		return "Escape"
	case k == KeyEnter:
		return "Enter"
	case k == KeyTab:
		return "Tab"
	case k == KeyBackspace:
		return "Backspace"
	case k == KeyDelete:
		return "Delete"
	case k == KeyInsert:
		return "Insert"
	case k == KeyHome:
		return "Home"
	case k == KeyEnd:
		return "End"
	case k == KeyPageUp:
		return "PageUp"
	case k == KeyPageDown:
		return "PageDown"
	case k == KeyUp:
		return "Up"
	case k == KeyDown:
		return "Down"
	case k == KeyLeft:
		return "Left"
	case k == KeyRight:
		return "Right"
	case k.IsFunctionKey():
		return fmt.Sprintf("F%d", int(k-KeyF1)+1)
	case k.IsControlChord():
		return fmt.Sprintf("Ctrl+%c", 'A'+rune(k-KeyCtrlA))
	case k == KeyRune:
		return "Rune"
	default:
		return fmt.Sprintf("Key(%d)", k)
	}
}

// IsFunctionKey returns true if this is a function key (F1-F12).
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

// IsArrowKey returns true if this is an arrow key.
func (k Key) IsArrowKey() bool {
	return k >= KeyUp && k <= KeyRight
}

// IsControlChord returns true if this is a Ctrl-letter chord.
func (k Key) IsControlChord() bool {
	return k >= KeyCtrlA && k <= KeyCtrlZ
}

// keyNameMap maps key names (lowercase) to Key values.
var keyNameMap = map[string]Key{
	"none":      KeyNone,
	"escape":    KeyEscape,
	"esc":       KeyEscape,
	"enter":     KeyEnter,
	"return":    KeyEnter,
	"tab":       KeyTab,
	"backspace": KeyBackspace,
	"bs":        KeyBackspace,
	"delete":    KeyDelete,
	"del":       KeyDelete,
	"insert":    KeyInsert,
	"ins":       KeyInsert,
	"home":      KeyHome,
	"end":       KeyEnd,
	"pageup":    KeyPageUp,
	"pgup":      KeyPageUp,
	"pagedown":  KeyPageDown,
	"pgdn":      KeyPageDown,
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
}

func init() {
	for i := 0; i < 12; i++ {
		keyNameMap[fmt.Sprintf("f%d", i+1)] = KeyF1 + Key(i)
	}
	for i := 0; i < 26; i++ {
		keyNameMap[fmt.Sprintf("ctrl+%c", 'a'+rune(i))] = KeyCtrlA + Key(i)
	}
}

// KeyFromName returns the Key for a given name (case-insensitive).
// Returns KeyNone if the name is not recognized.
func KeyFromName(name string) Key {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := keyNameMap[name]; ok {
		return k
	}
	return KeyNone
}
