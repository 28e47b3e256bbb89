package input

import "fmt"

// Kind identifies the variant of an input event.
type Kind int

const (
	// KindKey is a key press.
	KindKey Kind = iota
	// KindResize is a terminal geometry change.
	KindResize
	// KindTimeout means the poll window elapsed with no input.
	KindTimeout
	// KindUnknown is an unmapped raw code. Non-fatal; callers may
	// ignore or log it.
	KindUnknown
)

// Event is a decoded input event, passed by value to callbacks.
type Event struct {
	Kind Kind

	// Key event fields
	Key  Key
	Rune rune

	// Resize event fields
	Width, Height int

	// Unknown event field: the raw code that failed to decode.
	Code int
}

// KeyEvent creates a key press event for a named key.
func KeyEvent(k Key) Event {
	return Event{Kind: KindKey, Key: k}
}

// RuneEvent creates a key press event for a character key.
func RuneEvent(r rune) Event {
	return Event{Kind: KindKey, Key: KeyRune, Rune: r}
}

// ResizeEvent creates a resize event.
func ResizeEvent(width, height int) Event {
	return Event{Kind: KindResize, Width: width, Height: height}
}

// TimeoutEvent creates a timeout (tick) event.
func TimeoutEvent() Event {
	return Event{Kind: KindTimeout}
}

// UnknownEvent creates an event for an unmapped raw code.
func UnknownEvent(code int) Event {
	return Event{Kind: KindUnknown, Code: code}
}

// Name returns the binding name for a key event: the key's lowercase
// name for special keys, the character itself for rune keys, "" for
// non-key events.
func (e Event) Name() string {
	if e.Kind != KindKey {
		return ""
	}
	if e.Key == KeyRune {
		return string(e.Rune)
	}
	name := e.Key.String()
	// Binding names are lowercase throughout.
	b := []byte(name)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// String returns a debug representation of the event.
func (e Event) String() string {
	switch e.Kind {
	case KindKey:
		if e.Key == KeyRune {
			return fmt.Sprintf("Key(%q)", e.Rune)
		}
		return fmt.Sprintf("Key(%s)", e.Key)
	case KindResize:
		return fmt.Sprintf("Resize(%dx%d)", e.Width, e.Height)
	case KindTimeout:
		return "Timeout"
	case KindUnknown:
		return fmt.Sprintf("Unknown(%d)", e.Code)
	default:
		return fmt.Sprintf("Event(kind=%d)", e.Kind)
	}
}
