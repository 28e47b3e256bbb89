package input

import (
	"unicode/utf8"

	"github.com/tercel-dev/tercel/internal/surface"
)

// specialKeys is the closed table of raw codes above the byte range.
// Codes outside it decode to Unknown, never to an error.
var specialKeys = map[int]Key{
	surface.RawUp:        KeyUp,
	surface.RawDown:      KeyDown,
	surface.RawLeft:      KeyLeft,
	surface.RawRight:     KeyRight,
	surface.RawHome:      KeyHome,
	surface.RawEnd:       KeyEnd,
	surface.RawPageUp:    KeyPageUp,
	surface.RawPageDown:  KeyPageDown,
	surface.RawDelete:    KeyDelete,
	surface.RawInsert:    KeyInsert,
	surface.RawBackspace: KeyBackspace,
}

func init() {
	for i := 0; i < 12; i++ {
		specialKeys[surface.RawF1+i] = KeyF1 + Key(i)
	}
}

// Decoder converts the surface's raw code stream into events. Codes
// 0-255 form a byte stream in which multi-byte UTF-8 sequences are
// reassembled; a Decode call in the middle of a sequence reports no
// event yet.
type Decoder struct {
	surf    surface.Surface
	pending []byte
}

// NewDecoder creates a decoder that queries surf for dimensions when a
// resize code arrives.
func NewDecoder(surf surface.Surface) *Decoder {
	return &Decoder{surf: surf}
}

// Reset discards any partially accumulated UTF-8 sequence.
func (d *Decoder) Reset() {
	d.pending = d.pending[:0]
}

// Decode maps one raw code to an event. The second result is false
// while a multi-byte sequence is still accumulating.
func (d *Decoder) Decode(code int) (Event, bool) {
	switch {
	case code == surface.RawNoInput:
		// A timeout in mid-sequence means the tail was lost.
		d.Reset()
		return TimeoutEvent(), true
	case code < 0:
		d.Reset()
		return UnknownEvent(code), true
	case code < 0x100:
		return d.decodeByte(byte(code))
	case code == surface.RawResize:
		d.Reset()
		w, h := d.surf.Dimensions()
		return ResizeEvent(w, h), true
	default:
		d.Reset()
		if k, ok := specialKeys[code]; ok {
			return KeyEvent(k), true
		}
		return UnknownEvent(code), true
	}
}

// decodeByte handles the 0-255 byte-stream tier.
func (d *Decoder) decodeByte(b byte) (Event, bool) {
	if len(d.pending) > 0 {
		return d.continueSequence(b)
	}

	switch {
	case b == 0x1B:
		return KeyEvent(KeyEscape), true
	case b == '\r' || b == '\n':
		return KeyEvent(KeyEnter), true
	case b == '\t':
		return KeyEvent(KeyTab), true
	case b == 0x08 || b == 0x7F:
		return KeyEvent(KeyBackspace), true
	case b >= 0x01 && b <= 0x1A:
		return KeyEvent(KeyCtrlA + Key(b-1)), true
	case b < 0x20:
		return UnknownEvent(int(b)), true
	case b < 0x80:
		return RuneEvent(rune(b)), true
	case b >= 0xC0:
		// Lead byte of a multi-byte sequence.
		d.pending = append(d.pending, b)
		return Event{}, false
	default:
		// Continuation byte with no sequence in progress.
		return UnknownEvent(int(b)), true
	}
}

// continueSequence accumulates UTF-8 continuation bytes.
func (d *Decoder) continueSequence(b byte) (Event, bool) {
	if b < 0x80 || b >= 0xC0 {
		// The sequence broke; report the stray byte.
		d.Reset()
		return UnknownEvent(int(b)), true
	}

	d.pending = append(d.pending, b)
	if !utf8.FullRune(d.pending) {
		if len(d.pending) >= utf8.UTFMax {
			first := int(d.pending[0])
			d.Reset()
			return UnknownEvent(first), true
		}
		return Event{}, false
	}

	r, _ := utf8.DecodeRune(d.pending)
	first := int(d.pending[0])
	d.Reset()
	if r == utf8.RuneError {
		return UnknownEvent(first), true
	}
	return RuneEvent(r), true
}
