// Package surface defines the terminal control surface: the capability
// set the engine consumes for raw terminal I/O. A surface must be
// initialized before use and torn down exactly once; any call outside
// that window fails with ErrUnavailable.
package surface

import (
	"errors"
	"time"

	"github.com/tercel-dev/tercel/internal/cell"
)

// ErrUnavailable is returned when the surface is used before Init or
// after Fini, or when the underlying terminal has detached.
var ErrUnavailable = errors.New("terminal surface unavailable")

// RawNoInput is returned by ReadKey when the poll timeout expires.
const RawNoInput = -1

// Raw key codes delivered by ReadKey. Codes 0-255 are a byte stream
// (printable ASCII and UTF-8 sequences); codes 256 and above identify
// special keys, numbered the way a curses bridge delivers them.
const (
	RawDown      = 0o402
	RawUp        = 0o403
	RawLeft      = 0o404
	RawRight     = 0o405
	RawHome      = 0o406
	RawBackspace = 0o407
	RawF1        = 0o411
	RawF12       = RawF1 + 11
	RawDelete    = 0o512
	RawInsert    = 0o513
	RawPageDown  = 0o522
	RawPageUp    = 0o523
	RawEnd       = 0o550
	RawResize    = 0o632
)

// Surface is the boundary with the terminal control collaborator.
// Implementations handle actual drawing and key reads; the engine never
// touches the terminal directly.
type Surface interface {
	// Init prepares the surface for use. Must be called before any
	// other method.
	Init() error

	// Fini releases the surface and restores terminal state. The
	// surface must not be used afterwards.
	Fini()

	// Dimensions returns the current terminal size.
	Dimensions() (width, height int)

	// WriteCell draws a single cell at the given position.
	WriteCell(row, col int, c cell.Cell) error

	// WriteString draws pre-formatted text at the given position using
	// the current drawing attributes.
	WriteString(row, col int, s string) error

	// MoveCursor positions the hardware cursor.
	MoveCursor(row, col int) error

	// SetAttr adds flags to the current drawing attributes used by
	// WriteString.
	SetAttr(a cell.Attr) error

	// ClearAttr removes flags from the current drawing attributes.
	// Clearing AttrNone resets to normal.
	ClearAttr(a cell.Attr) error

	// ReadKey waits up to timeout for one raw key code.
	// Returns RawNoInput when the timeout expires.
	ReadKey(timeout time.Duration) (int, error)

	// Show presents all pending writes to the physical terminal.
	Show() error

	// Beep produces an audible or visual bell.
	Beep()
}
