// Package render holds the cell buffer and the diff renderer that
// converges the terminal display to the buffer contents.
package render

import (
	"errors"

	"github.com/tercel-dev/tercel/internal/cell"
)

// ErrOutOfBounds is returned for positions outside the buffer.
var ErrOutOfBounds = errors.New("cell position out of bounds")

// Buffer is a fixed-size 2D grid of cells representing the intended
// next-frame screen state. Width×height cells are always present.
type Buffer struct {
	width, height int
	cells         [][]cell.Cell
}

// NewBuffer creates a blank buffer with the given dimensions.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	b := &Buffer{width: width, height: height}
	b.allocate()
	return b
}

// allocate creates the cell grid filled with blanks.
func (b *Buffer) allocate() {
	b.cells = make([][]cell.Cell, b.height)
	for r := range b.cells {
		b.cells[r] = make([]cell.Cell, b.width)
		for c := range b.cells[r] {
			b.cells[r][c] = cell.Empty()
		}
	}
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (width, height int) {
	return b.width, b.height
}

// Set places a cell at the given position. Returns ErrOutOfBounds for
// positions outside the current dimensions and cell.ErrUnknownAttr for
// unrecognized attribute flags.
func (b *Buffer) Set(row, col int, c cell.Cell) error {
	if row < 0 || row >= b.height || col < 0 || col >= b.width {
		return ErrOutOfBounds
	}
	if !c.Valid() {
		return cell.ErrUnknownAttr
	}
	b.cells[row][col] = c
	return nil
}

// Get returns the cell at the given position.
func (b *Buffer) Get(row, col int) (cell.Cell, error) {
	if row < 0 || row >= b.height || col < 0 || col >= b.width {
		return cell.Cell{}, ErrOutOfBounds
	}
	return b.cells[row][col], nil
}

// SetString writes a string starting at the position, clipping at the
// buffer edge. Wide runes occupy a leading cell plus a continuation.
func (b *Buffer) SetString(row, col int, s string, style cell.Style) {
	if row < 0 || row >= b.height {
		return
	}
	x := col
	for _, c := range cell.FromString(s, style) {
		if x >= b.width {
			break
		}
		if x >= 0 {
			b.cells[row][x] = c
		}
		x++
	}
}

// FillRect fills a rectangular region with the given cell, clipping to
// the buffer.
func (b *Buffer) FillRect(top, left, height, width int, c cell.Cell) {
	for row := top; row < top+height && row < b.height; row++ {
		for col := left; col < left+width && col < b.width; col++ {
			if row >= 0 && col >= 0 {
				b.cells[row][col] = c
			}
		}
	}
}

// Clear resets every cell to blank.
func (b *Buffer) Clear() {
	blank := cell.Empty()
	for r := range b.cells {
		for c := range b.cells[r] {
			b.cells[r][c] = blank
		}
	}
}

// Resize changes the dimensions, preserving every cell whose position
// is valid in both geometries and blank-filling the rest.
func (b *Buffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == b.width && height == b.height {
		return
	}

	old := b.cells
	oldWidth, oldHeight := b.width, b.height

	b.width = width
	b.height = height
	b.allocate()

	copyHeight := min(oldHeight, height)
	copyWidth := min(oldWidth, width)
	for r := 0; r < copyHeight; r++ {
		copy(b.cells[r][:copyWidth], old[r][:copyWidth])
	}
}

// Snapshot returns an independent deep copy for diffing.
func (b *Buffer) Snapshot() *Buffer {
	s := &Buffer{width: b.width, height: b.height}
	s.cells = make([][]cell.Cell, b.height)
	for r := range b.cells {
		s.cells[r] = make([]cell.Cell, b.width)
		copy(s.cells[r], b.cells[r])
	}
	return s
}

// Equals reports whether two buffers have identical dimensions and
// cells.
func (b *Buffer) Equals(other *Buffer) bool {
	if other == nil || b.width != other.width || b.height != other.height {
		return false
	}
	for r := range b.cells {
		for c := range b.cells[r] {
			if !b.cells[r][c].Equals(other.cells[r][c]) {
				return false
			}
		}
	}
	return true
}
