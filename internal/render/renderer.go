package render

import (
	"fmt"

	"github.com/tercel-dev/tercel/internal/surface"
)

// RenderError reports a failed draw operation at the surface level.
type RenderError struct {
	Row, Col int
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed at (%d,%d): %v", e.Row, e.Col, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer flushes buffers to a surface, writing only cells that
// changed since the last flushed frame. A failed write is never
// retried; it forces a full repaint on the next flush instead.
type Renderer struct {
	surf         surface.Surface
	last         *Buffer
	forceRepaint bool
}

// NewRenderer creates a renderer over the given surface.
func NewRenderer(surf surface.Surface) *Renderer {
	return &Renderer{surf: surf}
}

// Flush applies the delta between the last flushed frame and current,
// then presents it. Returns the number of cells written.
func (r *Renderer) Flush(current *Buffer) (int, error) {
	previous := r.last
	if r.forceRepaint {
		previous = nil
	}

	ops := ComputeDelta(previous, current)
	for i, op := range ops {
		if err := r.surf.WriteCell(op.Row, op.Col, op.Cell); err != nil {
			r.forceRepaint = true
			return i, &RenderError{Row: op.Row, Col: op.Col, Err: err}
		}
	}
	if err := r.surf.Show(); err != nil {
		r.forceRepaint = true
		return len(ops), &RenderError{Row: -1, Col: -1, Err: err}
	}

	r.last = current.Snapshot()
	r.forceRepaint = false
	return len(ops), nil
}

// ForceRepaint makes the next flush emit every cell.
func (r *Renderer) ForceRepaint() {
	r.forceRepaint = true
}

// Last returns the last flushed frame, or nil before the first flush.
func (r *Renderer) Last() *Buffer {
	return r.last
}
