package render

import "github.com/tercel-dev/tercel/internal/cell"

// DrawOp is one minimal unit of display change: write Cell at
// (Row, Col). Ops are produced per render pass and never persisted.
type DrawOp struct {
	Row, Col int
	Cell     cell.Cell
}

// ComputeDelta returns the operations transforming a terminal showing
// previous into one showing current, in row-major order so writes
// sharing a row land left to right. A nil previous or a dimension
// mismatch (e.g. after a resize) forces a full repaint.
func ComputeDelta(previous, current *Buffer) []DrawOp {
	if current == nil {
		return nil
	}

	full := previous == nil ||
		previous.width != current.width ||
		previous.height != current.height

	var ops []DrawOp
	for row := 0; row < current.height; row++ {
		for col := 0; col < current.width; col++ {
			if full || !previous.cells[row][col].Equals(current.cells[row][col]) {
				ops = append(ops, DrawOp{
					Row:  row,
					Col:  col,
					Cell: current.cells[row][col],
				})
			}
		}
	}
	return ops
}
