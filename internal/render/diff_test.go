package render

import (
	"testing"

	"github.com/tercel-dev/tercel/internal/cell"
)

func TestComputeDeltaIdentical(t *testing.T) {
	a := NewBuffer(10, 4)
	_ = a.Set(2, 2, cell.New('q'))

	if ops := ComputeDelta(a, a.Snapshot()); len(ops) != 0 {
		t.Errorf("identical buffers should produce no ops, got %d", len(ops))
	}
}

func TestComputeDeltaSingleChange(t *testing.T) {
	prev := NewBuffer(3, 1)
	cur := prev.Snapshot()

	bold := cell.NewStyled('X', cell.DefaultStyle().Bold())
	if err := cur.Set(0, 1, bold); err != nil {
		t.Fatal(err)
	}

	ops := ComputeDelta(prev, cur)
	if len(ops) != 1 {
		t.Fatalf("expected exactly 1 op, got %d", len(ops))
	}
	op := ops[0]
	if op.Row != 0 || op.Col != 1 {
		t.Errorf("op at (%d,%d), want (0,1)", op.Row, op.Col)
	}
	if op.Cell.Rune != 'X' || !op.Cell.Style.Attrs.Has(cell.AttrBold) {
		t.Errorf("op cell = %+v, want bold 'X'", op.Cell)
	}
}

func TestComputeDeltaStyleOnlyChange(t *testing.T) {
	prev := NewBuffer(2, 1)
	_ = prev.Set(0, 0, cell.New('a'))

	cur := prev.Snapshot()
	_ = cur.Set(0, 0, cell.NewStyled('a', cell.DefaultStyle().Underline()))

	ops := ComputeDelta(prev, cur)
	if len(ops) != 1 {
		t.Fatalf("a style-only change must still be emitted, got %d ops", len(ops))
	}
}

func TestComputeDeltaNilPrevious(t *testing.T) {
	cur := NewBuffer(4, 2)
	ops := ComputeDelta(nil, cur)
	if len(ops) != 8 {
		t.Errorf("nil previous should repaint all 8 cells, got %d", len(ops))
	}
}

func TestComputeDeltaDimensionMismatch(t *testing.T) {
	prev := NewBuffer(4, 2)
	cur := NewBuffer(5, 2)

	ops := ComputeDelta(prev, cur)
	if len(ops) != 10 {
		t.Errorf("dimension mismatch should repaint all 10 cells, got %d", len(ops))
	}
}

func TestComputeDeltaNilCurrent(t *testing.T) {
	if ops := ComputeDelta(NewBuffer(2, 2), nil); ops != nil {
		t.Errorf("nil current should produce nil, got %v", ops)
	}
}

func TestComputeDeltaRowMajorOrder(t *testing.T) {
	prev := NewBuffer(3, 3)
	cur := prev.Snapshot()
	_ = cur.Set(2, 0, cell.New('a'))
	_ = cur.Set(0, 2, cell.New('b'))
	_ = cur.Set(0, 1, cell.New('c'))

	ops := ComputeDelta(prev, cur)
	if len(ops) != 3 {
		t.Fatalf("expected 3 ops, got %d", len(ops))
	}
	for i := 1; i < len(ops); i++ {
		prevOp, op := ops[i-1], ops[i]
		if op.Row < prevOp.Row || (op.Row == prevOp.Row && op.Col < prevOp.Col) {
			t.Errorf("ops out of row-major order: %v then %v", prevOp, op)
		}
	}
	if ops[0].Cell.Rune != 'c' {
		t.Errorf("first op should be (0,1)='c', got %+v", ops[0])
	}
}
