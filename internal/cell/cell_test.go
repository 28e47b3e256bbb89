package cell

import "testing"

func TestAttrBitset(t *testing.T) {
	a := AttrNone.With(AttrBold).With(AttrUnderline)

	if !a.Has(AttrBold) || !a.Has(AttrUnderline) {
		t.Errorf("expected bold+underline set, got %v", a)
	}
	if a.Has(AttrReverse) {
		t.Errorf("reverse should not be set in %v", a)
	}

	a = a.Without(AttrBold)
	if a.Has(AttrBold) {
		t.Errorf("bold should be cleared, got %v", a)
	}
	if !a.Has(AttrUnderline) {
		t.Errorf("clearing bold must not clear underline, got %v", a)
	}
}

func TestAttrValid(t *testing.T) {
	tests := []struct {
		name string
		attr Attr
		want bool
	}{
		{"none", AttrNone, true},
		{"bold", AttrBold, true},
		{"all flags", AttrBold | AttrDim | AttrReverse | AttrStandout | AttrUnderline, true},
		{"unknown high bit", Attr(1 << 7), false},
		{"known plus unknown", AttrBold | Attr(1<<6), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.attr.Valid(); got != tt.want {
				t.Errorf("Valid(%v) = %v, want %v", tt.attr, got, tt.want)
			}
		})
	}
}

func TestAttrFromName(t *testing.T) {
	if a, ok := AttrFromName("bold"); !ok || a != AttrBold {
		t.Errorf("AttrFromName(bold) = %v, %v", a, ok)
	}
	if a, ok := AttrFromName(" Reverse "); !ok || a != AttrReverse {
		t.Errorf("AttrFromName should trim and fold case, got %v, %v", a, ok)
	}
	if _, ok := AttrFromName("blink"); ok {
		t.Error("blink is not a supported attribute")
	}
}

func TestStyleBuilders(t *testing.T) {
	s := DefaultStyle().Bold().Underline().WithForeground(ColorFromRGB(255, 0, 0))

	if !s.Attrs.Has(AttrBold) || !s.Attrs.Has(AttrUnderline) {
		t.Errorf("builder chain lost attrs: %v", s.Attrs)
	}
	if s.Foreground.IsDefault() {
		t.Error("foreground should no longer be default")
	}
	if !s.Background.IsDefault() {
		t.Error("background should remain default")
	}
}

func TestStyleMerge(t *testing.T) {
	base := DefaultStyle().Bold()
	over := DefaultStyle().WithForeground(ColorFromIndex(4)).Reverse()

	m := base.Merge(over)
	if !m.Attrs.Has(AttrBold) || !m.Attrs.Has(AttrReverse) {
		t.Errorf("merge should union attrs, got %v", m.Attrs)
	}
	if m.Foreground.IsDefault() {
		t.Error("merge should take the overlay's foreground")
	}
}

func TestCellEquals(t *testing.T) {
	a := NewStyled('x', DefaultStyle().Bold())
	b := NewStyled('x', DefaultStyle().Bold())
	c := NewStyled('x', DefaultStyle())

	if !a.Equals(b) {
		t.Error("identical cells should be equal")
	}
	if a.Equals(c) {
		t.Error("cells with different styles should not be equal")
	}
	if a.Equals(New('y')) {
		t.Error("cells with different runes should not be equal")
	}
}

func TestCellBlankAndContinuation(t *testing.T) {
	if !Empty().IsBlank() {
		t.Error("empty cell should be blank")
	}
	if New('x').IsBlank() {
		t.Error("'x' should not be blank")
	}
	cont := Continuation()
	if !cont.IsContinuation() {
		t.Error("continuation cell not recognized")
	}
	if New('x').IsContinuation() {
		t.Error("'x' is not a continuation")
	}
}

func TestRuneWidth(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want int
	}{
		{"ascii", 'a', 1},
		{"space", ' ', 1},
		{"cjk", '世', 2},
		{"control", '\x07', 0},
		{"delete", '\x7F', 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RuneWidth(tt.r); got != tt.want {
				t.Errorf("RuneWidth(%q) = %d, want %d", tt.r, got, tt.want)
			}
		})
	}
}

func TestFromStringWideRunes(t *testing.T) {
	cells := FromString("a世b", DefaultStyle())

	// 'a', '世', continuation, 'b'
	if len(cells) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(cells))
	}
	if cells[0].Rune != 'a' || cells[0].Width != 1 {
		t.Errorf("cell 0 = %+v", cells[0])
	}
	if cells[1].Rune != '世' || cells[1].Width != 2 {
		t.Errorf("cell 1 = %+v", cells[1])
	}
	if !cells[2].IsContinuation() {
		t.Errorf("cell 2 should be a continuation, got %+v", cells[2])
	}
	if cells[3].Rune != 'b' {
		t.Errorf("cell 3 = %+v", cells[3])
	}
}

func TestStringFromCellsRoundTrip(t *testing.T) {
	const s = "hi 世界"
	if got := StringFromCells(FromString(s, DefaultStyle())); got != s {
		t.Errorf("round trip = %q, want %q", got, s)
	}
}
