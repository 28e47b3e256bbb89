// Package cell defines the character-plus-attributes unit of terminal
// display shared by the buffer, renderer, and surface layers.
package cell

import (
	"errors"
	"strings"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// ErrUnknownAttr is returned when an attribute set contains bits outside
// the recognized flag set.
var ErrUnknownAttr = errors.New("unrecognized attribute flag")

// Attr represents text attributes as a closed bitset.
type Attr uint8

// Text attribute flags. AttrNone is "normal" text.
const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << iota
	AttrDim            // Faint/dim text
	AttrReverse        // Reverse video (swap fg/bg)
	AttrStandout       // Highlighted text (rendered as reverse+bold)
	AttrUnderline      // Underlined text
)

// attrMask covers every recognized flag.
const attrMask = AttrBold | AttrDim | AttrReverse | AttrStandout | AttrUnderline

// Has returns true if the attribute set contains the given attribute.
func (a Attr) Has(attr Attr) bool {
	return a&attr != 0
}

// With returns a new attribute set with the given attribute added.
func (a Attr) With(attr Attr) Attr {
	return a | attr
}

// Without returns a new attribute set with the given attribute removed.
func (a Attr) Without(attr Attr) Attr {
	return a &^ attr
}

// Valid returns true if the set contains only recognized flags.
func (a Attr) Valid() bool {
	return a&^attrMask == 0
}

// String returns a human-readable form such as "bold|underline".
func (a Attr) String() string {
	if a == AttrNone {
		return "normal"
	}
	var parts []string
	for _, f := range []struct {
		flag Attr
		name string
	}{
		{AttrBold, "bold"},
		{AttrDim, "dim"},
		{AttrReverse, "reverse"},
		{AttrStandout, "standout"},
		{AttrUnderline, "underline"},
	} {
		if a.Has(f.flag) {
			parts = append(parts, f.name)
		}
	}
	if rest := a &^ attrMask; rest != 0 {
		parts = append(parts, "invalid")
	}
	return strings.Join(parts, "|")
}

// attrNameMap maps attribute names (lowercase) to flags.
var attrNameMap = map[string]Attr{
	"normal":    AttrNone,
	"bold":      AttrBold,
	"dim":       AttrDim,
	"reverse":   AttrReverse,
	"standout":  AttrStandout,
	"underline": AttrUnderline,
}

// AttrFromName returns the flag for a given name (case-insensitive).
// The second result is false if the name is not recognized.
func AttrFromName(name string) (Attr, bool) {
	a, ok := attrNameMap[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// Style represents the visual style of a cell.
type Style struct {
	Foreground Color
	Background Color
	Attrs      Attr
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{
		Foreground: ColorDefault,
		Background: ColorDefault,
		Attrs:      AttrNone,
	}
}

// WithForeground returns a new style with the given foreground color.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns a new style with the given background color.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// WithAttrs returns a new style with the given attribute set.
func (s Style) WithAttrs(attrs Attr) Style {
	s.Attrs = attrs
	return s
}

// Bold returns a new style with the bold attribute added.
func (s Style) Bold() Style {
	s.Attrs |= AttrBold
	return s
}

// Dim returns a new style with the dim attribute added.
func (s Style) Dim() Style {
	s.Attrs |= AttrDim
	return s
}

// Reverse returns a new style with the reverse attribute added.
func (s Style) Reverse() Style {
	s.Attrs |= AttrReverse
	return s
}

// Standout returns a new style with the standout attribute added.
func (s Style) Standout() Style {
	s.Attrs |= AttrStandout
	return s
}

// Underline returns a new style with the underline attribute added.
func (s Style) Underline() Style {
	s.Attrs |= AttrUnderline
	return s
}

// Merge combines two styles. Non-default values in other win.
func (s Style) Merge(other Style) Style {
	result := s
	if !other.Foreground.IsDefault() {
		result.Foreground = other.Foreground
	}
	if !other.Background.IsDefault() {
		result.Background = other.Background
	}
	result.Attrs |= other.Attrs
	return result
}

// Equals returns true if two styles are identical.
func (s Style) Equals(other Style) bool {
	return s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background) &&
		s.Attrs == other.Attrs
}

// Valid returns true if the style's attribute set contains only
// recognized flags.
func (s Style) Valid() bool {
	return s.Attrs.Valid()
}

// Cell represents a single terminal cell.
type Cell struct {
	// Rune is the character to display.
	Rune rune

	// Width is the display width of this cell.
	Width int

	// Style is the visual style for this cell.
	Style Style
}

// Empty returns a blank cell with default style.
func Empty() Cell {
	return Cell{
		Rune:  ' ',
		Width: 1,
		Style: DefaultStyle(),
	}
}

// New creates a cell with the given rune and default style.
func New(r rune) Cell {
	return Cell{
		Rune:  r,
		Width: RuneWidth(r),
		Style: DefaultStyle(),
	}
}

// NewStyled creates a cell with the given rune and style.
func NewStyled(r rune, style Style) Cell {
	return Cell{
		Rune:  r,
		Width: RuneWidth(r),
		Style: style,
	}
}

// WithStyle returns a new cell with the given style.
func (c Cell) WithStyle(style Style) Cell {
	c.Style = style
	return c
}

// WithRune returns a new cell with the given rune.
func (c Cell) WithRune(r rune) Cell {
	c.Rune = r
	c.Width = RuneWidth(r)
	return c
}

// IsBlank returns true if this is an empty (space) cell.
func (c Cell) IsBlank() bool {
	return c.Rune == ' ' || c.Rune == 0
}

// IsContinuation returns true if this is the trailing half of a wide rune.
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Rune == 0
}

// Valid returns true if the cell's attribute set contains only
// recognized flags.
func (c Cell) Valid() bool {
	return c.Style.Valid()
}

// Equals returns true if two cells are identical.
func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune &&
		c.Width == other.Width &&
		c.Style.Equals(other.Style)
}

// Continuation returns a continuation cell for wide characters.
func Continuation() Cell {
	return Cell{
		Rune:  0,
		Width: 0,
		Style: DefaultStyle(),
	}
}

// RuneWidth returns the display width of a rune.
func RuneWidth(r rune) int {
	if r < 32 || r == 0x7F {
		return 0
	}
	return runewidth.RuneWidth(r)
}

// FromString converts a string into cells, one grapheme cluster per
// leading cell. Wide clusters are followed by a continuation cell.
func FromString(s string, style Style) []Cell {
	cells := make([]Cell, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		if len(runes) == 0 {
			continue
		}
		width := g.Width()
		cells = append(cells, Cell{
			Rune:  runes[0],
			Width: width,
			Style: style,
		})
		if width == 2 {
			cont := Continuation()
			cont.Style = style
			cells = append(cells, cont)
		}
	}
	return cells
}

// StringFromCells converts cells back to a string, skipping
// continuation cells.
func StringFromCells(cells []Cell) string {
	runes := make([]rune, 0, len(cells))
	for _, c := range cells {
		if !c.IsContinuation() && c.Rune != 0 {
			runes = append(runes, c.Rune)
		}
	}
	return string(runes)
}
