package surface

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/tercel-dev/tercel/internal/cell"
)

// Terminal implements Surface using tcell for terminal output.
type Terminal struct {
	mu          sync.Mutex
	screen      tcell.Screen
	events      chan tcell.Event
	quit        chan struct{}
	pending     []int
	cur         cell.Attr
	initialized bool
}

// NewTerminal creates a terminal surface for the current tty.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}
	if err := t.screen.Init(); err != nil {
		return err
	}

	// The pump goroutine is internal to the surface; the engine only
	// ever sees codes through ReadKey.
	t.events = make(chan tcell.Event, 64)
	t.quit = make(chan struct{})
	go t.screen.ChannelEvents(t.events, t.quit)

	t.initialized = true
	return nil
}

func (t *Terminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return
	}
	t.initialized = false
	close(t.quit)
	t.screen.Fini()
}

func (t *Terminal) Dimensions() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return 0, 0
	}
	return t.screen.Size()
}

func (t *Terminal) WriteCell(row, col int, c cell.Cell) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return ErrUnavailable
	}
	t.screen.SetContent(col, row, c.Rune, nil, convertStyle(c.Style))
	return nil
}

func (t *Terminal) WriteString(row, col int, s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return ErrUnavailable
	}
	style := convertStyle(cell.DefaultStyle().WithAttrs(t.cur))
	x := col
	for _, r := range s {
		w := cell.RuneWidth(r)
		if w == 0 {
			continue
		}
		t.screen.SetContent(x, row, r, nil, style)
		x += w
	}
	return nil
}

func (t *Terminal) MoveCursor(row, col int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return ErrUnavailable
	}
	t.screen.ShowCursor(col, row)
	return nil
}

func (t *Terminal) SetAttr(a cell.Attr) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return ErrUnavailable
	}
	if !a.Valid() {
		return cell.ErrUnknownAttr
	}
	t.cur = t.cur.With(a)
	return nil
}

func (t *Terminal) ClearAttr(a cell.Attr) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return ErrUnavailable
	}
	if !a.Valid() {
		return cell.ErrUnknownAttr
	}
	if a == cell.AttrNone {
		t.cur = cell.AttrNone
		return nil
	}
	t.cur = t.cur.Without(a)
	return nil
}

func (t *Terminal) ReadKey(timeout time.Duration) (int, error) {
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return RawNoInput, ErrUnavailable
	}
	if len(t.pending) > 0 {
		code := t.pending[0]
		t.pending = t.pending[1:]
		t.mu.Unlock()
		return code, nil
	}
	events := t.events
	t.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev, ok := <-events:
		if !ok {
			return RawNoInput, ErrUnavailable
		}
		codes := convertEvent(ev)
		if len(codes) == 0 {
			return RawNoInput, nil
		}
		t.mu.Lock()
		t.pending = append(t.pending, codes[1:]...)
		t.mu.Unlock()
		return codes[0], nil
	case <-timer.C:
		return RawNoInput, nil
	}
}

func (t *Terminal) Show() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return ErrUnavailable
	}
	t.screen.Show()
	return nil
}

func (t *Terminal) Beep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		_ = t.screen.Beep()
	}
}

// convertEvent flattens a tcell event into raw codes. Runes become
// UTF-8 byte sequences; special keys become their code; events the
// bridge has no code for are dropped.
func convertEvent(ev tcell.Event) []int {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return convertKeyEvent(e)
	case *tcell.EventResize:
		return []int{RawResize}
	default:
		return nil
	}
}

func convertKeyEvent(e *tcell.EventKey) []int {
	switch e.Key() {
	case tcell.KeyRune:
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], e.Rune())
		codes := make([]int, n)
		for i := 0; i < n; i++ {
			codes[i] = int(buf[i])
		}
		return codes
	case tcell.KeyEnter:
		return []int{'\r'}
	case tcell.KeyTab:
		return []int{'\t'}
	case tcell.KeyEscape:
		return []int{0x1B}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []int{RawBackspace}
	case tcell.KeyDelete:
		return []int{RawDelete}
	case tcell.KeyInsert:
		return []int{RawInsert}
	case tcell.KeyHome:
		return []int{RawHome}
	case tcell.KeyEnd:
		return []int{RawEnd}
	case tcell.KeyPgUp:
		return []int{RawPageUp}
	case tcell.KeyPgDn:
		return []int{RawPageDown}
	case tcell.KeyUp:
		return []int{RawUp}
	case tcell.KeyDown:
		return []int{RawDown}
	case tcell.KeyLeft:
		return []int{RawLeft}
	case tcell.KeyRight:
		return []int{RawRight}
	default:
		if e.Key() >= tcell.KeyF1 && e.Key() <= tcell.KeyF12 {
			return []int{RawF1 + int(e.Key()-tcell.KeyF1)}
		}
		// Ctrl combinations arrive as control bytes.
		if e.Key() < tcell.Key(32) {
			return []int{int(e.Key())}
		}
		return nil
	}
}

// convertStyle converts a cell style to a tcell style. Standout has no
// tcell equivalent and renders as reverse+bold.
func convertStyle(s cell.Style) tcell.Style {
	style := tcell.StyleDefault

	if !s.Foreground.IsDefault() {
		if s.Foreground.Indexed {
			style = style.Foreground(tcell.PaletteColor(int(s.Foreground.R)))
		} else {
			style = style.Foreground(tcell.NewRGBColor(int32(s.Foreground.R), int32(s.Foreground.G), int32(s.Foreground.B)))
		}
	}
	if !s.Background.IsDefault() {
		if s.Background.Indexed {
			style = style.Background(tcell.PaletteColor(int(s.Background.R)))
		} else {
			style = style.Background(tcell.NewRGBColor(int32(s.Background.R), int32(s.Background.G), int32(s.Background.B)))
		}
	}

	if s.Attrs.Has(cell.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attrs.Has(cell.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attrs.Has(cell.AttrReverse) {
		style = style.Reverse(true)
	}
	if s.Attrs.Has(cell.AttrStandout) {
		style = style.Reverse(true).Bold(true)
	}
	if s.Attrs.Has(cell.AttrUnderline) {
		style = style.Underline(true)
	}

	return style
}
