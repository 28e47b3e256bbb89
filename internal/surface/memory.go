package surface

import (
	"strings"
	"time"

	"github.com/tercel-dev/tercel/internal/cell"
)

// Memory is an in-process surface for testing. It records cell writes
// and replays scripted raw codes through ReadKey.
type Memory struct {
	width, height int
	cells         [][]cell.Cell
	cursorRow     int
	cursorCol     int
	cur           cell.Attr
	codes         chan int
	initialized   bool

	// FailWrites makes WriteCell and WriteString fail, simulating a
	// detached terminal mid-render.
	FailWrites bool

	// Writes counts individual cell writes since Init.
	Writes int
	// Shows counts Show calls since Init.
	Shows int
}

// NewMemory creates a memory surface with the given dimensions.
func NewMemory(width, height int) *Memory {
	return &Memory{
		width:  width,
		height: height,
		codes:  make(chan int, 256),
	}
}

func (m *Memory) Init() error {
	m.allocate()
	m.initialized = true
	m.Writes = 0
	m.Shows = 0
	return nil
}

func (m *Memory) allocate() {
	m.cells = make([][]cell.Cell, m.height)
	for r := range m.cells {
		m.cells[r] = make([]cell.Cell, m.width)
		for c := range m.cells[r] {
			m.cells[r][c] = cell.Empty()
		}
	}
}

func (m *Memory) Fini() {
	m.initialized = false
}

func (m *Memory) Dimensions() (int, int) {
	return m.width, m.height
}

func (m *Memory) WriteCell(row, col int, c cell.Cell) error {
	if !m.initialized {
		return ErrUnavailable
	}
	if m.FailWrites {
		return ErrUnavailable
	}
	if row >= 0 && row < m.height && col >= 0 && col < m.width {
		m.cells[row][col] = c
		m.Writes++
	}
	return nil
}

func (m *Memory) WriteString(row, col int, s string) error {
	if !m.initialized {
		return ErrUnavailable
	}
	if m.FailWrites {
		return ErrUnavailable
	}
	style := cell.DefaultStyle().WithAttrs(m.cur)
	x := col
	for _, c := range cell.FromString(s, style) {
		if err := m.WriteCell(row, x, c); err != nil {
			return err
		}
		x++
	}
	return nil
}

func (m *Memory) MoveCursor(row, col int) error {
	if !m.initialized {
		return ErrUnavailable
	}
	m.cursorRow = row
	m.cursorCol = col
	return nil
}

func (m *Memory) SetAttr(a cell.Attr) error {
	if !m.initialized {
		return ErrUnavailable
	}
	if !a.Valid() {
		return cell.ErrUnknownAttr
	}
	m.cur = m.cur.With(a)
	return nil
}

func (m *Memory) ClearAttr(a cell.Attr) error {
	if !m.initialized {
		return ErrUnavailable
	}
	if !a.Valid() {
		return cell.ErrUnknownAttr
	}
	if a == cell.AttrNone {
		m.cur = cell.AttrNone
		return nil
	}
	m.cur = m.cur.Without(a)
	return nil
}

func (m *Memory) ReadKey(timeout time.Duration) (int, error) {
	if !m.initialized {
		return RawNoInput, ErrUnavailable
	}
	select {
	case code := <-m.codes:
		return code, nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case code := <-m.codes:
		return code, nil
	case <-timer.C:
		return RawNoInput, nil
	}
}

func (m *Memory) Show() error {
	if !m.initialized {
		return ErrUnavailable
	}
	m.Shows++
	return nil
}

func (m *Memory) Beep() {}

// PushCodes queues raw codes for ReadKey to return in order.
func (m *Memory) PushCodes(codes ...int) {
	for _, code := range codes {
		m.codes <- code
	}
}

// PushString queues a string as its UTF-8 byte codes.
func (m *Memory) PushString(s string) {
	for _, b := range []byte(s) {
		m.codes <- int(b)
	}
}

// SimulateResize changes the dimensions, blanks the display, and queues
// the resize code the way a real terminal delivers one.
func (m *Memory) SimulateResize(width, height int) {
	m.width = width
	m.height = height
	m.allocate()
	m.codes <- RawResize
}

// CellAt returns the recorded cell at the given position.
func (m *Memory) CellAt(row, col int) cell.Cell {
	if row < 0 || row >= m.height || col < 0 || col >= m.width {
		return cell.Empty()
	}
	return m.cells[row][col]
}

// Cursor returns the recorded cursor position.
func (m *Memory) Cursor() (row, col int) {
	return m.cursorRow, m.cursorCol
}

// RowString returns the visible text of one row, trailing blanks
// trimmed. Useful for test assertions.
func (m *Memory) RowString(row int) string {
	if row < 0 || row >= m.height {
		return ""
	}
	var sb strings.Builder
	for _, c := range m.cells[row] {
		if c.IsContinuation() {
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return strings.TrimRight(sb.String(), " ")
}
