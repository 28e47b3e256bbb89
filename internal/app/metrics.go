package app

import "sync/atomic"

// Metrics tracks engine activity with lock-free counters.
type Metrics struct {
	frames     atomic.Uint64
	cells      atomic.Uint64
	dispatched atomic.Uint64
	unknown    atomic.Uint64
	resizes    atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Frames     uint64
	Cells      uint64
	Dispatched uint64
	Unknown    uint64
	Resizes    uint64
}

func (m *Metrics) recordFrame(cells int) {
	m.frames.Add(1)
	m.cells.Add(uint64(cells))
}

func (m *Metrics) recordDispatch() { m.dispatched.Add(1) }
func (m *Metrics) recordUnknown()  { m.unknown.Add(1) }
func (m *Metrics) recordResize()   { m.resizes.Add(1) }

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Frames:     m.frames.Load(),
		Cells:      m.cells.Load(),
		Dispatched: m.dispatched.Load(),
		Unknown:    m.unknown.Load(),
		Resizes:    m.resizes.Load(),
	}
}
