package tetris

import (
	"sync"
	"time"
)

// MockTicker is a mock implementation of the Ticker interface.
type MockTicker struct {
	ch          chan time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick()               { m.ch <- time.Now() }
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}
func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
}
func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}
func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// Sequence is a Randomizer that deals its shapes in order, over and over.
type Sequence struct {
	shapes []Shape
	i      int
}

func NewSequence(shapes ...Shape) *Sequence {
	if len(shapes) == 0 {
		shapes = []Shape{J}
	}
	return &Sequence{shapes: shapes}
}

func (s *Sequence) Next() Shape {
	shape := s.shapes[s.i%len(s.shapes)]
	s.i++
	return shape
}

// NewTestTetris creates a 10x20 session whose pieces follow the given shapes.
func NewTestTetris(shapes ...Shape) *Tetris {
	t, err := New(&Options{Randomizer: NewSequence(shapes...)})
	if err != nil {
		panic(err)
	}
	return t
}

// NewTestTetrisWithStack creates a test session like NewTestTetris and locks the
// given cells in color c once the first piece has spawned.
func NewTestTetrisWithStack(c Color, cells []Point, shapes ...Shape) *Tetris {
	t := NewTestTetris(shapes...)
	if err := t.grid.Commit(cells, c); err != nil {
		panic(err)
	}
	return t
}

// NewTestGame creates a game over a test session and returns it with its manual ticker.
func NewTestGame(shapes ...Shape) (*Game, *MockTicker) {
	ticker := NewMockTicker()
	return NewConfigurableGame(NewTestTetris(shapes...), ticker, nil), ticker
}
