// Package tetris contains the logic of the game: the grid, the pieces and the
// session that drives them. It does no I/O and owns no timer; a host calls Tick
// at the pace given by Interval and serializes every call.
package tetris

import (
	"fmt"
	"slices"
	"time"
)

type Action string

const (
	MoveLeft    Action = "left"      // Moves the Tetromino one step to the left.
	MoveRight   Action = "right"     // Moves the Tetromino one step to the right.
	MoveDown    Action = "down"      // Moves the Tetromino one step down, locking it if blocked.
	DropDown    Action = "drop"      // Drops the Tetromino down the stack.
	RotateRight Action = "rotatecw"  // Rotates the Tetromino clockwise.
	RotateLeft  Action = "rotateccw" // Rotates the Tetromino counter-clockwise.
	TogglePause Action = "pause"     // Pauses or resumes the game.
)

var actions = []Action{MoveLeft, MoveRight, MoveDown, DropDown, RotateRight, RotateLeft, TogglePause}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool { return slices.Contains(actions, a) }

const (
	pointsPerLine = 100
	linesPerLevel = 10
)

type Options struct {
	// Width and Height of the grid. Zero means 10x20.
	Width, Height int
	// Randomizer picks the next shapes. Nil means Uniform.
	Randomizer Randomizer
}

// Tetris is a game session. It owns the grid and the active piece.
type Tetris struct {
	grid *Grid
	ctrl *controller
	rand Randomizer
	next Shape

	score      int
	linesClear int
	level      int
	paused     bool
	gameOver   bool
}

// Outcome reports what a step down did to the session.
type Outcome struct {
	Locked   bool
	Cleared  int
	Points   int
	GameOver bool
}

// New returns a session ready to play: empty grid and a freshly spawned piece.
func New(o *Options) (*Tetris, error) {
	if o == nil {
		o = &Options{}
	}
	w, h := o.Width, o.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	g, err := NewGrid(w, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create grid: %w", err)
	}
	r := o.Randomizer
	if r == nil {
		r = NewUniform(nil)
	}
	t := &Tetris{
		grid: g,
		ctrl: newController(g),
		rand: r,
	}
	t.Reset()
	return t, nil
}

// Reset empties the grid, zeroes the score and spawns a new piece.
func (t *Tetris) Reset() {
	t.grid.Reset()
	t.score = 0
	t.linesClear = 0
	t.level = 1
	t.paused = false
	t.gameOver = false
	t.next = t.rand.Next()
	t.spawnNext()
}

// Tick moves the active piece one row down. When it can't, the piece locks,
// completed rows are cleared and the next piece spawns. Paused and finished
// sessions are left untouched.
func (t *Tetris) Tick() Outcome {
	if t.paused || t.gameOver {
		return Outcome{}
	}
	return t.down()
}

// Move shifts the active piece left, right or down. It reports whether the piece
// moved; a blocked side move is ignored and a blocked down move locks the piece.
func (t *Tetris) Move(a Action) bool {
	if t.paused || t.gameOver {
		return false
	}
	switch a {
	case MoveLeft:
		return t.ctrl.tryMove(-1, 0)
	case MoveRight:
		return t.ctrl.tryMove(1, 0)
	case MoveDown:
		return !t.down().Locked
	}
	return false
}

// Rotate turns the active piece in place. It reports false when the rotated shape
// would collide, in which case nothing changes.
func (t *Tetris) Rotate(d Direction) bool {
	if t.paused || t.gameOver {
		return false
	}
	return t.ctrl.tryRotate(d)
}

// Drop moves the active piece as far down as it goes and locks it.
func (t *Tetris) Drop() Outcome {
	if t.paused || t.gameOver {
		return Outcome{}
	}
	t.ctrl.tryMove(0, t.ctrl.dropDistance())
	return t.down()
}

// Do applies a host action.
func (t *Tetris) Do(a Action) error {
	switch a {
	case MoveLeft, MoveRight, MoveDown:
		t.Move(a)
	case DropDown:
		t.Drop()
	case RotateRight:
		t.Rotate(Clockwise)
	case RotateLeft:
		t.Rotate(CounterClockwise)
	case TogglePause:
		if t.paused {
			t.Resume()
		} else {
			t.Pause()
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	return nil
}

func (t *Tetris) Pause()  { t.paused = true }
func (t *Tetris) Resume() { t.paused = false }

func (t *Tetris) Paused() bool    { return t.paused }
func (t *Tetris) GameOver() bool  { return t.gameOver }
func (t *Tetris) Score() int      { return t.score }
func (t *Tetris) Level() int      { return t.level }
func (t *Tetris) LinesClear() int { return t.linesClear }
func (t *Tetris) Next() Shape     { return t.next }

// Tetromino returns a copy of the active piece, nil when there is none.
func (t *Tetris) Tetromino() *Tetromino { return t.ctrl.piece.copy() }

// Interval is how often the host should call Tick at the current level.
func (t *Tetris) Interval() time.Duration {
	return time.Second / time.Duration(t.level)
}

func (t *Tetris) down() Outcome {
	step, err := t.ctrl.stepDown()
	if err != nil {
		// the controller only commits cells it validated against the grid.
		panic(fmt.Sprintf("tetris: lock: %v", err))
	}
	if step == Advanced {
		return Outcome{}
	}

	cleared := t.grid.ClearCompletedRows()
	o := Outcome{
		Locked:  true,
		Cleared: cleared,
		Points:  cleared * pointsPerLine,
	}
	t.score += o.Points
	t.linesClear += cleared
	t.setLevel()
	if !t.spawnNext() {
		t.gameOver = true
		o.GameOver = true
	}
	return o
}

// setLevel raises the level every 10 lines. It never lowers it.
func (t *Tetris) setLevel() {
	t.level = max(t.level, 1+t.linesClear/linesPerLevel)
}

func (t *Tetris) spawnNext() bool {
	s := t.next
	t.next = t.rand.Next()
	ok, err := t.ctrl.spawn(s)
	if err != nil {
		panic(fmt.Sprintf("tetris: randomizer returned %v", err))
	}
	if !ok {
		t.gameOver = true
	}
	return ok
}
