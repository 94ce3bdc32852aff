package tetris

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		tetris, err := New(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tetris.grid.Width() != 10 || tetris.grid.Height() != 20 {
			t.Errorf("wanted a 10x20 grid, got %dx%d", tetris.grid.Width(), tetris.grid.Height())
		}
		if tetris.Tetromino() == nil {
			t.Error("wanted an active piece")
		}
		if tetris.Score() != 0 || tetris.LinesClear() != 0 || tetris.Level() != 1 {
			t.Errorf("wanted score 0, lines 0, level 1, got %d, %d, %d", tetris.Score(), tetris.LinesClear(), tetris.Level())
		}
		if tetris.Paused() || tetris.GameOver() {
			t.Error("wanted a running game")
		}
	})

	t.Run("invalid size", func(t *testing.T) {
		_, err := New(&Options{Width: 2, Height: 20})
		if !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("wanted ErrInvalidDimensions, got %v", err)
		}
	})
}

func TestSoftDropToTheFloor(t *testing.T) {
	tetris := NewTestTetris(O, T)
	p := tetris.Tetromino()
	if p.Shape != O || p.X != 4 || p.Y != 0 {
		t.Fatalf("wanted O at (4,0), got %s at (%d,%d)", p.Shape, p.X, p.Y)
	}

	for i := range 18 {
		if !tetris.Move(MoveDown) {
			t.Fatalf("move %d: wanted the piece to move down", i+1)
		}
	}
	if tetris.Move(MoveDown) {
		t.Fatal("wanted the 19th move down to lock the piece")
	}

	for _, c := range []Point{{4, 18}, {5, 18}, {4, 19}, {5, 19}} {
		if got, _ := tetris.grid.At(c.X, c.Y); got != Yellow {
			t.Errorf("wanted %v to be yellow, got %q", c, got)
		}
	}
	if tetris.Score() != 0 {
		t.Errorf("wanted score 0, got %d", tetris.Score())
	}

	// the next piece is the one that moves now.
	p = tetris.Tetromino()
	if p == nil || p.Shape != T || p.Y != 0 {
		t.Fatalf("wanted a fresh T at the top, got %+v", p)
	}
	if !tetris.Move(MoveLeft) {
		t.Fatal("wanted the new piece to move left")
	}
	if got := tetris.Tetromino().X; got != p.X-1 {
		t.Errorf("wanted x=%d, got %d", p.X-1, got)
	}
	if got, _ := tetris.grid.At(4, 19); got != Yellow {
		t.Errorf("wanted the locked piece to stay put, got %q", got)
	}
}

func TestMoveAgainstTheStack(t *testing.T) {
	tetris := NewTestTetris(I)
	var cells []Point
	for y := 10; y < 20; y++ {
		cells = append(cells, Point{0, y})
	}
	tetris.grid.Commit(cells, Blue)

	for range 10 {
		tetris.Move(MoveDown)
	}
	for range 2 {
		tetris.Move(MoveLeft)
	}
	p := tetris.Tetromino()
	if p.X != 1 || p.Y != 10 {
		t.Fatalf("wanted the I at (1,10), got (%d,%d)", p.X, p.Y)
	}
	if tetris.Move(MoveLeft) {
		t.Error("wanted the move into column 0 to be rejected")
	}
	if got := tetris.Tetromino(); got.X != 1 || got.Y != 10 {
		t.Errorf("wanted the I to stay at (1,10), got (%d,%d)", got.X, got.Y)
	}
}

func TestMoveActions(t *testing.T) {
	// 		0 1 2 3 4 5 6 7 8 9		0 1 2
	// 0	. . . O . . . . . .		O . .
	// 1	. . . O O O . . . .		O O O
	tests := []struct {
		name         string
		action       Action
		updateStack  []Point
		wantGrid     Mask
		wantLocation []int // x, y
	}{
		{
			name:         "Move left unblocked",
			action:       MoveLeft,
			wantLocation: []int{2, 0},
		},
		{
			name:         "Move left blocked",
			action:       MoveLeft,
			updateStack:  []Point{{2, 1}},
			wantLocation: []int{3, 0},
		},
		{
			name:         "Move right unblocked",
			action:       MoveRight,
			wantLocation: []int{4, 0},
		},
		{
			name:         "Move right blocked",
			action:       MoveRight,
			updateStack:  []Point{{6, 1}},
			wantLocation: []int{3, 0},
		},
		{
			name:         "Move down unblocked",
			action:       MoveDown,
			wantLocation: []int{3, 1},
		},
		{
			name:         "Rotate right when unblocked",
			action:       RotateRight,
			wantLocation: []int{3, 0},
			wantGrid:     Mask{{true, true}, {true, false}, {true, false}},
		},
		{
			name:         "Rotate left when unblocked",
			action:       RotateLeft,
			wantLocation: []int{3, 0},
			wantGrid:     Mask{{false, true}, {false, true}, {true, true}},
		},
		{
			name:         "Rotate right blocked",
			action:       RotateRight,
			updateStack:  []Point{{3, 2}},
			wantLocation: []int{3, 0},
			wantGrid:     Mask{{true, false, false}, {true, true, true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tetris := NewTestTetris(J)
			if tt.updateStack != nil {
				tetris.grid.Commit(tt.updateStack, Red)
			}
			if err := tetris.Do(tt.action); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			p := tetris.Tetromino()
			if p.X != tt.wantLocation[0] {
				t.Errorf("wanted tetromino's X to be %d, got %d", tt.wantLocation[0], p.X)
			}
			if p.Y != tt.wantLocation[1] {
				t.Errorf("wanted tetromino's Y to be %d, got %d", tt.wantLocation[1], p.Y)
			}
			if tt.wantGrid != nil && !reflect.DeepEqual(p.Grid, tt.wantGrid) {
				t.Errorf("wanted %v, got %v", tt.wantGrid, p.Grid)
			}
		})
	}
}

func TestLineClearScore(t *testing.T) {
	t.Run("rows 2 and 5", func(t *testing.T) {
		tetris := NewTestTetris(O)
		var full []Point
		for x := range 10 {
			full = append(full, Point{x, 2}, Point{x, 5})
		}
		tetris.grid.Commit(full, Red)
		tetris.grid.Commit([]Point{{0, 3}, {9, 19}}, Green)

		o := tetris.Tick()
		if !o.Locked || o.Cleared != 2 || o.Points != 200 || o.GameOver {
			t.Fatalf("wanted a lock clearing 2 rows for 200 points, got %+v", o)
		}
		if tetris.Score() != 200 {
			t.Errorf("wanted score 200, got %d", tetris.Score())
		}
		if tetris.LinesClear() != 2 {
			t.Errorf("wanted 2 lines clear, got %d", tetris.LinesClear())
		}

		want := emptyRows(10, 20)
		// the O locked on rows 0-1 and went down past both rows.
		want[2][4], want[2][5], want[3][4], want[3][5] = Yellow, Yellow, Yellow, Yellow
		want[4][0] = Green
		want[19][9] = Green
		if !reflect.DeepEqual(tetris.grid.Rows(), want) {
			t.Errorf("wanted %v, got %v", want, tetris.grid.Rows())
		}
	})

	t.Run("drop completes the bottom rows", func(t *testing.T) {
		tetris := NewTestTetris(O)
		var cells []Point
		for x := range 10 {
			if x == 4 || x == 5 {
				continue
			}
			cells = append(cells, Point{x, 18}, Point{x, 19})
		}
		tetris.grid.Commit(cells, Blue)
		o := tetris.Drop()
		if o.Cleared != 2 || tetris.Score() != 200 {
			t.Errorf("wanted 2 rows and 200 points, got %d rows and %d points", o.Cleared, tetris.Score())
		}
		if !reflect.DeepEqual(tetris.grid.Rows(), emptyRows(10, 20)) {
			t.Errorf("wanted an empty grid, got %v", tetris.grid.Rows())
		}
	})
}

func TestDrop(t *testing.T) {
	tetris := NewTestTetris(T, O)
	o := tetris.Drop()
	if !o.Locked || o.Cleared != 0 {
		t.Fatalf("wanted a lock without clears, got %+v", o)
	}
	want := emptyRows(10, 20)
	want[18][4] = Purple
	want[19][3] = Purple
	want[19][4] = Purple
	want[19][5] = Purple
	if !reflect.DeepEqual(tetris.grid.Rows(), want) {
		t.Errorf("wanted %v, got %v", want, tetris.grid.Rows())
	}
	if p := tetris.Tetromino(); p == nil || p.Shape != O {
		t.Errorf("wanted the next piece to be an O, got %+v", p)
	}
}

func TestGameOver(t *testing.T) {
	tetris := NewTestTetris(O)
	// the O spawns on rows 0-1 and can't fall.
	tetris.grid.Commit([]Point{{4, 2}, {5, 2}}, Red)

	o := tetris.Tick()
	if !o.Locked || !o.GameOver {
		t.Fatalf("wanted a lock ending the game, got %+v", o)
	}
	if !tetris.GameOver() {
		t.Fatal("wanted the game to be over")
	}
	if tetris.Tetromino() != nil {
		t.Error("wanted no active piece after game over")
	}

	before := tetris.Snapshot()
	tetris.Tick()
	for _, a := range []Action{MoveLeft, MoveRight, MoveDown, DropDown, RotateRight, RotateLeft} {
		tetris.Do(a)
	}
	if !reflect.DeepEqual(tetris.Snapshot(), before) {
		t.Error("wanted a finished game to ignore ticks and moves")
	}

	tetris.Reset()
	if tetris.GameOver() || tetris.Tetromino() == nil {
		t.Error("wanted reset to start a new game")
	}
	if !reflect.DeepEqual(tetris.grid.Rows(), emptyRows(10, 20)) {
		t.Error("wanted reset to empty the grid")
	}
}

func TestPause(t *testing.T) {
	tetris := NewTestTetris(J)
	tetris.grid.Commit([]Point{{0, 19}}, Red)
	tetris.Tick()
	tetris.Pause()
	before := tetris.Snapshot()

	tetris.Tick()
	if tetris.Move(MoveLeft) || tetris.Rotate(Clockwise) {
		t.Error("wanted moves to be ignored while paused")
	}
	tetris.Drop()
	after := tetris.Snapshot()
	if !reflect.DeepEqual(after, before) {
		t.Errorf("wanted paused game unchanged, got %+v, want %+v", after, before)
	}

	if err := tetris.Do(TogglePause); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tetris.Paused() {
		t.Fatal("wanted the game to resume")
	}
	tetris.Tick()
	if got := tetris.Tetromino().Y; got != 2 {
		t.Errorf("wanted the piece on row 2 after resuming, got %d", got)
	}
}

func TestDoUnknownAction(t *testing.T) {
	tetris := NewTestTetris(J)
	if err := tetris.Do("jump"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("wanted ErrUnknownAction, got %v", err)
	}
}

func TestSetLevel(t *testing.T) {
	tests := []struct {
		lines, wantLevel int
	}{
		{0, 1},
		{1, 1},
		{9, 1},
		{10, 2},
		{12, 2},
		{20, 3},
		{94, 10},
		{100, 11},
		{209, 21},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("for %d lines should have level %d", tt.lines, tt.wantLevel), func(t *testing.T) {
			tetris := NewTestTetris(J)
			tetris.linesClear = tt.lines
			tetris.setLevel()
			if tetris.Level() != tt.wantLevel {
				t.Errorf("wanted level %d, got %d", tt.wantLevel, tetris.Level())
			}
		})
	}

	t.Run("level never goes down", func(t *testing.T) {
		tetris := NewTestTetris(J)
		tetris.level = 5
		tetris.linesClear = 1
		tetris.setLevel()
		if tetris.Level() != 5 {
			t.Errorf("wanted level 5, got %d", tetris.Level())
		}
		tetris.linesClear = 50
		tetris.setLevel()
		if tetris.Level() != 6 {
			t.Errorf("wanted level 6, got %d", tetris.Level())
		}
	})
}

func TestInterval(t *testing.T) {
	tetris := NewTestTetris(J)
	if got := tetris.Interval(); got != time.Second {
		t.Errorf("wanted 1s at level 1, got %v", got)
	}
	tetris.level = 4
	if got := tetris.Interval(); got != 250*time.Millisecond {
		t.Errorf("wanted 250ms at level 4, got %v", got)
	}
}

func TestSnapshot(t *testing.T) {
	tetris := NewTestTetris(J, S)
	tetris.grid.Commit([]Point{{9, 19}}, Red)
	s := tetris.Snapshot()
	if s.Width != 10 || s.Height != 20 || s.Next != S || s.Level != 1 {
		t.Errorf("unexpected snapshot header %+v", s)
	}
	if s.GhostY != 18 {
		t.Errorf("wanted ghost on row 18, got %d", s.GhostY)
	}

	want := emptyRows(10, 20)
	want[19][9] = Red
	want[0][3] = Blue
	want[1][3] = Blue
	want[1][4] = Blue
	want[1][5] = Blue
	if got := s.Composite(); !reflect.DeepEqual(got, want) {
		t.Errorf("wanted %v, got %v", want, got)
	}

	// the snapshot doesn't alias the session.
	s.Stack[0][0] = Red
	s.Tetromino.X = 7
	if c, _ := tetris.grid.At(0, 0); c != Empty {
		t.Error("wanted the grid untouched")
	}
	if tetris.Tetromino().X != 3 {
		t.Error("wanted the active piece untouched")
	}
}

func TestActivePieceNeverOverlaps(t *testing.T) {
	tetris, _ := New(&Options{Randomizer: NewUniform(rand.NewPCG(1, 2))})
	actions := []Action{MoveLeft, MoveRight, MoveDown, RotateRight, RotateLeft, DropDown}
	r := rand.New(rand.NewPCG(3, 4))
	for i := range 2000 {
		if tetris.GameOver() {
			tetris.Reset()
		}
		if i%3 == 0 {
			tetris.Tick()
		} else {
			tetris.Do(actions[r.IntN(len(actions))])
		}
		p := tetris.Tetromino()
		if p == nil {
			continue
		}
		for _, c := range p.Cells() {
			occupied, err := tetris.grid.IsOccupied(c.X, c.Y)
			if err != nil {
				t.Fatalf("step %d: active cell %v out of bounds: %v", i, c, err)
			}
			if occupied {
				t.Fatalf("step %d: active cell %v overlaps the stack", i, c)
			}
		}
	}
}

func TestRandomizers(t *testing.T) {
	t.Run("uniform deals every shape", func(t *testing.T) {
		u := NewUniform(rand.NewPCG(7, 7))
		seen := map[Shape]int{}
		for range 700 {
			seen[u.Next()]++
		}
		for _, s := range Shapes {
			if seen[s] == 0 {
				t.Errorf("wanted %s to be dealt", s)
			}
		}
	})

	t.Run("bag deals every shape once per round", func(t *testing.T) {
		b := NewBag(rand.NewPCG(1, 1))
		for round := range 3 {
			seen := map[Shape]bool{}
			for range 7 {
				seen[b.Next()] = true
			}
			if len(seen) != 7 {
				t.Errorf("round %d: wanted 7 distinct shapes, got %d", round, len(seen))
			}
		}
	})

	t.Run("bag's first draw is never S, Z or O", func(t *testing.T) {
		for i := range 50 {
			s := NewBag(rand.NewPCG(uint64(i), 0)).Next()
			if s == S || s == Z || s == O {
				t.Errorf("wanted I, J, L or T, got %s", s)
			}
		}
	})
}

func TestNewTestTetrisWithStack(t *testing.T) {
	tetris := NewTestTetrisWithStack(Green, []Point{{0, 19}, {9, 19}}, T)
	s := tetris.Snapshot()
	if s.Stack[19][0] != Green || s.Stack[19][9] != Green {
		t.Errorf("wanted green cells on row 19, got %v", s.Stack[19])
	}
	if s.Tetromino == nil || s.Tetromino.Shape != T {
		t.Errorf("wanted a falling T, got %+v", s.Tetromino)
	}
}
