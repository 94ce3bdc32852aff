package tetris

import (
	"fmt"
	"testing"
)

func TestSpawn(t *testing.T) {
	for w := 4; w <= 12; w++ {
		for h := 4; h <= 8; h++ {
			for _, s := range Shapes {
				t.Run(fmt.Sprintf("%s in %dx%d", s, w, h), func(t *testing.T) {
					g, _ := NewGrid(w, h)
					c := newController(g)
					ok, err := c.spawn(s)
					if err != nil || !ok {
						t.Fatalf("wanted spawn to succeed, got %t, %v", ok, err)
					}
					if c.state != Falling {
						t.Errorf("wanted state falling, got %s", c.state)
					}
					if c.piece.Y != 0 {
						t.Errorf("wanted row 0, got %d", c.piece.Y)
					}
					if want := (w - c.piece.Grid.Cols()) / 2; c.piece.X != want {
						t.Errorf("wanted column %d, got %d", want, c.piece.X)
					}
					for _, p := range c.piece.Cells() {
						if !g.InBounds(p.X, p.Y) {
							t.Errorf("cell %v out of the grid", p)
						}
					}
				})
			}
		}
	}
}

func TestSpawnBlocked(t *testing.T) {
	g, _ := NewGrid(10, 20)
	g.rows[0][4] = Red
	c := newController(g)
	ok, err := c.spawn(O)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("wanted spawn to fail on an occupied cell")
	}
	if c.piece != nil || c.state != NoPiece {
		t.Errorf("wanted no active piece, got %v in state %s", c.piece, c.state)
	}
}

func TestTryMove(t *testing.T) {
	// 		0 1 2 3 4 5 6 7 8 9		0 1 2
	// 0	. . . . O . . . . .		. O .
	// 1	. . . O O O . . . .		O O O
	// 2	. . . . . C . . . .
	tests := []struct {
		name           string
		deltaX, deltaY int
		wantMoved      bool
	}{
		{name: "left", deltaX: -1, wantMoved: true},
		{name: "right", deltaX: 1, wantMoved: true},
		{name: "down onto a locked cell", deltaY: 1},
		{name: "left bound", deltaX: -4},
		{name: "right bound", deltaX: 5},
		{name: "right edge", deltaX: 4, wantMoved: true},
		{name: "bottom bound", deltaX: -3, deltaY: 19},
		{name: "to the floor", deltaX: -3, deltaY: 18, wantMoved: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := NewGrid(10, 20)
			g.rows[2][5] = Red
			c := newController(g)
			c.spawn(T)
			x, y := c.piece.X, c.piece.Y

			moved := c.tryMove(tt.deltaX, tt.deltaY)
			if moved != tt.wantMoved {
				t.Fatalf("wanted moved %t, got %t", tt.wantMoved, moved)
			}
			if !moved {
				tt.deltaX, tt.deltaY = 0, 0
			}
			if c.piece.X != x+tt.deltaX || c.piece.Y != y+tt.deltaY {
				t.Errorf("wanted (%d,%d), got (%d,%d)", x+tt.deltaX, y+tt.deltaY, c.piece.X, c.piece.Y)
			}
		})
	}
}

func TestTryRotate(t *testing.T) {
	t.Run("rotates in place", func(t *testing.T) {
		g, _ := NewGrid(10, 20)
		c := newController(g)
		c.spawn(I)
		if !c.tryRotate(Clockwise) {
			t.Fatal("wanted rotation to succeed")
		}
		if c.piece.X != 3 || c.piece.Y != 0 || c.piece.Rotation != 1 {
			t.Errorf("wanted (3,0) rotation 1, got (%d,%d) rotation %d", c.piece.X, c.piece.Y, c.piece.Rotation)
		}
		if c.piece.Grid.Rows() != 4 || c.piece.Grid.Cols() != 1 {
			t.Errorf("wanted a vertical I, got %v", c.piece.Grid)
		}
	})

	t.Run("no wall kicks", func(t *testing.T) {
		g, _ := NewGrid(10, 20)
		c := newController(g)
		c.spawn(I)
		c.tryRotate(Clockwise)
		for c.tryMove(1, 0) {
		}
		if c.piece.X != 9 {
			t.Fatalf("wanted the I against the right wall, got x=%d", c.piece.X)
		}
		before := c.piece.copy()
		if c.tryRotate(Clockwise) {
			t.Error("wanted rotation against the wall to be rejected")
		}
		if c.piece.X != before.X || c.piece.Rotation != before.Rotation || c.piece.Grid.Cols() != 1 {
			t.Errorf("wanted the piece unchanged, got %+v", c.piece)
		}
	})

	t.Run("blocked by the stack", func(t *testing.T) {
		g, _ := NewGrid(10, 20)
		g.rows[2][4] = Red
		c := newController(g)
		c.spawn(T)
		// clockwise T needs (3,2).
		if !c.tryRotate(Clockwise) {
			t.Error("wanted clockwise rotation to succeed")
		}
		c.tryRotate(CounterClockwise)
		g.rows[2][3] = Red
		if c.tryRotate(Clockwise) {
			t.Error("wanted clockwise rotation to be rejected")
		}
		if c.piece.Rotation != 0 {
			t.Errorf("wanted rotation 0, got %d", c.piece.Rotation)
		}
	})
}

func TestStepDown(t *testing.T) {
	g, _ := NewGrid(10, 20)
	c := newController(g)
	c.spawn(J)
	for range 18 {
		if s, _ := c.stepDown(); s != Advanced {
			t.Fatalf("wanted the piece to advance, got lock at y=%d", c.piece.Y)
		}
	}
	s, err := c.stepDown()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != Lock {
		t.Fatal("wanted the piece to lock on the floor")
	}
	if c.piece != nil || c.state != Locked {
		t.Errorf("wanted no active piece in state locked, got %v in state %s", c.piece, c.state)
	}
	want := emptyRows(10, 20)
	want[18][3] = Blue
	want[19][3] = Blue
	want[19][4] = Blue
	want[19][5] = Blue
	for y := range want {
		for x := range want[y] {
			if got := g.rows[y][x]; got != want[y][x] {
				t.Errorf("(%d,%d): wanted %q, got %q", x, y, want[y][x], got)
			}
		}
	}
}

func TestDropDistance(t *testing.T) {
	g, _ := NewGrid(10, 20)
	g.rows[10][4] = Red
	c := newController(g)
	c.spawn(O)
	if d := c.dropDistance(); d != 8 {
		t.Errorf("wanted drop distance 8, got %d", d)
	}
}
