package tetris

// PieceState is the lifecycle state of the active piece.
type PieceState int

const (
	NoPiece PieceState = iota
	Falling
	Locked
)

func (s PieceState) String() string {
	switch s {
	case Falling:
		return "falling"
	case Locked:
		return "locked"
	default:
		return "none"
	}
}

// Step is the result of moving the active piece one row down.
type Step int

const (
	Advanced Step = iota
	Lock
)

// controller moves a single active piece over the grid. The piece's cells are
// never written into the grid until it locks.
type controller struct {
	grid  *Grid
	piece *Tetromino
	state PieceState
}

func newController(g *Grid) *controller {
	return &controller{grid: g}
}

// spawn anchors a new piece of shape s at the top center of the grid. It returns
// false, leaving no active piece, when that position is already blocked.
func (c *controller) spawn(s Shape) (bool, error) {
	t, err := NewTetromino(s)
	if err != nil {
		return false, err
	}
	t.X = (c.grid.Width() - t.Grid.Cols()) / 2
	t.Y = 0

	if c.collides(t.Grid, t.X, t.Y) {
		c.piece = nil
		c.state = NoPiece
		return false, nil
	}
	c.piece = t
	c.state = Falling
	return true, nil
}

// collides reports whether mask m anchored at (x, y) leaves the grid or overlaps a
// locked cell.
func (c *controller) collides(m Mask, x, y int) bool {
	for _, p := range cellsAt(m, x, y) {
		// pieces never move up, a negative row only shows up on a bad anchor.
		if p.X < 0 || p.X >= c.grid.Width() || p.Y < 0 || p.Y >= c.grid.Height() {
			return true
		}
		occupied, err := c.grid.IsOccupied(p.X, p.Y)
		if err != nil || occupied {
			return true
		}
	}
	return false
}

func (c *controller) tryMove(dx, dy int) bool {
	if c.state != Falling {
		return false
	}
	if c.collides(c.piece.Grid, c.piece.X+dx, c.piece.Y+dy) {
		return false
	}
	c.piece.X += dx
	c.piece.Y += dy
	return true
}

// tryRotate validates the rotated mask at the current anchor. There are no wall
// kicks: a colliding rotation is rejected.
func (c *controller) tryRotate(d Direction) bool {
	if c.state != Falling {
		return false
	}
	m, r, err := Rotate(c.piece.Shape, c.piece.Rotation, d)
	if err != nil || c.collides(m, c.piece.X, c.piece.Y) {
		return false
	}
	c.piece.Grid = m
	c.piece.Rotation = r
	return true
}

// stepDown moves the piece one row down, or locks it into the grid when the row
// below is blocked. After a lock there is no active piece until the next spawn.
func (c *controller) stepDown() (Step, error) {
	if c.tryMove(0, 1) {
		return Advanced, nil
	}
	if c.state != Falling {
		return Advanced, nil
	}
	if err := c.grid.Commit(c.piece.Cells(), c.piece.Color); err != nil {
		return Advanced, err
	}
	c.state = Locked
	c.piece = nil
	return Lock, nil
}

// dropDistance is how many rows the piece can fall before it would lock.
func (c *controller) dropDistance() int {
	if c.state != Falling {
		return 0
	}
	var d int
	for !c.collides(c.piece.Grid, c.piece.X, c.piece.Y+d+1) {
		d++
	}
	return d
}
