package tetris

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrOutOfBounds       = errors.New("cell out of bounds")
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrUnknownShape      = errors.New("unknown shape")
	ErrUnknownAction     = errors.New("unknown action")
)

const (
	DefaultWidth  = 10
	DefaultHeight = 20

	minSize = 4
	maxSize = 64
)

// Point is a cell coordinate. X grows left to right and Y top to bottom.
type Point struct {
	X, Y int
}

// Grid holds the locked cells of the playfield. Its dimensions never change.
type Grid struct {
	width, height int
	rows          [][]Color
}

// NewGrid returns an empty grid. Both sides must be within [4, 64].
func NewGrid(width, height int) (*Grid, error) {
	if width < minSize || height < minSize {
		return nil, fmt.Errorf("%w: %dx%d, minimum is %dx%d", ErrInvalidDimensions, width, height, minSize, minSize)
	}
	if width > maxSize || height > maxSize {
		return nil, fmt.Errorf("%w: %dx%d, maximum is %dx%d", ErrInvalidDimensions, width, height, maxSize, maxSize)
	}
	g := &Grid{width: width, height: height}
	g.Reset()
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) lies within [0,width) x [0,height).
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// At returns the color of the cell at (x, y).
func (g *Grid) At(x, y int) (Color, error) {
	if !g.InBounds(x, y) {
		return Empty, fmt.Errorf("%w: (%d,%d) in %dx%d grid", ErrOutOfBounds, x, y, g.width, g.height)
	}
	return g.rows[y][x], nil
}

func (g *Grid) IsOccupied(x, y int) (bool, error) {
	c, err := g.At(x, y)
	if err != nil {
		return false, err
	}
	return c != Empty, nil
}

// Commit paints every cell with color. Either all cells are written or, if any
// of them is out of bounds, none is.
func (g *Grid) Commit(cells []Point, color Color) error {
	for _, c := range cells {
		if !g.InBounds(c.X, c.Y) {
			return fmt.Errorf("commit: %w: (%d,%d) in %dx%d grid", ErrOutOfBounds, c.X, c.Y, g.width, g.height)
		}
	}
	for _, c := range cells {
		g.rows[c.Y][c.X] = color
	}
	return nil
}

// ClearCompletedRows removes every full row at once and pushes the same number of
// empty rows in at the top. It returns how many rows were removed.
func (g *Grid) ClearCompletedRows() int {
	kept := make([][]Color, 0, g.height)
	for _, r := range g.rows {
		if !slices.Contains(r, Empty) {
			continue
		}
		kept = append(kept, r)
	}
	cleared := g.height - len(kept)
	if cleared == 0 {
		return 0
	}

	rows := make([][]Color, 0, g.height)
	for range cleared {
		rows = append(rows, make([]Color, g.width))
	}
	g.rows = append(rows, kept...)
	return cleared
}

// Reset empties every cell.
func (g *Grid) Reset() {
	g.rows = make([][]Color, g.height)
	for i := range g.rows {
		g.rows[i] = make([]Color, g.width)
	}
}

// Rows returns a copy of the cells, row by row from the top.
func (g *Grid) Rows() [][]Color {
	out := make([][]Color, len(g.rows))
	for i := range g.rows {
		out[i] = slices.Clone(g.rows[i])
	}
	return out
}
