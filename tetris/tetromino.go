package tetris

import "fmt"

// Shape is the variant tag of a tetromino.
type Shape string

const (
	I Shape = "I"
	O Shape = "O"
	T Shape = "T"
	L Shape = "L"
	J Shape = "J"
	S Shape = "S"
	Z Shape = "Z"
)

// Shapes lists the seven variants in catalogue order.
var Shapes = []Shape{I, O, T, L, J, S, Z}

// Color is the opaque identifier a cell is painted with. Empty means the cell is free.
type Color string

const (
	Empty  Color = ""
	Cyan   Color = "cyan"
	Yellow Color = "yellow"
	Purple Color = "purple"
	Orange Color = "orange"
	Blue   Color = "blue"
	Green  Color = "green"
	Red    Color = "red"
)

// Mask is a shape's cell layout, rows top to bottom.
type Mask [][]bool

// Rows returns the number of rows of the mask.
func (m Mask) Rows() int { return len(m) }

// Cols returns the width of the widest row of the mask.
func (m Mask) Cols() int {
	var c int
	for _, r := range m {
		c = max(c, len(r))
	}
	return c
}

func (m Mask) copy() Mask {
	if m == nil {
		return nil
	}
	out := make(Mask, len(m))
	for i := range m {
		out[i] = make([]bool, len(m[i]))
		copy(out[i], m[i])
	}
	return out
}

// Direction of a rotation.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

type variant struct {
	color Color
	// rotations holds one mask per distinct state. The mask for a rotation
	// index r is rotations[r%len(rotations)].
	rotations []Mask
}

/*
Shapes at rotation index 0, as they spawn:

.	I			O		T		L		J		S		Z
.	O O O O		O O		X O X	X X O	O X X	X O O	O O X
.				O O		O O O	O O O	O O O	O O X	X O O
*/
var catalogue = map[Shape]variant{
	I: {
		color: Cyan,
		rotations: []Mask{
			{{true, true, true, true}},
			{{true}, {true}, {true}, {true}},
		},
	},
	O: {
		color: Yellow,
		rotations: []Mask{
			{{true, true}, {true, true}},
		},
	},
	T: {
		color: Purple,
		rotations: []Mask{
			{{false, true, false}, {true, true, true}},
			{{true, false}, {true, true}, {true, false}},
			{{true, true, true}, {false, true, false}},
			{{false, true}, {true, true}, {false, true}},
		},
	},
	L: {
		color: Orange,
		rotations: []Mask{
			{{false, false, true}, {true, true, true}},
			{{true, false}, {true, false}, {true, true}},
			{{true, true, true}, {true, false, false}},
			{{true, true}, {false, true}, {false, true}},
		},
	},
	J: {
		color: Blue,
		rotations: []Mask{
			{{true, false, false}, {true, true, true}},
			{{true, true}, {true, false}, {true, false}},
			{{true, true, true}, {false, false, true}},
			{{false, true}, {false, true}, {true, true}},
		},
	},
	S: {
		color: Green,
		rotations: []Mask{
			{{false, true, true}, {true, true, false}},
			{{true, false}, {true, true}, {false, true}},
		},
	},
	Z: {
		color: Red,
		rotations: []Mask{
			{{true, true, false}, {false, true, true}},
			{{false, true}, {true, true}, {true, false}},
		},
	},
}

// ColorOf returns the color a shape is painted with.
func ColorOf(s Shape) Color { return catalogue[s].color }

// MaskOf returns a copy of the shape's mask at the given rotation index.
func MaskOf(s Shape, rotation int) (Mask, error) {
	v, ok := catalogue[s]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, s)
	}
	return v.rotations[normalize(rotation)%len(v.rotations)].copy(), nil
}

// Rotate returns the candidate mask and rotation index reached by rotating a shape
// sitting at the given rotation index. It never touches any grid or position.
func Rotate(s Shape, rotation int, d Direction) (Mask, int, error) {
	next := rotation + 1
	if d == CounterClockwise {
		next = rotation - 1
	}
	next = normalize(next)
	m, err := MaskOf(s, next)
	if err != nil {
		return nil, rotation, err
	}
	return m, next, nil
}

func normalize(rotation int) int { return ((rotation % 4) + 4) % 4 }

// Tetromino is the active piece: a variant instance with a position on the grid.
// X and Y are the grid coordinates of the mask's top-left cell.
type Tetromino struct {
	Shape    Shape
	Color    Color
	Grid     Mask
	X, Y     int
	Rotation int
}

// NewTetromino returns the shape at rotation 0, anchored at the origin.
func NewTetromino(s Shape) (*Tetromino, error) {
	m, err := MaskOf(s, 0)
	if err != nil {
		return nil, err
	}
	return &Tetromino{
		Shape: s,
		Color: ColorOf(s),
		Grid:  m,
	}, nil
}

// Cells returns the grid coordinates covered by the tetromino.
func (t *Tetromino) Cells() []Point {
	return cellsAt(t.Grid, t.X, t.Y)
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	c := *t
	c.Grid = t.Grid.copy()
	return &c
}

func cellsAt(m Mask, x, y int) []Point {
	var cells []Point
	for iy, row := range m {
		for ix, c := range row {
			if c {
				cells = append(cells, Point{X: x + ix, Y: y + iy})
			}
		}
	}
	return cells
}
