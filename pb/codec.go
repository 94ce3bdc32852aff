package pb

import (
	"blockfall/tetris"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var ErrMalformed = errors.New("malformed message")

func errUnimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

// Hello opens a Play stream.
type Hello struct {
	Name          string
	Width, Height int
	Bag           bool
}

func HelloMessage(h *Hello) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"name":   h.Name,
		"width":  h.Width,
		"height": h.Height,
		"bag":    h.Bag,
	})
}

func ParseHello(m *structpb.Struct) *Hello {
	f := m.GetFields()
	return &Hello{
		Name:   f["name"].GetStringValue(),
		Width:  int(f["width"].GetNumberValue()),
		Height: int(f["height"].GetNumberValue()),
		Bag:    f["bag"].GetBoolValue(),
	}
}

func ActionMessage(a tetris.Action) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"action": structpb.NewStringValue(string(a)),
	}}
}

// ParseAction returns the action carried by m, false if it carries none.
func ParseAction(m *structpb.Struct) (tetris.Action, bool) {
	v, ok := m.GetFields()["action"]
	if !ok {
		return "", false
	}
	return tetris.Action(v.GetStringValue()), true
}

// EncodeSnapshot builds the message sent to clients for a session update.
func EncodeSnapshot(sessionID string, s *tetris.Snapshot) (*structpb.Struct, error) {
	stack := make([]any, len(s.Stack))
	for y, row := range s.Stack {
		cells := make([]any, len(row))
		for x, c := range row {
			cells[x] = string(c)
		}
		stack[y] = cells
	}
	m := map[string]any{
		"session_id":  sessionID,
		"width":       s.Width,
		"height":      s.Height,
		"stack":       stack,
		"ghost_y":     s.GhostY,
		"next":        string(s.Next),
		"score":       s.Score,
		"level":       s.Level,
		"lines_clear": s.LinesClear,
		"paused":      s.Paused,
		"game_over":   s.GameOver,
	}
	if t := s.Tetromino; t != nil {
		grid := make([]any, len(t.Grid))
		for y, row := range t.Grid {
			cells := make([]any, len(row))
			for x, c := range row {
				cells[x] = c
			}
			grid[y] = cells
		}
		m["tetromino"] = map[string]any{
			"shape":    string(t.Shape),
			"color":    string(t.Color),
			"x":        t.X,
			"y":        t.Y,
			"rotation": t.Rotation,
			"grid":     grid,
		}
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return st, nil
}

// DecodeSnapshot reads a message built by EncodeSnapshot.
func DecodeSnapshot(m *structpb.Struct) (string, *tetris.Snapshot, error) {
	f := m.GetFields()
	s := &tetris.Snapshot{
		Width:      int(f["width"].GetNumberValue()),
		Height:     int(f["height"].GetNumberValue()),
		GhostY:     int(f["ghost_y"].GetNumberValue()),
		Next:       tetris.Shape(f["next"].GetStringValue()),
		Score:      int(f["score"].GetNumberValue()),
		Level:      int(f["level"].GetNumberValue()),
		LinesClear: int(f["lines_clear"].GetNumberValue()),
		Paused:     f["paused"].GetBoolValue(),
		GameOver:   f["game_over"].GetBoolValue(),
	}

	rows := f["stack"].GetListValue().GetValues()
	if len(rows) != s.Height {
		return "", nil, fmt.Errorf("%w: %d stack rows for height %d", ErrMalformed, len(rows), s.Height)
	}
	s.Stack = make([][]tetris.Color, len(rows))
	for y, r := range rows {
		cells := r.GetListValue().GetValues()
		if len(cells) != s.Width {
			return "", nil, fmt.Errorf("%w: row %d has %d cells for width %d", ErrMalformed, y, len(cells), s.Width)
		}
		s.Stack[y] = make([]tetris.Color, len(cells))
		for x, c := range cells {
			s.Stack[y][x] = tetris.Color(c.GetStringValue())
		}
	}

	if tv, ok := f["tetromino"]; ok {
		tf := tv.GetStructValue().GetFields()
		t := &tetris.Tetromino{
			Shape:    tetris.Shape(tf["shape"].GetStringValue()),
			Color:    tetris.Color(tf["color"].GetStringValue()),
			X:        int(tf["x"].GetNumberValue()),
			Y:        int(tf["y"].GetNumberValue()),
			Rotation: int(tf["rotation"].GetNumberValue()),
		}
		for _, r := range tf["grid"].GetListValue().GetValues() {
			var row []bool
			for _, c := range r.GetListValue().GetValues() {
				row = append(row, c.GetBoolValue())
			}
			t.Grid = append(t.Grid, row)
		}
		if len(t.Grid) == 0 {
			return "", nil, fmt.Errorf("%w: tetromino without cells", ErrMalformed)
		}
		s.Tetromino = t
	}
	return f["session_id"].GetStringValue(), s, nil
}
