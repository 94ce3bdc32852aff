package tetris

// Snapshot is a read-only copy of a session, enough to draw a frame.
type Snapshot struct {
	Width, Height int
	// Stack holds the locked cells, row by row from the top.
	Stack [][]Color
	// Tetromino is the active piece, nil between a lock and the next spawn or
	// after the game is over.
	Tetromino *Tetromino
	// GhostY is the row the active piece would lock at if dropped.
	GhostY     int
	Next       Shape
	Score      int
	Level      int
	LinesClear int
	Paused     bool
	GameOver   bool
}

// Snapshot returns a copy of the current state that's safe to hand to a renderer.
func (t *Tetris) Snapshot() *Snapshot {
	s := &Snapshot{
		Width:      t.grid.Width(),
		Height:     t.grid.Height(),
		Stack:      t.grid.Rows(),
		Tetromino:  t.ctrl.piece.copy(),
		Next:       t.next,
		Score:      t.score,
		Level:      t.level,
		LinesClear: t.linesClear,
		Paused:     t.paused,
		GameOver:   t.gameOver,
	}
	if s.Tetromino != nil {
		s.GhostY = s.Tetromino.Y + t.ctrl.dropDistance()
	}
	return s
}

// Composite returns the stack with the active piece painted over it.
func (s *Snapshot) Composite() [][]Color {
	out := make([][]Color, len(s.Stack))
	for i := range s.Stack {
		out[i] = make([]Color, len(s.Stack[i]))
		copy(out[i], s.Stack[i])
	}
	if s.Tetromino == nil {
		return out
	}
	for _, c := range s.Tetromino.Cells() {
		if c.Y >= 0 && c.Y < len(out) && c.X >= 0 && c.X < len(out[c.Y]) {
			out[c.Y][c.X] = s.Tetromino.Color
		}
	}
	return out
}
