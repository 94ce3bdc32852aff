package client

import (
	"blockfall/tetris"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"text/template"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos    = "\033[H" // Reset cursor position to 0,0
	clearScreen = "\033[2J\033[H"

	emptyCell = "  "
	ghostCell = "[]"
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[tetris.Color]string{
	tetris.Cyan:   Cyan,
	tetris.Blue:   Blue,
	tetris.Orange: Orange,
	tetris.Yellow: Yellow,
	tetris.Green:  Green,
	tetris.Red:    Red,
	tetris.Purple: Magenta,
}

type templateData struct {
	Game    *tetris.Snapshot
	Name    string
	NoGhost bool
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	*templateData

	// the game listener and the keyboard loop both draw.
	mu sync.Mutex
}

func newRender(w io.Writer, l *slog.Logger, ng bool, name string) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &render{
		writer:   w,
		logger:   l,
		template: tmp,
		templateData: &templateData{
			Name:    name,
			NoGhost: ng,
		},
	}, nil
}

func (r *render) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.writer, clearScreen)
}

// game draws the board. A nil snapshot draws an empty default board.
func (r *render) game(s *tetris.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templateData.Game = s
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template in game()", slog.String("error", err.Error()))
	}
}

// lobby draws a message box over the board.
func (r *render) lobby(lines ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	const width = 38
	row := 10
	fmt.Fprintf(r.writer, "\033[%d;3H+%s+", row, strings.Repeat("-", width))
	for _, l := range lines {
		row++
		fmt.Fprintf(r.writer, "\033[%d;3H|%s|", row, center(l, width))
	}
	fmt.Fprintf(r.writer, "\033[%d;3H+%s+", row+1, strings.Repeat("-", width))
}

func defaultLobby() []string {
	return []string{"Welcome to Terminal Tetris", "", "(p)lay   (o)nline   (q)uit"}
}

func waitingLobby() []string {
	return []string{"connecting to server...", "", "(c)ancel"}
}

func gameOverLobby(score int) []string {
	return []string{"Game Over :)", fmt.Sprintf("score %d", score), "(p)lay   (o)nline   (q)uit"}
}

func errorLobby(msg string) []string {
	return []string{msg, "", "(p)lay   (o)nline   (q)uit"}
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"board":  board,
		"side":   side,
		"border": border,
		"title":  title,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

func cell(c tetris.Color) string {
	code, ok := colorMap[c]
	if !ok {
		return emptyCell
	}
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", code)
}

func dims(t *templateData) (int, int) {
	if t.Game == nil {
		return tetris.DefaultWidth, tetris.DefaultHeight
	}
	return t.Game.Width, t.Game.Height
}

// board renders one string per grid row: the composited stack and piece, with the
// ghost in the cells the piece leaves empty.
func board(t *templateData) []string {
	w, h := dims(t)
	rendered := make([][]string, h)
	for y := range rendered {
		rendered[y] = make([]string, w)
		for x := range rendered[y] {
			rendered[y][x] = emptyCell
		}
	}

	if s := t.Game; s != nil {
		composite := s.Composite()
		for y, row := range composite {
			for x, c := range row {
				if y < h && x < w {
					rendered[y][x] = cell(c)
				}
			}
		}
		if p := s.Tetromino; p != nil && !t.NoGhost {
			ghost := *p
			ghost.Y = s.GhostY
			for _, c := range ghost.Cells() {
				if c.Y >= 0 && c.Y < min(h, len(composite)) && c.X >= 0 && c.X < min(w, len(composite[c.Y])) &&
					composite[c.Y][c.X] == tetris.Empty {
					rendered[c.Y][c.X] = ghostCell
				}
			}
		}
	}

	out := make([]string, h)
	for y := range rendered {
		out[y] = strings.Join(rendered[y], "")
	}
	return out
}

// side returns the text shown right of the board on row i.
func side(t *templateData, i int) string {
	s := t.Game
	if s == nil {
		return ""
	}
	switch i {
	case 1:
		return fmt.Sprintf("  Score: %d", s.Score)
	case 2:
		return fmt.Sprintf("  Level: %d", s.Level)
	case 3:
		return fmt.Sprintf("  Lines: %d", s.LinesClear)
	case 5:
		return "  Next:"
	case 6, 7:
		next := nextPiece(s)
		if len(next) > i-6 {
			return "  " + next[i-6]
		}
	case 9:
		if s.Paused {
			return "  PAUSED"
		}
	}
	return ""
}

func nextPiece(s *tetris.Snapshot) []string {
	m, err := tetris.MaskOf(s.Next, 0)
	if err != nil {
		return nil
	}
	var rendered []string
	for _, r := range m {
		row := []string{emptyCell, emptyCell, emptyCell, emptyCell}
		for iv, v := range r {
			if v {
				row[iv] = cell(tetris.ColorOf(s.Next))
			}
		}
		rendered = append(rendered, strings.Join(row, ""))
	}
	return rendered
}

func border(t *templateData) string {
	w, _ := dims(t)
	return strings.Repeat("-", w*2)
}

func title(name string) string {
	if name == "" {
		return "\033[1mTerminal Tetris\033[0m"
	}
	return fmt.Sprintf("\033[1mTerminal Tetris\033[0m - %s", name)
}
