package main

import (
	"blockfall/client"
	"blockfall/tetris"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli"
	"golang.org/x/term"
)

func main() {
	app := cli.NewApp()
	app.Name = "tetris"
	app.Usage = "play tetris in the terminal, locally or against a server"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "addr", Value: "localhost:9000", Usage: "server address for online games", EnvVar: "TETRIS_ADDR"},
		cli.StringFlag{Name: "name", Usage: "player name", EnvVar: "TETRIS_NAME"},
		cli.IntFlag{Name: "width", Value: tetris.DefaultWidth, Usage: "grid width", EnvVar: "TETRIS_WIDTH"},
		cli.IntFlag{Name: "height", Value: tetris.DefaultHeight, Usage: "grid height", EnvVar: "TETRIS_HEIGHT"},
		cli.BoolFlag{Name: "no-ghost", Usage: "hide the ghost piece", EnvVar: "TETRIS_NO_GHOST"},
		cli.BoolFlag{Name: "bag", Usage: "deal pieces from a 7-bag instead of uniformly", EnvVar: "TETRIS_BAG"},
		cli.StringFlag{Name: "log", Usage: "write debug logs to this file", EnvVar: "TETRIS_LOG"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	width, height := c.Int("width"), c.Int("height")
	if err := checkTerminal(width, height); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(c.String("log"))
	if err != nil {
		return err
	}
	defer closeLog()

	cl, err := client.New(logger, &client.Options{
		NoGhost: c.Bool("no-ghost"),
		Address: c.String("addr"),
		Name:    c.String("name"),
		Width:   width,
		Height:  height,
		Bag:     c.Bool("bag"),
	})
	if err != nil {
		return fmt.Errorf("unable to start client: %w", err)
	}
	defer func() {
		if err := cl.Close(); err != nil {
			logger.Error("unable to close keyboard", slog.String("error", err.Error()))
		}
		fmt.Print("\033[2J\033[H")
	}()

	cl.Start()
	return nil
}

// checkTerminal makes sure stdout is a terminal big enough for the board, the
// side panel and the help line.
func checkTerminal(width, height int) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdout is not a terminal")
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("unable to read terminal size: %w", err)
	}
	if wantCols, wantRows := 2*width+20, height+5; cols < wantCols || rows < wantRows {
		return fmt.Errorf("terminal is %dx%d, needs at least %dx%d", cols, rows, wantCols, wantRows)
	}
	return nil
}

// newLogger logs JSON to path, or nowhere if path is empty. The screen belongs to
// the game so nothing is logged to stdout.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open log file: %w", err)
	}
	l := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	closeLog := func() {
		if err := f.Close(); err != nil {
			log.Printf("unable to close log file: %v", err)
		}
	}
	return l, closeLog, nil
}
