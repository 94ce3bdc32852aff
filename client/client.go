package client

import (
	"blockfall/tetris"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
)

type clientState int

const (
	lobby clientState = iota
	waiting
	playing
)

const connectTimeout = 5 * time.Second

type tetrisGame interface {
	Start()
	GetUpdate() <-chan *tetris.Snapshot
	Action(tetris.Action)
	Stop()
}

type renderer interface {
	game(*tetris.Snapshot)
	lobby(...string)
	reset()
}

// state is shared between the keyboard loop and the game listeners.
type state struct {
	current clientState
	game    tetrisGame
	cancel  context.CancelFunc
	mu      sync.Mutex
}

func (s *state) get() (clientState, tetrisGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.game
}

func (s *state) set(c clientState, g tetrisGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
	s.game = g
}

type Client struct {
	render  renderer
	options *Options
	logger  *slog.Logger
	kbCh    <-chan keyboard.KeyEvent
	state   *state

	newLocal  func() (tetrisGame, error)
	newRemote func(context.Context) (tetrisGame, error)
}

type Options struct {
	Writer  io.Writer
	NoGhost bool
	Address string
	Name    string
	Width   int
	Height  int
	Bag     bool
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	w := o.Writer
	if w == nil {
		w = os.Stdout
	}
	r, err := newRender(w, l, o.NoGhost, o.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	c := &Client{
		render:  r,
		options: o,
		logger:  l,
		kbCh:    kb,
		state:   &state{current: lobby},
	}
	c.newLocal = c.localGame
	c.newRemote = c.remoteGame
	return c, nil
}

// Start shows the lobby and blocks until the player quits.
func (c *Client) Start() {
	c.render.reset()
	c.render.game(nil)
	c.render.lobby(defaultLobby()...)
	c.listenKB()
}

// Close releases the keyboard.
func (c *Client) Close() error {
	return keyboard.Close()
}

func (c *Client) localGame() (tetrisGame, error) {
	opts := &tetris.Options{Width: c.options.Width, Height: c.options.Height}
	if c.options.Bag {
		opts.Randomizer = tetris.NewBag(nil)
	}
	t, err := tetris.New(opts)
	if err != nil {
		return nil, err
	}
	return tetris.NewGame(t, c.logger), nil
}

func (c *Client) remoteGame(ctx context.Context) (tetrisGame, error) {
	return dialRemote(ctx, c.options, c.logger)
}

func (c *Client) listenKB() {
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			c.quit()
			return
		}

		current, game := c.state.get()
		switch current {
		case lobby:
			switch event.Rune {
			case 'p':
				g, err := c.newLocal()
				if err != nil {
					c.logger.Error("unable to create game", slog.String("error", err.Error()))
					c.render.lobby(errorLobby("unable to create game")...)
					continue
				}
				c.play(g)
			case 'o':
				ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
				c.state.mu.Lock()
				c.state.current = waiting
				c.state.cancel = cancel
				c.state.mu.Unlock()
				c.render.lobby(waitingLobby()...)
				go c.connect(ctx, cancel)
			case 'q':
				return
			}
		case waiting:
			if event.Rune == 'c' {
				c.state.mu.Lock()
				if c.state.cancel != nil {
					c.state.cancel()
				}
				c.state.mu.Unlock()
			}
		case playing:
			if a, ok := keyToAction(event); ok {
				game.Action(a)
			}
		}
	}
}

func keyToAction(event keyboard.KeyEvent) (tetris.Action, bool) {
	switch {
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		return tetris.MoveDown, true
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		return tetris.MoveLeft, true
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		return tetris.MoveRight, true
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'e':
		return tetris.RotateRight, true
	case event.Rune == 'q':
		return tetris.RotateLeft, true
	case event.Key == keyboard.KeySpace:
		return tetris.DropDown, true
	case event.Key == keyboard.KeyEsc || event.Rune == 'p':
		return tetris.TogglePause, true
	}
	return "", false
}

func (c *Client) connect(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	g, err := c.newRemote(ctx)
	if err != nil {
		c.logger.Error("unable to join online game", slog.String("error", err.Error()))
		c.state.set(lobby, nil)
		c.render.lobby(errorLobby("something went wrong :(")...)
		return
	}
	c.play(g)
}

func (c *Client) play(g tetrisGame) {
	c.state.set(playing, g)
	c.render.reset()
	g.Start()
	go c.listenTetris(g)
}

func (c *Client) listenTetris(g tetrisGame) {
	defer g.Stop()
	for {
		u, ok := <-g.GetUpdate()
		if !ok {
			c.logger.Debug("game update channel closed")
			c.state.set(lobby, nil)
			c.render.lobby(errorLobby("connection lost :(")...)
			return
		}
		c.render.game(u)
		if u.GameOver {
			c.state.set(lobby, nil)
			c.render.lobby(gameOverLobby(u.Score)...)
			return
		}
	}
}

func (c *Client) quit() {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	if c.state.cancel != nil {
		c.state.cancel()
	}
	if c.state.game != nil {
		c.state.game.Stop()
	}
}
