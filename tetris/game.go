package tetris

import (
	"log/slog"
	"sync"
	"time"
)

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

// NewTicker returns a stopped Ticker backed by time.Ticker. Reset starts it.
func NewTicker() Ticker {
	t := &wrappedTicker{ticker: time.NewTicker(time.Hour)}
	t.ticker.Stop()
	return t
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// Game runs a session on a ticker. Ticks and actions are applied one at a time on
// a single goroutine and a snapshot is published after each of them.
type Game struct {
	tetris   *Tetris
	ticker   Ticker
	logger   *slog.Logger
	updateCh chan *Snapshot
	actionCh chan Action

	mu     sync.Mutex
	doneCh chan struct{}
	wg     sync.WaitGroup
}

func NewGame(t *Tetris, l *slog.Logger) *Game {
	return NewConfigurableGame(t, NewTicker(), l)
}

func NewConfigurableGame(t *Tetris, ticker Ticker, l *slog.Logger) *Game {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &Game{
		tetris:   t,
		ticker:   ticker,
		logger:   l,
		updateCh: make(chan *Snapshot),
		actionCh: make(chan Action),
	}
}

// Start resets the session and starts playing. Calling it while a game is running
// does nothing.
func (g *Game) Start() {
	g.mu.Lock()
	if g.doneCh != nil {
		g.mu.Unlock()
		return
	}
	done := make(chan struct{})
	g.doneCh = done
	g.mu.Unlock()

	// the previous game's loop may still be on its way out.
	g.wg.Wait()
	g.wg.Add(1)
	go g.listen(done)
}

// Stop ends the running game.
func (g *Game) Stop() {
	g.ticker.Stop()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.doneCh != nil {
		close(g.doneCh)
		g.doneCh = nil
	}
}

// Action queues an action for the running game. It's dropped when no game runs.
func (g *Game) Action(a Action) {
	g.mu.Lock()
	done := g.doneCh
	g.mu.Unlock()
	if done == nil {
		return
	}
	select {
	case g.actionCh <- a:
	case <-done:
	}
}

// GetUpdate returns the channel snapshots are published on. The last snapshot of a
// game has GameOver set.
func (g *Game) GetUpdate() <-chan *Snapshot { return g.updateCh }

func (g *Game) listen(done chan struct{}) {
	defer g.wg.Done()
	g.tetris.Reset()
	level := g.tetris.Level()
	g.ticker.Reset(g.tetris.Interval())
	if !g.publish(done) {
		return
	}
	for {
		select {
		case <-g.ticker.C():
			g.tetris.Tick()
		case a := <-g.actionCh:
			if err := g.tetris.Do(a); err != nil {
				g.logger.Warn("unable to apply action", slog.String("error", err.Error()))
			}
		case <-done:
			return
		}

		if l := g.tetris.Level(); l != level {
			level = l
			g.ticker.Reset(g.tetris.Interval())
			g.logger.Debug("level up", slog.Int("level", level), slog.Duration("interval", g.tetris.Interval()))
		}
		if !g.publish(done) {
			return
		}
		if g.tetris.GameOver() {
			g.logger.Debug("game over",
				slog.Int("score", g.tetris.Score()),
				slog.Int("lines", g.tetris.LinesClear()),
				slog.Int("level", level))
			g.finish(done)
			return
		}
	}
}

func (g *Game) publish(done chan struct{}) bool {
	select {
	case g.updateCh <- g.tetris.Snapshot():
		return true
	case <-done:
		return false
	}
}

func (g *Game) finish(done chan struct{}) {
	g.ticker.Stop()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.doneCh == done {
		close(done)
		g.doneCh = nil
	}
}
