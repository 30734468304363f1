// internal/swipe/card.go
package swipe

import (
	"sync"
	"time"

	"tenderec/internal/models"
)

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (cancel func())

func timerScheduler(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Card drives Reduce for one card: it performs the exit delay and calls
// onCommit exactly once when the decision is final.
type Card struct {
	mu       sync.Mutex
	cfg      Config
	state    State
	top      bool
	onCommit func(models.SwipeDirection)
	schedule Scheduler
	cancel   func()
	done     chan struct{}
}

func NewCard(cfg Config, top bool, onCommit func(models.SwipeDirection)) *Card {
	return &Card{
		cfg:      cfg,
		top:      top,
		onCommit: onCommit,
		schedule: timerScheduler,
		done:     make(chan struct{}),
	}
}

// WithScheduler replaces the timer used for the exit delay.
func (c *Card) WithScheduler(s Scheduler) *Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule = s
	return c
}

// SetTop marks whether this card is the interactive one.
func (c *Card) SetTop(top bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.top = top
}

func (c *Card) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the card has committed.
func (c *Card) Done() <-chan struct{} {
	return c.done
}

// Handle feeds one event through the reducer and performs its effects.
func (c *Card) Handle(e Event) State {
	c.mu.Lock()
	e.Top = c.top
	next, effects := Reduce(c.cfg, c.state, e)
	c.state = next

	var commit *models.SwipeDirection
	for _, eff := range effects {
		switch eff.Kind {
		case ScheduleExit:
			c.cancel = c.schedule(eff.Delay, func() {
				c.Handle(Event{Kind: ExitElapsed})
			})
		case Commit:
			d := eff.Direction
			commit = &d
			c.cancel = nil
		}
	}
	c.mu.Unlock()

	if commit != nil {
		if c.onCommit != nil {
			c.onCommit(*commit)
		}
		close(c.done)
	}
	return next
}

// Drag is a convenience for a full press, move and release by dx, dy.
func (c *Card) Drag(pointerID int, dx, dy float64) State {
	c.Handle(Event{Kind: PointerDown, PointerID: pointerID})
	c.Handle(Event{Kind: PointerMove, PointerID: pointerID, X: dx, Y: dy})
	return c.Handle(Event{Kind: PointerUp, PointerID: pointerID, X: dx, Y: dy})
}

// Stop cancels a pending exit. The card stays in the exiting phase and never commits.
func (c *Card) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
