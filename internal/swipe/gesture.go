// Package swipe classifies drag gestures on a card into like/reject decisions.
package swipe

import (
	"math"
	"time"

	"tenderec/internal/common/config"
	"tenderec/internal/models"
)

// Config holds the decision thresholds, in display units.
type Config struct {
	CommitThreshold float64
	RevealThreshold float64
	ExitDistance    float64
	ExitDelay       time.Duration
}

func DefaultConfig() Config {
	return Config{
		CommitThreshold: 100,
		RevealThreshold: 30,
		ExitDistance:    600,
		ExitDelay:       300 * time.Millisecond,
	}
}

func ConfigFromSettings(cfg config.SwipeConfig) Config {
	return Config{
		CommitThreshold: cfg.CommitThreshold,
		RevealThreshold: cfg.RevealThreshold,
		ExitDistance:    cfg.ExitDistance,
		ExitDelay:       config.GetDuration(cfg.ExitDelay),
	}
}

type Phase int

const (
	Idle Phase = iota
	Dragging
	Exiting
	Committed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Exiting:
		return "exiting"
	case Committed:
		return "committed"
	default:
		return "unknown"
	}
}

type Point struct {
	X, Y float64
}

// State is the gesture state of one card.
type State struct {
	Phase     Phase
	Offset    Point
	Start     Point
	PointerID int
	Direction models.SwipeDirection
}

type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	PointerCancel
	// ExitElapsed fires once the exit delay scheduled by a release has passed.
	ExitElapsed
)

// Event is a pointer event in display coordinates. Top is set when the card
// receiving the event is the top card of the deck.
type Event struct {
	Kind      EventKind
	PointerID int
	X, Y      float64
	Top       bool
}

type EffectKind int

const (
	// ScheduleExit asks the driver to deliver ExitElapsed after Delay.
	ScheduleExit EffectKind = iota
	// Commit asks the driver to record the decision and remove the card.
	Commit
)

type Effect struct {
	Kind      EffectKind
	Direction models.SwipeDirection
	Delay     time.Duration
}

// Reduce is the gesture state machine. It is pure: timers and store writes are
// returned as effects for the caller to perform.
func Reduce(cfg Config, s State, e Event) (State, []Effect) {
	switch e.Kind {
	case PointerDown:
		if s.Phase != Idle || !e.Top {
			return s, nil
		}
		return State{
			Phase:     Dragging,
			Start:     Point{X: e.X, Y: e.Y},
			PointerID: e.PointerID,
		}, nil

	case PointerMove:
		if s.Phase != Dragging || e.PointerID != s.PointerID {
			return s, nil
		}
		s.Offset = Point{X: e.X - s.Start.X, Y: e.Y - s.Start.Y}
		return s, nil

	case PointerUp, PointerCancel:
		if s.Phase != Dragging || e.PointerID != s.PointerID {
			return s, nil
		}
		if math.Abs(s.Offset.X) <= cfg.CommitThreshold {
			return State{Phase: Idle}, nil
		}
		direction := models.SwipeLeft
		exitX := -cfg.ExitDistance
		if s.Offset.X > 0 {
			direction = models.SwipeRight
			exitX = cfg.ExitDistance
		}
		return State{
			Phase:     Exiting,
			Offset:    Point{X: exitX},
			Direction: direction,
		}, []Effect{{
			Kind:      ScheduleExit,
			Direction: direction,
			Delay:     cfg.ExitDelay,
		}}

	case ExitElapsed:
		if s.Phase != Exiting {
			return s, nil
		}
		s.Phase = Committed
		return s, []Effect{{Kind: Commit, Direction: s.Direction}}
	}
	return s, nil
}

// Rotation in degrees for the current offset.
func (s State) Rotation() float64 {
	return s.Offset.X * 0.1
}

// Opacity fades with horizontal distance down to one half, and is zero while exiting.
func (s State) Opacity() float64 {
	if s.Phase == Exiting || s.Phase == Committed {
		return 0
	}
	return 1 - math.Min(math.Abs(s.Offset.X)/400, 0.5)
}

// Overlay returns the direction hint to show once the card has moved past
// the reveal threshold.
func (s State) Overlay(cfg Config) (models.SwipeDirection, bool) {
	if math.Abs(s.Offset.X) <= cfg.RevealThreshold {
		return "", false
	}
	if s.Offset.X > 0 {
		return models.SwipeRight, true
	}
	return models.SwipeLeft, true
}
