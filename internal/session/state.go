package session

import (
	"time"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/config"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/models"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/scan"
)

// User-visible messages
const (
	MessageProcessing = "Processing scan..."
	MessageNotFound   = "Product not found"
	MessageScanError  = "Scan error, try again"
)

// Phase is the position of a session in its scan cycle
type Phase int

const (
	Idle Phase = iota
	Locked
	Success
	Failure
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Locked:
		return "locked"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Pattern names a haptic feedback pattern
type Pattern string

const (
	PatternAccept  Pattern = "accept"
	PatternSuccess Pattern = "success"
	PatternError   Pattern = "error"
)

// TimerKind distinguishes the two auto-reset timers of a cycle
type TimerKind int

const (
	ResetTimer TimerKind = iota
	ClearTimer
)

func (k TimerKind) String() string {
	if k == ClearTimer {
		return "clear"
	}
	return "reset"
}

// Timing holds the display windows of a cycle
type Timing struct {
	SuccessDisplay time.Duration
	ClearDelay     time.Duration
	FailureDisplay time.Duration
}

// DefaultTiming returns the stock feedback windows
func DefaultTiming() Timing {
	return Timing{
		SuccessDisplay: 1500 * time.Millisecond,
		ClearDelay:     500 * time.Millisecond,
		FailureDisplay: 2 * time.Second,
	}
}

// TimingFromConfig maps scanner configuration onto session timing
func TimingFromConfig(cfg config.ScannerConfig) Timing {
	return Timing{
		SuccessDisplay: cfg.SuccessDisplay,
		ClearDelay:     cfg.ClearDelay,
		FailureDisplay: cfg.FailureDisplay,
	}
}

// State is the value owned by a scanning surface. The zero value is an
// inactive Idle session.
type State struct {
	Phase      Phase           `json:"phase"`
	Generation uint64          `json:"generation"`
	Active     bool            `json:"active"`
	Attempt    *scan.Attempt   `json:"attempt,omitempty"`
	Product    *models.Product `json:"product,omitempty"`
	Message    string          `json:"message,omitempty"`
}

func (s State) cleared() State {
	s.Attempt = nil
	s.Product = nil
	s.Message = ""
	return s
}

// Event is an input to Transition
type Event interface {
	event()
}

type ScanReceived struct {
	RawText   string
	Symbology string
}

type ResolutionReady struct {
	Generation uint64
	Attempt    scan.Attempt
}

type TimerFired struct {
	Generation uint64
	Timer      TimerKind
}

type FocusGained struct{}

type FocusLost struct{}

func (ScanReceived) event()    {}
func (ResolutionReady) event() {}
func (TimerFired) event()      {}
func (FocusGained) event()     {}
func (FocusLost) event()       {}

// Effect is a side effect requested by Transition, executed by the runner
type Effect interface {
	effect()
}

type Vibrate struct {
	Pattern Pattern
}

type Resolve struct {
	Generation uint64
	RawText    string
	Symbology  string
}

type StartTimer struct {
	Timer      TimerKind
	After      time.Duration
	Generation uint64
}

// CancelPending stops every timer and in-flight resolution
type CancelPending struct{}

func (Vibrate) effect()       {}
func (Resolve) effect()       {}
func (StartTimer) effect()    {}
func (CancelPending) effect() {}

// Transition is the whole session state machine. It is pure: the returned
// effects are the only way it touches the outside world.
//
// Only the first scan seen in an active Idle session starts a cycle; scans in
// any other phase are dropped. Results and timers tagged with a generation
// other than the current one are stale and ignored.
func Transition(s State, ev Event, t Timing) (State, []Effect) {
	switch e := ev.(type) {
	case ScanReceived:
		if s.Phase != Idle || !s.Active {
			return s, nil
		}
		next := s.cleared()
		next.Phase = Locked
		next.Generation++
		next.Message = MessageProcessing
		return next, []Effect{
			Vibrate{Pattern: PatternAccept},
			Resolve{Generation: next.Generation, RawText: e.RawText, Symbology: e.Symbology},
		}

	case ResolutionReady:
		if s.Phase != Locked || e.Generation != s.Generation {
			return s, nil
		}
		attempt := e.Attempt
		next := s
		next.Attempt = &attempt

		if attempt.Resolution.Outcome == scan.Found && attempt.Resolution.Product != nil {
			next.Phase = Success
			next.Product = attempt.Resolution.Product
			next.Message = "Found " + attempt.Resolution.Product.DisplayName()
			return next, []Effect{
				Vibrate{Pattern: PatternSuccess},
				StartTimer{Timer: ResetTimer, After: t.SuccessDisplay, Generation: s.Generation},
				StartTimer{Timer: ClearTimer, After: t.SuccessDisplay + t.ClearDelay, Generation: s.Generation},
			}
		}

		next.Phase = Failure
		next.Product = nil
		if attempt.Resolution.Outcome == scan.NotFound {
			next.Message = MessageNotFound
		} else {
			next.Message = MessageScanError
		}
		return next, []Effect{
			Vibrate{Pattern: PatternError},
			StartTimer{Timer: ResetTimer, After: t.FailureDisplay, Generation: s.Generation},
		}

	case TimerFired:
		if e.Generation != s.Generation {
			return s, nil
		}
		switch e.Timer {
		case ResetTimer:
			switch s.Phase {
			case Success:
				// product stays visible until the clear timer
				next := s
				next.Phase = Idle
				next.Message = ""
				return next, nil
			case Failure:
				next := s.cleared()
				next.Phase = Idle
				return next, nil
			}
		case ClearTimer:
			if s.Phase == Idle {
				return s.cleared(), nil
			}
		}
		return s, nil

	case FocusLost:
		next := s.cleared()
		next.Phase = Idle
		next.Active = false
		next.Generation++
		return next, []Effect{CancelPending{}}

	case FocusGained:
		next := s.cleared()
		next.Phase = Idle
		next.Active = true
		next.Generation++
		return next, []Effect{CancelPending{}}
	}

	return s, nil
}
