package session

import (
	"context"
	"sync"
	"time"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/logger"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/scan"
)

// Pipeline resolves one raw scan into an attempt
type Pipeline interface {
	Process(ctx context.Context, rawText, symbology string) scan.Attempt
}

// Haptics receives fire-and-forget feedback patterns
type Haptics interface {
	Vibrate(p Pattern)
}

// Timer is a pending scheduled callback
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Observer is notified with every new state. It may be called from the
// resolution or timer goroutines.
type Observer func(State)

// Options configures a Session. Zero fields get defaults.
type Options struct {
	Timing    Timing
	Haptics   Haptics
	Scheduler Scheduler
	Observer  Observer
	Logger    *logger.StructuredLogger
}

// Session owns one scanning surface's state and executes the effects
// Transition asks for.
type Session struct {
	mu        sync.Mutex
	state     State
	timing    Timing
	pipeline  Pipeline
	haptics   Haptics
	scheduler Scheduler
	observer  Observer
	log       *logger.StructuredLogger

	ctx           context.Context
	cancel        context.CancelFunc
	resolveCancel context.CancelFunc
	timers        []Timer
	closed        bool
	wg            sync.WaitGroup
}

// New creates an inactive session. Call Focus before scanning.
func New(pipeline Pipeline, opts Options) *Session {
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming()
	}
	if opts.Haptics == nil {
		opts.Haptics = NopHaptics{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = clockScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		timing:    opts.Timing,
		pipeline:  pipeline,
		haptics:   opts.Haptics,
		scheduler: opts.Scheduler,
		observer:  opts.Observer,
		log:       opts.Logger.WithComponent("session"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Scan feeds one optical decode into the session. It reports whether the
// scan started a new cycle; scans arriving outside an active Idle are dropped.
func (s *Session) Scan(rawText, symbology string) bool {
	return s.dispatch(ScanReceived{RawText: rawText, Symbology: symbology})
}

// Focus activates the surface with a clean Idle state
func (s *Session) Focus() {
	s.dispatch(FocusGained{})
}

// Blur deactivates the surface, cancelling timers and in-flight resolution
func (s *Session) Blur() {
	s.dispatch(FocusLost{})
}

// State returns a snapshot of the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until in-flight resolutions have delivered their results.
// It must not race with Scan.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close tears the session down and waits for in-flight resolution to return
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelPending()
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Session) dispatch(ev Event) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}

	prev := s.state
	next, effects := Transition(prev, ev, s.timing)
	s.state = next

	var (
		patterns []Pattern
		launch   []func()
		started  bool
	)
	for _, eff := range effects {
		switch e := eff.(type) {
		case Vibrate:
			patterns = append(patterns, e.Pattern)
		case Resolve:
			launch = append(launch, s.prepareResolve(e))
			started = true
		case StartTimer:
			s.startTimer(e)
		case CancelPending:
			s.cancelPending()
		}
	}
	observer := s.observer
	s.mu.Unlock()

	if sr, ok := ev.(ScanReceived); ok && !started {
		s.log.Debug("Scan dropped", map[string]interface{}{
			"phase":  prev.Phase.String(),
			"active": prev.Active,
			"raw":    sr.RawText,
		})
	}

	// feedback and observers run before the resolution they announce can finish
	for _, p := range patterns {
		s.haptics.Vibrate(p)
	}
	if observer != nil && next != prev {
		observer(next)
	}
	for _, run := range launch {
		run()
	}
	return started
}

// prepareResolve registers the cancel func under the lock and returns the
// goroutine launcher to run once the lock is released.
func (s *Session) prepareResolve(e Resolve) func() {
	s.stopTimers()
	if s.resolveCancel != nil {
		s.resolveCancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.resolveCancel = cancel
	s.wg.Add(1)

	return func() {
		go func() {
			defer s.wg.Done()
			defer cancel()

			attempt := s.pipeline.Process(ctx, e.RawText, e.Symbology)
			if ctx.Err() != nil {
				s.log.Debug("Discarding cancelled resolution", map[string]interface{}{
					"generation": e.Generation,
				})
				return
			}
			s.dispatch(ResolutionReady{Generation: e.Generation, Attempt: attempt})
		}()
	}
}

func (s *Session) startTimer(e StartTimer) {
	t := s.scheduler.AfterFunc(e.After, func() {
		s.dispatch(TimerFired{Generation: e.Generation, Timer: e.Timer})
	})
	s.timers = append(s.timers, t)
}

func (s *Session) stopTimers() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

func (s *Session) cancelPending() {
	s.stopTimers()
	if s.resolveCancel != nil {
		s.resolveCancel()
		s.resolveCancel = nil
	}
}
