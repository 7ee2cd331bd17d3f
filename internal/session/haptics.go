package session

import (
	"io"
	"strings"
	"sync"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/logger"
)

// NopHaptics discards feedback
type NopHaptics struct{}

func (NopHaptics) Vibrate(Pattern) {}

// LogHaptics records feedback as debug log entries
type LogHaptics struct {
	log *logger.StructuredLogger
}

func NewLogHaptics(log *logger.StructuredLogger) LogHaptics {
	if log == nil {
		log = logger.Nop()
	}
	return LogHaptics{log: log.WithComponent("haptics")}
}

func (h LogHaptics) Vibrate(p Pattern) {
	h.log.Debug("Haptic feedback", map[string]interface{}{"pattern": string(p)})
}

// BellHaptics rings the terminal bell: one pulse to accept, two for success, three for an error
type BellHaptics struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBellHaptics(w io.Writer) *BellHaptics {
	return &BellHaptics{w: w}
}

func (h *BellHaptics) Vibrate(p Pattern) {
	pulses := 1
	switch p {
	case PatternSuccess:
		pulses = 2
	case PatternError:
		pulses = 3
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, _ = io.WriteString(h.w, strings.Repeat("\a", pulses))
}

// MultiHaptics fans one pattern out to several collaborators
type MultiHaptics []Haptics

func (m MultiHaptics) Vibrate(p Pattern) {
	for _, h := range m {
		h.Vibrate(p)
	}
}
