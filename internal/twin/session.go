package twin

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

// Session owns the rolling history of one running twin. Step is meant to be
// called by a single loop; the read methods may be used from any goroutine.
type Session struct {
	synth  *Synthesizer
	homeID string
	fault  atomic.Bool

	mu      sync.RWMutex
	history *History
}

func NewSession(synth *Synthesizer, maxLen int, homeID string) *Session {
	return &Session{
		synth:   synth,
		homeID:  homeID,
		history: NewHistory(maxLen),
	}
}

// TriggerFault requests a fault injection for the next Step only.
func (s *Session) TriggerFault() { s.fault.Store(true) }

// FaultPending reports whether the next Step will inject a fault.
func (s *Session) FaultPending() bool { return s.fault.Load() }

// Step generates one reading for now and appends it to the history.
func (s *Session) Step(now time.Time) domain.Reading {
	r := s.synth.Generate(now, s.fault.Swap(false))
	r.ID = uuid.NewString()
	r.HomeID = s.homeID

	s.mu.Lock()
	s.history.Append(r)
	s.mu.Unlock()
	return r
}

func (s *Session) History() []domain.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Snapshot()
}

func (s *Session) Latest() (domain.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Latest()
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Len()
}

func (s *Session) MaxLen() int { return s.history.Cap() }

func (s *Session) HomeID() string { return s.homeID }
