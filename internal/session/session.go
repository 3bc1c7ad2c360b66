// Package session holds chat sessions in process memory. A Session is the
// explicit handle every chat handler receives; it owns an append-only log of
// turns and a two-state machine (Idle → AwaitingReply → Idle) that keeps each
// session single-threaded. Sessions are not persisted and vanish on restart.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/tbourn/caked-with-love/internal/domain"
)

// State is the session's position in the request/reply cycle.
type State int

const (
	Idle State = iota
	AwaitingReply
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReply:
		return "awaiting_reply"
	}
	return "unknown"
}

var (
	// ErrBusy is returned by Begin while a reply is still pending.
	ErrBusy = errors.New("session is awaiting a reply")
	// ErrNotAwaiting is returned by Complete when no request is pending.
	ErrNotAwaiting = errors.New("session is not awaiting a reply")
	// ErrBadSpeaker is returned when a turn has the wrong speaker for the transition.
	ErrBadSpeaker = errors.New("unexpected speaker for transition")
)

// Session is one user's conversation.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	state State
	turns []domain.ChatTurn

	// lastSeen is guarded by the owning Store's mutex.
	lastSeen time.Time
}

// New returns an empty, idle session.
func New(id string, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, lastSeen: now}
}

// Begin moves Idle → AwaitingReply, appends the user turn and returns a
// snapshot of all turns (oldest first) including it.
func (s *Session) Begin(turn domain.ChatTurn) ([]domain.ChatTurn, error) {
	if turn.Speaker != domain.SpeakerUser {
		return nil, ErrBadSpeaker
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == AwaitingReply {
		return nil, ErrBusy
	}
	s.turns = append(s.turns, turn)
	s.state = AwaitingReply
	return s.snapshot(), nil
}

// Complete appends the assistant turn and moves AwaitingReply → Idle.
func (s *Session) Complete(turn domain.ChatTurn) error {
	if turn.Speaker != domain.SpeakerAssistant {
		return ErrBadSpeaker
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AwaitingReply {
		return ErrNotAwaiting
	}
	s.turns = append(s.turns, turn)
	s.state = Idle
	return nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Turns returns a copy of the conversation, oldest first.
func (s *Session) Turns() []domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len returns the number of turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

func (s *Session) snapshot() []domain.ChatTurn {
	out := make([]domain.ChatTurn, len(s.turns))
	copy(out, s.turns)
	return out
}
