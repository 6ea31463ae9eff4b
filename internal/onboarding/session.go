package onboarding

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Session errors.
var (
	ErrUnknownSession = eris.New("onboarding: unknown session")
	ErrSubmitted      = eris.New("onboarding: session already submitted")
	ErrSubmitPending  = eris.New("onboarding: submit in progress")
	ErrNotLastStep    = eris.New("onboarding: not on the last step")
	// ErrSubmitRequired rejects actions that would submit the wizard
	// without going through BeginSubmit.
	ErrSubmitRequired = eris.New("onboarding: use submit on the last step")
)

type session struct {
	state   State
	touched time.Time
	pending bool
}

// Sessions holds in-progress wizards for the HTTP API, keyed by id.
type Sessions struct {
	mu    sync.Mutex
	m     map[string]*session
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

// NewSessions creates a session table. Sessions idle longer than ttl are
// dropped by Sweep; ttl <= 0 keeps them forever.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		m:     make(map[string]*session),
		ttl:   ttl,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create starts a new wizard and returns its id.
func (s *Sessions) Create() (string, State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	st := Initial()
	s.m[id] = &session{state: st, touched: s.now()}
	return id, st
}

// Get returns the current state of a session.
func (s *Sessions) Get(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	if !ok {
		return State{}, ErrUnknownSession
	}
	return sess.state, nil
}

// Apply reduces the actions over a session and stores the result. Actions
// are rejected while a submit is pending, and a batch that would submit the
// wizard is rejected whole.
func (s *Sessions) Apply(id string, actions ...Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	if !ok {
		return State{}, ErrUnknownSession
	}
	if sess.pending {
		return sess.state, ErrSubmitPending
	}
	next := ReduceAll(sess.state, actions...)
	if next.Submitted && !sess.state.Submitted {
		return sess.state, ErrSubmitRequired
	}
	sess.state = next
	sess.touched = s.now()
	return sess.state, nil
}

// BeginSubmit reserves a session on its last step for submission and returns
// the state to submit. Until CompleteSubmit or AbortSubmit the session
// rejects actions and further submits.
func (s *Sessions) BeginSubmit(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	switch {
	case !ok:
		return State{}, ErrUnknownSession
	case sess.state.Submitted:
		return sess.state, ErrSubmitted
	case sess.pending:
		return sess.state, ErrSubmitPending
	case !sess.state.IsLastStep():
		return sess.state, ErrNotLastStep
	}
	sess.pending = true
	sess.touched = s.now()
	return sess.state.clone(), nil
}

// CompleteSubmit marks a reserved session submitted.
func (s *Sessions) CompleteSubmit(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.m[id]
	if !ok {
		return State{}, ErrUnknownSession
	}
	if !sess.pending {
		return sess.state, eris.Errorf("onboarding: session %s has no submit in progress", id)
	}
	sess.pending = false
	sess.state = sess.state.clone()
	sess.state.Submitted = true
	sess.touched = s.now()
	return sess.state, nil
}

// AbortSubmit releases a reservation and leaves the session editable.
func (s *Sessions) AbortSubmit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.m[id]; ok {
		sess.pending = false
		sess.touched = s.now()
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Sweep drops idle sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.m {
		if !sess.pending && sess.touched.Before(cutoff) {
			delete(s.m, id)
			n++
		}
	}
	return n
}
