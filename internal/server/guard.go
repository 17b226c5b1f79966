package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/intake"
)

var (
	errAlreadySubmitted = errors.New("this service request was already submitted")
	errInvalidToken     = errors.New("submission token is malformed")
)

type tokenState int

const (
	tokenIssued tokenState = iota
	tokenInFlight
	tokenDone
)

type tokenEntry struct {
	state tokenState
	at    time.Time
}

// submissionGuard rejects a second post of the same form. Each rendered form
// carries a fresh token; a token is held while its submission is in flight
// and retired once the insert succeeds. A failed insert releases it so the
// user can resubmit the same form.
type submissionGuard struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	tokens map[string]tokenEntry
}

func newSubmissionGuard(ttl time.Duration, now func() time.Time) *submissionGuard {
	return &submissionGuard{ttl: ttl, now: now, tokens: make(map[string]tokenEntry)}
}

// Issue returns a token for a newly rendered form.
func (g *submissionGuard) Issue() string {
	token := uuid.NewString()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked()
	g.tokens[token] = tokenEntry{state: tokenIssued, at: g.now()}
	return token
}

// Begin claims token for a submission. An empty token is not guarded;
// tokens this process never issued are accepted.
func (g *submissionGuard) Begin(token string) error {
	if token == "" {
		return nil
	}
	if _, err := uuid.Parse(token); err != nil {
		return errInvalidToken
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked()
	entry := g.tokens[token]
	switch entry.state {
	case tokenInFlight:
		return intake.ErrSubmissionInFlight
	case tokenDone:
		return errAlreadySubmitted
	}
	g.tokens[token] = tokenEntry{state: tokenInFlight, at: g.now()}
	return nil
}

// Finish retires token after a stored submission, or releases it after a
// failed one.
func (g *submissionGuard) Finish(token string, stored bool) {
	if token == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	state := tokenIssued
	if stored {
		state = tokenDone
	}
	g.tokens[token] = tokenEntry{state: state, at: g.now()}
}

func (g *submissionGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tokens)
}

func (g *submissionGuard) pruneLocked() {
	cutoff := g.now().Add(-g.ttl)
	for token, entry := range g.tokens {
		if entry.state != tokenInFlight && entry.at.Before(cutoff) {
			delete(g.tokens, token)
		}
	}
}
