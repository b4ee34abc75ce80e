// Package payments abstracts the checkout provider used for donations. The
// backend only needs session creation and completion lookups, so the
// integration surface is kept to that.
package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Session is a checkout session held by the provider.
type Session struct {
	ID          string
	AmountCents int64
	Currency    string
	URL         string
}

// Provider creates checkout sessions and reports their outcome.
type Provider interface {
	CreateSession(ctx context.Context, amountCents int64, currency string) (*Session, error)
	SessionCompleted(ctx context.Context, sessionID string) (bool, error)
}

// FakeProvider is an in-process provider for development and tests. Sessions
// complete when MarkCompleted is called, standing in for the real provider's
// webhook.
type FakeProvider struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	completed map[string]bool
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		sessions:  make(map[string]*Session),
		completed: make(map[string]bool),
	}
}

func (f *FakeProvider) CreateSession(_ context.Context, amountCents int64, currency string) (*Session, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amountCents)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	s := &Session{
		ID:          uuid.NewString(),
		AmountCents: amountCents,
		Currency:    currency,
	}
	s.URL = "https://checkout.invalid/session/" + s.ID
	f.sessions[s.ID] = s

	return s, nil
}

func (f *FakeProvider) SessionCompleted(_ context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.sessions[sessionID]; !ok {
		return false, fmt.Errorf("unknown session %q", sessionID)
	}

	return f.completed[sessionID], nil
}

// MarkCompleted flips a session to completed.
func (f *FakeProvider) MarkCompleted(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[sessionID] = true
}
