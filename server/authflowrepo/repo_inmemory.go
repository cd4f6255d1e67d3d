package authflowrepo

import (
	"sync"
	"time"

	apperrors "github.com/atinroy/leetly-web/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface. Expired states are purged opportunistically on writes.
type InMemoryRepo struct {
	mu      sync.RWMutex
	states  map[string]*AuthFlowState
	nowTime func() time.Time
}

// NewInMemoryRepo creates a new in-memory auth flow state repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states:  make(map[string]*AuthFlowState),
		nowTime: time.Now,
	}
}

// Upsert stores or updates an auth flow state
func (r *InMemoryRepo) Upsert(state string, authState *AuthFlowState) error {
	if state == "" {
		return apperrors.Wrapf(apperrors.ErrStateNotFound, "state cannot be empty")
	}
	if authState == nil {
		return apperrors.Wrapf(apperrors.ErrStateNotFound, "authState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.purgeExpiredLocked()

	// Store a copy to prevent external modifications
	r.states[state] = &AuthFlowState{
		CodeVerifier: authState.CodeVerifier,
		Nonce:        authState.Nonce,
		ReturnURL:    authState.ReturnURL,
		CreatedAt:    authState.CreatedAt,
	}

	return nil
}

// Get retrieves an auth flow state by state parameter. An expired state is
// reported as not found.
func (r *InMemoryRepo) Get(state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, apperrors.ErrStateNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	authState, exists := r.states[state]
	if !exists {
		return nil, apperrors.ErrStateNotFound
	}
	if r.nowTime().Sub(authState.CreatedAt) > stateTTL {
		return nil, apperrors.ErrStateNotFound
	}

	// Return a copy to prevent external modifications
	return &AuthFlowState{
		CodeVerifier: authState.CodeVerifier,
		Nonce:        authState.Nonce,
		ReturnURL:    authState.ReturnURL,
		CreatedAt:    authState.CreatedAt,
	}, nil
}

// Delete removes an auth flow state
func (r *InMemoryRepo) Delete(state string) error {
	if state == "" {
		return apperrors.ErrStateNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, state)
	return nil
}

func (r *InMemoryRepo) purgeExpiredLocked() {
	now := r.nowTime()
	for state, authState := range r.states {
		if now.Sub(authState.CreatedAt) > stateTTL {
			delete(r.states, state)
		}
	}
}
