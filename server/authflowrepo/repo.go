package authflowrepo

import "time"

// stateTTL bounds how long an authorization flow may stay in flight.
// Anything older than this is treated as not found.
const stateTTL = 15 * time.Minute

// AuthFlowState carries the per-flow secrets parked between the redirect
// to the identity provider and the callback.
type AuthFlowState struct {
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	Get(state string) (*AuthFlowState, error)
	Delete(state string) error
}
