package session

import "time"

// ErrorCode marks a session record with a terminal failure state.
type ErrorCode string

// RefreshTokenError is stamped on the record when a refresh attempt failed
// or no refresh token was available. It is sticky: subsequent accesses do
// not retry, and only a fresh sign-in produces a clean record again.
const RefreshTokenError ErrorCode = "RefreshTokenError"

// Session is the decrypted and verified content of the session cookie for
// a single request. There is no server-side session store: the record is
// reconstituted from the cookie on every request.
type Session struct {
	// ID is a stable identifier minted at sign-in. It keys the in-process
	// refresh serialization and appears in logs instead of token material.
	ID string

	// AccessToken is the opaque bearer credential for the backend API.
	AccessToken string

	// RefreshToken is exchangeable for a new access token. The provider
	// may rotate it on each refresh; it may be absent entirely.
	RefreshToken string

	// ExpiresAt is the access token expiry in epoch seconds. Always set
	// when AccessToken is present.
	ExpiresAt int64

	// Error, once set, means the record must be treated as unauthenticated
	// regardless of the other fields.
	Error ErrorCode
}

// Authenticated reports whether the access token may be presented to the
// backend API. A record in the error state never vouches for its token.
func (s Session) Authenticated() bool {
	return s.Error == "" && s.AccessToken != ""
}

// withinValidityWindow reports whether the access token is still usable at
// the given time, leaving the configured skew before the real expiry.
func (s Session) withinValidityWindow(now time.Time, skew time.Duration) bool {
	return now.Unix() < s.ExpiresAt-int64(skew.Seconds())
}
