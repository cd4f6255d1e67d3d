package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/atinroy/leetly-web/idp"
	"github.com/atinroy/leetly-web/internal/config"
	apperrors "github.com/atinroy/leetly-web/internal/errors"
)

// Refresher executes exactly one refresh_token grant against the identity
// provider. Implemented by idp.Client.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*idp.TokenSet, error)
}

// Manager owns the session lifecycle: it decides on every access whether
// the cached access token is still usable, refreshes it when it is not,
// and stamps the record with a terminal error when refresh is impossible.
type Manager struct {
	cfg       config.AuthConfig
	refresher Refresher
	codec     *Codec
	nowTime   func() time.Time

	// refreshGroup serializes concurrent in-process refreshes for the same
	// session ID. Concurrent requests from other processes remain an
	// accepted race of the stateless-cookie model.
	refreshGroup singleflight.Group
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func NewManager(cfg config.AuthConfig, refresher Refresher, options ...ManagerOption) (*Manager, error) {
	if refresher == nil {
		return nil, apperrors.Wrapf(apperrors.ErrNoRefreshToken, "[NewManager] refresher is required")
	}

	codec, err := NewCodec(cfg.GetSessionSecret())
	if err != nil {
		return nil, apperrors.Wrapf(err, "[NewManager] failed to create session codec")
	}

	m := &Manager{
		cfg:       cfg,
		refresher: refresher,
		codec:     codec,
		nowTime:   time.Now,
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Issue mints a fresh session record from the provider's token response at
// initial sign-in and returns it with its encoded cookie value. This is
// the only way in or out of the error state.
func (m *Manager) Issue(accessToken, refreshToken string, expiresAt int64) (Session, string, error) {
	sess := Session{
		ID:           uuid.New().String(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}

	encoded, err := m.codec.Encode(sess)
	if err != nil {
		return Session{}, "", apperrors.Wrapf(err, "[Manager Issue] encode session")
	}
	return sess, encoded, nil
}

// Resolve decodes a cookie value and advances the session state machine
// for this access. When the record was rewritten (refreshed or stamped
// with an error) the second return value carries the new cookie value to
// hand back to the browser; it is empty when nothing changed.
func (m *Manager) Resolve(ctx context.Context, cookieValue string) (Session, string, error) {
	if cookieValue == "" {
		return Session{}, "", apperrors.ErrNoSession
	}

	sess, err := m.codec.Decode(cookieValue)
	if err != nil {
		return Session{}, "", err
	}

	next := m.advance(ctx, sess)
	if next == sess {
		return sess, "", nil
	}

	encoded, err := m.codec.Encode(next)
	if err != nil {
		return next, "", apperrors.Wrapf(err, "[Manager Resolve] re-encode session")
	}
	return next, encoded, nil
}

// Peek decodes a cookie value without advancing the state machine. Used at
// sign-out, where the refresh token is needed but a refresh would be
// pointless.
func (m *Manager) Peek(cookieValue string) (Session, error) {
	return m.codec.Decode(cookieValue)
}

// advance applies one state transition for this access:
//
//	valid            -> valid                  (no-op)
//	near expiry      -> valid                  (refresh succeeded)
//	near expiry      -> errored                (refresh failed or impossible)
//	errored          -> errored                (sticky, never retried)
func (m *Manager) advance(ctx context.Context, sess Session) Session {
	if sess.Error != "" {
		return sess
	}

	if sess.withinValidityWindow(m.nowTime(), m.cfg.GetRefreshSkew()) {
		return sess
	}

	if sess.RefreshToken == "" {
		// Nothing to refresh with: terminal, without a network call.
		sess.Error = RefreshTokenError
		return sess
	}

	key := sess.ID
	if key == "" {
		// A record without an ID must not share a refresh slot with other
		// ID-less records.
		key = uuid.New().String()
	}
	result, err, _ := m.refreshGroup.Do(key, func() (interface{}, error) {
		return m.refresher.Refresh(ctx, sess.RefreshToken)
	})
	if err != nil {
		log.Err(err).Str("session_id", sess.ID).Msg("Token refresh failed")
		sess.Error = RefreshTokenError
		return sess
	}

	tokens := result.(*idp.TokenSet)
	sess.AccessToken = tokens.AccessToken
	sess.ExpiresAt = tokens.ExpiresAt
	if tokens.RefreshToken != "" {
		// Provider rotated the refresh token; otherwise keep reusing the
		// previous one.
		sess.RefreshToken = tokens.RefreshToken
	}
	return sess
}
