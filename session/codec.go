package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	apperrors "github.com/atinroy/leetly-web/internal/errors"
)

// sessionClaims is the wire shape of the session record inside the cookie.
type sessionClaims struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt,omitempty"`
	Error        string `json:"error,omitempty"`
	jwt.RegisteredClaims
}

// Codec turns session records into opaque cookie values and back. The
// record travels as an HS256-signed JWT sealed with XChaCha20-Poly1305;
// the signing and sealing keys are both derived from the single session
// secret via HKDF, so rotation of one secret rotates everything.
type Codec struct {
	signingKey []byte
	sealingKey []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, apperrors.ErrMissingSessionSecret
	}

	signingKey, err := deriveKey(secret, "leetly-web session signing")
	if err != nil {
		return nil, apperrors.Wrapf(err, "[NewCodec] derive signing key")
	}
	sealingKey, err := deriveKey(secret, "leetly-web session sealing")
	if err != nil {
		return nil, apperrors.Wrapf(err, "[NewCodec] derive sealing key")
	}

	return &Codec{signingKey: signingKey, sealingKey: sealingKey}, nil
}

// Encode signs and seals a session record into a cookie value.
func (c *Codec) Encode(sess Session) (string, error) {
	claims := sessionClaims{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
		Error:        string(sess.Error),
		RegisteredClaims: jwt.RegisteredClaims{
			ID: sess.ID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return "", apperrors.Wrapf(err, "[Codec Encode] sign session claims")
	}

	aead, err := chacha20poly1305.NewX(c.sealingKey)
	if err != nil {
		return "", apperrors.Wrapf(err, "[Codec Encode] create cipher")
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", apperrors.Wrapf(err, "[Codec Encode] generate nonce")
	}

	sealed := aead.Seal(nonce, nonce, []byte(signed), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode opens and verifies a cookie value. Any tampering, truncation or
// key mismatch surfaces as ErrInvalidSessionToken.
func (c *Codec) Decode(value string) (Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Session{}, apperrors.ErrInvalidSessionToken
	}

	aead, err := chacha20poly1305.NewX(c.sealingKey)
	if err != nil {
		return Session{}, apperrors.Wrapf(err, "[Codec Decode] create cipher")
	}
	if len(raw) < aead.NonceSize() {
		return Session{}, apperrors.ErrInvalidSessionToken
	}

	signed, err := aead.Open(nil, raw[:aead.NonceSize()], raw[aead.NonceSize():], nil)
	if err != nil {
		return Session{}, apperrors.ErrInvalidSessionToken
	}

	// The record manages its own expiry semantics, so standard claim
	// validation (exp/nbf) is not applied here.
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var claims sessionClaims
	if _, err := parser.ParseWithClaims(string(signed), &claims, func(*jwt.Token) (interface{}, error) {
		return c.signingKey, nil
	}); err != nil {
		return Session{}, apperrors.ErrInvalidSessionToken
	}

	return Session{
		ID:           claims.ID,
		AccessToken:  claims.AccessToken,
		RefreshToken: claims.RefreshToken,
		ExpiresAt:    claims.ExpiresAt,
		Error:        ErrorCode(claims.Error),
	}, nil
}

// deriveKey expands the session secret into a 32-byte subkey for the
// given purpose.
func deriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return key, nil
}
