package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"character-hub/internal/domain"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 24 * time.Hour

var (
	// ErrMalformed indicates the token could not be parsed at all.
	ErrMalformed = errors.New("token is malformed")
	// ErrSignatureInvalid indicates the token failed the signature check.
	ErrSignatureInvalid = errors.New("token signature is invalid")
	// ErrExpired indicates a structurally valid, correctly signed token past its expiry.
	ErrExpired = errors.New("token is expired")
)

type claims struct {
	Username    string `json:"username"`
	LoginStatus bool   `json:"loginStatus"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed identity tokens. Verification is a pure
// function of the token, the clock and the process secret, so a single Codec
// is safe for unrestricted concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec builds a codec around the given signing secret.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// NewRandomSecret generates a fresh 512-bit signing secret. Tokens signed
// with it die with the process.
func NewRandomSecret() ([]byte, error) {
	secret := make([]byte, 64)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate signing secret: %w", err)
	}
	return secret, nil
}

// Issue mints a token for the subject. Logged-in identities carry
// loginStatus=true, guest identities loginStatus=false.
func (c *Codec) Issue(subject string, isGuest bool) (string, error) {
	now := c.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims{
		Username:    subject,
		LoginStatus: !isGuest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks structure, signature and expiry, in that order of severity,
// and derives the embedded identity. A token failing any check is never
// partially trusted.
func (c *Codec) Verify(raw string) (domain.Identity, error) {
	var cl claims
	tok, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return domain.Identity{}, ErrSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.Identity{}, ErrExpired
		default:
			return domain.Identity{}, ErrMalformed
		}
	}
	if !tok.Valid {
		return domain.Identity{}, ErrSignatureInvalid
	}

	ident := domain.Identity{
		Subject: cl.Subject,
		IsGuest: !cl.LoginStatus,
	}
	if cl.IssuedAt != nil {
		ident.IssuedAt = cl.IssuedAt.Time
	}
	if cl.ExpiresAt != nil {
		ident.ExpiresAt = cl.ExpiresAt.Time
	}
	return ident, nil
}
