// Package auth verifies the bearer tokens issued by the external identity
// service and carries the resulting principal through request contexts.
// The trip planner never handles credentials itself.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails parsing, signature,
// expiry, or claim checks. The cause is deliberately not exposed.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload: {"id": "<uuid>", "email": "...", "exp": ...}.
type Claims struct {
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller.
type Principal struct {
	ID    uuid.UUID
	Email string
}

// Verifier validates HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates token, returning the principal it names.
func (v *Verifier) Verify(token string) (Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}
	if claims.UserID == uuid.Nil {
		return Principal{}, ErrInvalidToken
	}
	return Principal{ID: claims.UserID, Email: claims.Email}, nil
}

// Issuer mints tokens in the identity service's format. It backs the
// token dev command and tests; production tokens come from elsewhere.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer whose tokens expire after ttl.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for p.
func (i *Issuer) Issue(p Principal) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: p.ID,
		Email:  p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
