// Package session exchanges the shared access code for signed bearer tokens
// and verifies them. It keeps no server-side session state.
package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role the service knows.
const RoleAdmin = "admin"

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 24 * time.Hour

// Claims is the payload of a bearer token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	Role      string
	ExpiresAt time.Time
}

// Authority issues and validates bearer tokens.
type Authority struct {
	code   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New creates an Authority for the given access code and signing secret.
func New(accessCode, secret string, opts ...Option) (*Authority, error) {
	if accessCode == "" {
		return nil, errors.New("session: access code is required")
	}
	if secret == "" {
		return nil, errors.New("session: signing secret is required")
	}
	a := &Authority{
		code:   []byte(accessCode),
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// TTL returns the token lifetime.
func (a *Authority) TTL() time.Duration { return a.ttl }

// Login checks the access code and issues a token for the admin role.
func (a *Authority) Login(code string) (Session, error) {
	if subtle.ConstantTimeCompare([]byte(code), a.code) != 1 {
		return Session{}, fmt.Errorf("%w: invalid code", ErrAuthentication)
	}

	issued := a.now()
	expires := issued.Add(a.ttl)
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: token, Role: RoleAdmin, ExpiresAt: expires}, nil
}

// Verify validates a token and returns its claims.
func (a *Authority) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, fmt.Errorf("%w: no token", ErrAuthentication)
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if claims.Role != RoleAdmin {
		return Claims{}, fmt.Errorf("%w: unknown role %q", ErrAuthentication, claims.Role)
	}
	return claims, nil
}
