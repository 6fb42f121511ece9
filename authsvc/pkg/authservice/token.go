package authservice

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/ichigozero/taskguard/authsvc"
)

const (
	DefaultAlgorithm = "HS256"
	DefaultLifetime  = 20 * time.Minute
)

// Config carries the token settings. It is read once at startup.
type Config struct {
	Secret    []byte
	Algorithm string
	Lifetime  time.Duration
}

// Claims is the token payload as it arrives on the wire. The fields stay
// raw so Identify can tell a missing claim from a mistyped one.
type Claims struct {
	Subject *string         `json:"sub"`
	ID      json.RawMessage `json:"id"`
	Expiry  json.RawMessage `json:"exp"`
}

// Valid always succeeds; Identify applies the claim rules instead so their
// order and errors stay under our control.
func (Claims) Valid() error { return nil }

// ClaimsFactory is a kitjwt.ClaimsFactory producing *Claims.
func ClaimsFactory() jwt.Claims { return &Claims{} }

// Tokenizer issues and verifies HMAC signed session tokens.
type Tokenizer struct {
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration
	now      func() time.Time
}

var (
	ErrEmptySecret       = errors.New("token secret must not be empty")
	ErrUnsupportedMethod = errors.New("token algorithm must be one of HS256, HS384, HS512")
)

func NewTokenizer(c Config) (*Tokenizer, error) {
	if len(c.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	if c.Algorithm == "" {
		c.Algorithm = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(c.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, ErrUnsupportedMethod
	}
	if c.Lifetime <= 0 {
		c.Lifetime = DefaultLifetime
	}
	return &Tokenizer{
		secret:   c.Secret,
		method:   method,
		lifetime: c.Lifetime,
		now:      time.Now,
	}, nil
}

func (t *Tokenizer) Method() jwt.SigningMethod { return t.method }

func (t *Tokenizer) Lifetime() time.Duration { return t.lifetime }

// Keyfunc is a jwt.Keyfunc that rejects tokens signed with another
// algorithm.
func (t *Tokenizer) Keyfunc(token *jwt.Token) (interface{}, error) {
	if token.Method != t.method {
		return nil, authsvc.ErrUnauthorized
	}
	return t.secret, nil
}

// Issue signs a token for the subject. A non-positive lifetime means the
// configured one.
func (t *Tokenizer) Issue(subject string, id uint64, lifetime time.Duration) (string, error) {
	if lifetime <= 0 {
		lifetime = t.lifetime
	}
	claims := jwt.MapClaims{
		"sub": subject,
		"id":  id,
		"exp": t.now().Add(lifetime).Unix(),
	}
	return jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
}

// Verify checks the signature of token and then its claims.
func (t *Tokenizer) Verify(token string) (authsvc.Identity, error) {
	var claims Claims
	if _, err := jwt.ParseWithClaims(token, &claims, t.Keyfunc); err != nil {
		return authsvc.Identity{}, authsvc.ErrUnauthorized
	}
	return t.Identify(&claims)
}

// Identify applies the claim rules to an already authenticated payload:
// subject, then expiry presence and format, then expiry, then id.
func (t *Tokenizer) Identify(c *Claims) (authsvc.Identity, error) {
	if c.Subject == nil {
		return authsvc.Identity{}, authsvc.ErrUnauthorized
	}

	if absent(c.Expiry) {
		return authsvc.Identity{}, authsvc.ErrMalformedToken
	}
	exp, err := strconv.ParseInt(string(c.Expiry), 10, 64)
	if err != nil {
		return authsvc.Identity{}, authsvc.ErrMalformedToken
	}
	if t.now().Unix() >= exp {
		return authsvc.Identity{}, authsvc.ErrTokenExpired
	}

	if absent(c.ID) {
		return authsvc.Identity{}, authsvc.ErrUnauthorized
	}
	id, err := strconv.ParseUint(string(c.ID), 10, 64)
	if err != nil {
		return authsvc.Identity{}, authsvc.ErrUnauthorized
	}

	return authsvc.Identity{Username: *c.Subject, ID: id}, nil
}

func absent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
