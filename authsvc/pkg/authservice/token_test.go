package authservice

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/kind"
)

var testSecret = []byte("test-secret")

func newTestTokenizer(t *testing.T, now time.Time) *Tokenizer {
	t.Helper()

	tk, err := NewTokenizer(Config{Secret: testSecret})
	require.NoError(t, err)
	tk.now = func() time.Time { return now }
	return tk
}

func sign(t *testing.T, method jwt.SigningMethod, secret []byte, claims jwt.MapClaims) string {
	t.Helper()

	s, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestNewTokenizer(t *testing.T) {
	tk, err := NewTokenizer(Config{Secret: testSecret})
	require.NoError(t, err)
	assert.Equal(t, jwt.SigningMethodHS256, tk.Method())
	assert.Equal(t, DefaultLifetime, tk.Lifetime())

	tk, err = NewTokenizer(Config{Secret: testSecret, Algorithm: "HS512", Lifetime: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, jwt.SigningMethodHS512, tk.Method())
	assert.Equal(t, time.Hour, tk.Lifetime())

	_, err = NewTokenizer(Config{})
	assert.ErrorIs(t, err, ErrEmptySecret)

	for _, alg := range []string{"RS256", "none", "HS1"} {
		_, err = NewTokenizer(Config{Secret: testSecret, Algorithm: alg})
		assert.ErrorIs(t, err, ErrUnsupportedMethod, alg)
	}
}

func TestIssueVerify(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tk := newTestTokenizer(t, now)

	token, err := tk.Issue("Alice1", 7, 0)
	require.NoError(t, err)

	id, err := tk.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, authsvc.Identity{Username: "Alice1", ID: 7}, id)

	tk.now = func() time.Time { return now.Add(DefaultLifetime - time.Second) }
	_, err = tk.Verify(token)
	assert.NoError(t, err)

	tk.now = func() time.Time { return now.Add(DefaultLifetime) }
	_, err = tk.Verify(token)
	assert.ErrorIs(t, err, authsvc.ErrTokenExpired)
	assert.ErrorIs(t, err, kind.ErrUnauthorized)
}

func TestIssue_CustomLifetime(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tk := newTestTokenizer(t, now)

	token, err := tk.Issue("Alice1", 7, time.Minute)
	require.NoError(t, err)

	tk.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = tk.Verify(token)
	assert.ErrorIs(t, err, authsvc.ErrTokenExpired)
}

func TestVerify_Claims(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tk := newTestTokenizer(t, now)
	future := now.Add(time.Minute).Unix()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "garbage",
			token:   "not.a.token",
			wantErr: authsvc.ErrUnauthorized,
		},
		{
			name:    "wrong secret",
			token:   sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "Alice1", "id": 7, "exp": future}),
			wantErr: authsvc.ErrUnauthorized,
		},
		{
			name:    "wrong algorithm",
			token:   sign(t, jwt.SigningMethodHS384, testSecret, jwt.MapClaims{"sub": "Alice1", "id": 7, "exp": future}),
			wantErr: authsvc.ErrUnauthorized,
		},
		{
			name:    "missing subject wins over missing expiry",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": 7}),
			wantErr: authsvc.ErrUnauthorized,
		},
		{
			name:    "subject not a string",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": 5, "id": 7, "exp": future}),
			wantErr: authsvc.ErrUnauthorized,
		},
		{
			name:    "missing expiry",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "Alice1", "id": 7}),
			wantErr: authsvc.ErrMalformedToken,
		},
		{
			name:    "float expiry",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "Alice1", "id": 7, "exp": 1700000060.5}),
			wantErr: authsvc.ErrMalformedToken,
		},
		{
			name:    "string expiry",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "Alice1", "id": 7, "exp": "1700000060"}),
			wantErr: authsvc.ErrMalformedToken,
		},
		{
			name:    "expiry equal to now",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "Alice1", "id": 7, "exp": now.Unix()}),
			wantErr: authsvc.ErrTokenExpired,
		},
		{
			name:    "expired wins over missing id",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "Alice1", "exp": now.Unix() - 1}),
			wantErr: authsvc.ErrTokenExpired,
		},
		{
			name:    "missing id",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "Alice1", "exp": future}),
			wantErr: authsvc.ErrUnauthorized,
		},
		{
			name:    "negative id",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "Alice1", "id": -1, "exp": future}),
			wantErr: authsvc.ErrUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tk.Verify(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerify_MalformedIsBadRequest(t *testing.T) {
	tk := newTestTokenizer(t, time.Unix(1700000000, 0))
	token := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "Alice1", "id": 7})

	_, err := tk.Verify(token)
	assert.ErrorIs(t, err, kind.ErrBadRequest)
	assert.NotErrorIs(t, err, kind.ErrUnauthorized)
}
