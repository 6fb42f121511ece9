package main

import (
	"io/ioutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ichigozero/taskguard/authsvc/pkg/authservice"
)

func env(vars map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := parseConfig(nil, env(map[string]string{"SECRET_KEY": "s3cret"}))
		require.NoError(t, err)
		assert.Equal(t, config{
			HTTPAddr:   ":8000",
			SQLitePath: "taskguard.db",
			BcryptCost: bcrypt.DefaultCost,
			Token: authservice.Config{
				Secret:    []byte("s3cret"),
				Algorithm: "HS256",
				Lifetime:  20 * time.Minute,
			},
		}, cfg)
	})

	t.Run("environment", func(t *testing.T) {
		cfg, err := parseConfig(nil, env(map[string]string{
			"SECRET_KEY":     "s3cret",
			"HTTP_ADDR":      ":9000",
			"DATABASE_URL":   "postgres://localhost/taskguard",
			"ALGORITHM":      "HS512",
			"TOKEN_LIFETIME": "45",
			"BCRYPT_COST":    "4",
			"CONSUL_ADDR":    "consul:8500",
		}))
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.HTTPAddr)
		assert.Equal(t, "postgres://localhost/taskguard", cfg.DatabaseURL)
		assert.Equal(t, "HS512", cfg.Token.Algorithm)
		assert.Equal(t, 45*time.Minute, cfg.Token.Lifetime)
		assert.Equal(t, 4, cfg.BcryptCost)
		assert.Equal(t, "consul:8500", cfg.ConsulAddr)
	})

	t.Run("flags override environment", func(t *testing.T) {
		cfg, err := parseConfig(
			[]string{"-token.secret", "flag", "-token.lifetime", "1h", "-http.addr", ":1234"},
			env(map[string]string{"SECRET_KEY": "env", "HTTP_ADDR": ":9000"}),
		)
		require.NoError(t, err)
		assert.Equal(t, []byte("flag"), cfg.Token.Secret)
		assert.Equal(t, time.Hour, cfg.Token.Lifetime)
		assert.Equal(t, ":1234", cfg.HTTPAddr)
	})

	t.Run("malformed numbers fall back", func(t *testing.T) {
		cfg, err := parseConfig(nil, env(map[string]string{
			"SECRET_KEY":     "s3cret",
			"TOKEN_LIFETIME": "soon",
			"BCRYPT_COST":    "high",
		}))
		require.NoError(t, err)
		assert.Equal(t, authservice.DefaultLifetime, cfg.Token.Lifetime)
		assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := parseConfig(nil, env(nil))
		assert.Equal(t, errMissingSecret, err)
	})

	t.Run("bcrypt cost out of range", func(t *testing.T) {
		_, err := parseConfig([]string{"-token.secret", "s", "-bcrypt.cost", "99"}, env(nil))
		assert.Equal(t, errBcryptCost, err)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := parseConfig([]string{"-nope"}, env(nil))
		assert.Error(t, err)
	})
}

func init() {
	// Keep usage output of failing parses out of the test log.
	flagOutput = ioutil.Discard
}
