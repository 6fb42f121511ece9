package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ichigozero/taskguard/authsvc/pkg/authservice"
)

type config struct {
	HTTPAddr    string
	DatabaseURL string
	SQLitePath  string
	ConsulAddr  string
	BcryptCost  int
	Token       authservice.Config
}

var (
	errMissingSecret = errors.New("a token secret is required (-token.secret or SECRET_KEY)")
	errBcryptCost    = fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
)

// flagOutput receives usage and flag errors.
var flagOutput io.Writer = os.Stderr

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// parseConfig reads flags from args. Every flag defaults to its
// environment variable, then to a built-in value.
func parseConfig(args []string, lookup lookupFunc) (config, error) {
	fs := flag.NewFlagSet("taskguard", flag.ContinueOnError)
	fs.SetOutput(flagOutput)
	var (
		httpAddr = fs.String(
			"http.addr",
			lookup.get("HTTP_ADDR", ":8000"),
			"HTTP listen address",
		)
		databaseURL = fs.String(
			"database.url",
			lookup.get("DATABASE_URL", ""),
			"Postgres URL; SQLite is used when empty",
		)
		sqlitePath = fs.String(
			"sqlite.path",
			lookup.get("SQLITE_PATH", "taskguard.db"),
			"SQLite database file",
		)
		consulAddr = fs.String(
			"consul.addr",
			lookup.get("CONSUL_ADDR", ""),
			"Consul agent address; no registration when empty",
		)
		secret = fs.String(
			"token.secret",
			lookup.get("SECRET_KEY", ""),
			"token signing secret",
		)
		algorithm = fs.String(
			"token.algorithm",
			lookup.get("ALGORITHM", authservice.DefaultAlgorithm),
			"token signing algorithm",
		)
		lifetime = fs.Duration(
			"token.lifetime",
			lookup.getDuration("TOKEN_LIFETIME", authservice.DefaultLifetime),
			"token lifetime",
		)
		bcryptCost = fs.Int(
			"bcrypt.cost",
			lookup.getInt("BCRYPT_COST", bcrypt.DefaultCost),
			"bcrypt cost of password hashes",
		)
	)

	fs.Usage = usageFor(fs, "taskguard [flags]")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if *secret == "" {
		return config{}, errMissingSecret
	}
	if *bcryptCost < bcrypt.MinCost || *bcryptCost > bcrypt.MaxCost {
		return config{}, errBcryptCost
	}

	return config{
		HTTPAddr:    *httpAddr,
		DatabaseURL: *databaseURL,
		SQLitePath:  *sqlitePath,
		ConsulAddr:  *consulAddr,
		BcryptCost:  *bcryptCost,
		Token: authservice.Config{
			Secret:    []byte(*secret),
			Algorithm: *algorithm,
			Lifetime:  *lifetime,
		},
	}, nil
}

func usageFor(fs *flag.FlagSet, short string) func() {
	return func() {
		out := fs.Output()
		fmt.Fprintf(out, "USAGE\n")
		fmt.Fprintf(out, "  %s\n", short)
		fmt.Fprintf(out, "\n")
		fmt.Fprintf(out, "FLAGS\n")
		w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "\t-%s %s\t%s\n", f.Name, f.DefValue, f.Usage)
		})
		w.Flush()
		fmt.Fprintf(out, "\n")
	}
}

func (lookup lookupFunc) get(key, fallback string) string {
	value, exists := lookup(key)
	if !exists {
		value = fallback
	}
	return value
}

func (lookup lookupFunc) getInt(key string, fallback int) int {
	value, exists := lookup(key)
	if !exists {
		return fallback
	}

	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("20m") and plain minutes ("20").
func (lookup lookupFunc) getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := lookup(key)
	if !exists {
		return fallback
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if m, err := strconv.Atoi(value); err == nil {
		return time.Duration(m) * time.Minute
	}
	return fallback
}
