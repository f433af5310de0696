package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, bools for policy switches.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBMaxConns     int    // connection pool ceiling (open and idle)
	JWTSecret      string // secret used to sign JWTs; loaded once at startup, immutable afterwards
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// RevokeSessionsOnPasswordChange controls whether changing the account
	// password also revokes every outstanding refresh token of that account.
	// Defaults to false, which keeps other devices logged in.
	RevokeSessionsOnPasswordChange bool
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Token lifetimes, the
// bcrypt cost and the password-change policy fall back to defaults when
// unset.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),      // environment (dev/test/prod)
		Port:           must("APP_PORT"),     // port to bind the HTTP server
		DBUser:         must("DB_USER"),      // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),      // database host
		DBPort:         must("DB_PORT"),      // database port
		DBName:         must("DB_NAME"),      // database name
		DBMaxConns:     envInt("DB_MAX_CONNS", 25),
		JWTSecret:      must("JWT_SECRET"), // secret used for signing JWTs
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),   // short-lived access tokens
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30), // long-lived refresh tokens
		BcryptCost:     envInt("BCRYPT_COST", 12),            // bcrypt cost factor

		RevokeSessionsOnPasswordChange: envBool("REVOKE_SESSIONS_ON_PASSWORD_CHANGE", false),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envInt reads an optional integer environment variable, returning the
// given default when the variable is unset or unparsable.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
