package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays configuration from environment variables. Unset variables
// leave the current value untouched; unparsable durations or numbers panic,
// matching the JSON layer's fail-fast behavior.
//
// Recognized variables:
//
//	ADDRESS                 HTTP bind address
//	DATABASE_DSN            PostgreSQL DSN
//	JWT_SECRET              token signing secret
//	SETUP_TOKEN_TTL         mfa_setup token lifetime (e.g. "1h")
//	VERIFY_TOKEN_TTL        mfa_verify token lifetime
//	ACCESS_TOKEN_TTL        full-scope token lifetime
//	DB_ENCRYPTION_KEY       pgcrypto key for sensitive columns
//	TOTP_ISSUER             issuer label for authenticator apps
//	POOL_MAX_CONNS          max concurrently checked-out connections
//	POOL_IDLE_TIMEOUT       idle connection recycle interval
//	POOL_ACQUIRE_TIMEOUT    acquisition timeout before PoolExhausted
//	REMINDER_POLL_INTERVAL  reminder dispatcher poll interval
//	FITNESS_CLIENT_ID       fitness provider OAuth client ID
func parseEnv(config *Config) {
	setString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	setString("ADDRESS", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("JWT_SECRET", &config.SecretKey)
	setString("DB_ENCRYPTION_KEY", &config.EncryptionKey)
	setString("TOTP_ISSUER", &config.TOTPIssuer)
	setString("FITNESS_CLIENT_ID", &config.FitnessClientID)

	setDuration("SETUP_TOKEN_TTL", &config.SetupTokenTTL)
	setDuration("VERIFY_TOKEN_TTL", &config.VerifyTokenTTL)
	setDuration("ACCESS_TOKEN_TTL", &config.AccessTokenTTL)
	setDuration("POOL_IDLE_TIMEOUT", &config.PoolIdleTimeout)
	setDuration("POOL_ACQUIRE_TIMEOUT", &config.PoolAcquireTimeout)
	setDuration("REMINDER_POLL_INTERVAL", &config.ReminderPollInterval)

	if v, ok := os.LookupEnv("POOL_MAX_CONNS"); ok {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			panic(err)
		}
		config.PoolMaxConns = int32(n)
	}
}
