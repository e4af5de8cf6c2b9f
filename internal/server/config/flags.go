package config

import (
	"flag"
	"os"
	"time"

	"github.com/healthboard/healthboard/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-k string   pgcrypto encryption key for sensitive columns
//	-t int      full-scope access token validity, minutes
//	-u int      mfa_setup token validity, minutes
//	-v int      mfa_verify token validity, minutes
//	-m int      pool max connections
//	-r int      reminder poll interval, minutes
//	-o string   TOTP issuer label
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-k", "-t", "-u", "-v", "-m", "-r", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.EncryptionKey, "k", config.EncryptionKey, "column encryption key")
	fs.StringVar(&config.TOTPIssuer, "o", config.TOTPIssuer, "TOTP issuer")

	accessTokenTTL := fs.Int("t", int(config.AccessTokenTTL.Minutes()), "access_token_ttl (in minutes)")
	setupTokenTTL := fs.Int("u", int(config.SetupTokenTTL.Minutes()), "setup_token_ttl (in minutes)")
	verifyTokenTTL := fs.Int("v", int(config.VerifyTokenTTL.Minutes()), "verify_token_ttl (in minutes)")
	poolMaxConns := fs.Int("m", int(config.PoolMaxConns), "pool max connections")
	reminderPollInterval := fs.Int("r", int(config.ReminderPollInterval.Minutes()), "reminder_poll_interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenTTL = time.Duration(*accessTokenTTL) * time.Minute
	config.SetupTokenTTL = time.Duration(*setupTokenTTL) * time.Minute
	config.VerifyTokenTTL = time.Duration(*verifyTokenTTL) * time.Minute
	config.PoolMaxConns = int32(*poolMaxConns)
	config.ReminderPollInterval = time.Duration(*reminderPollInterval) * time.Minute
}
