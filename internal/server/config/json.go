package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/healthboard/healthboard/internal/flagx"
	"github.com/healthboard/healthboard/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Interval fields use timex.Duration so both string values such as
// "15m" and integer nanoseconds parse. After unmarshalling, non-zero fields
// are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr         string         `json:"endpoint_addr"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	SetupTokenTTL        timex.Duration `json:"setup_token_ttl"`
	VerifyTokenTTL       timex.Duration `json:"verify_token_ttl"`
	AccessTokenTTL       timex.Duration `json:"access_token_ttl"`
	EncryptionKey        string         `json:"encryption_key"`
	TOTPIssuer           string         `json:"totp_issuer"`
	PoolMaxConns         int32          `json:"pool_max_conns"`
	PoolIdleTimeout      timex.Duration `json:"pool_idle_timeout"`
	PoolAcquireTimeout   timex.Duration `json:"pool_acquire_timeout"`
	ReminderPollInterval timex.Duration `json:"reminder_poll_interval"`
	FitnessClientID      string         `json:"fitness_client_id"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags; when
// neither is set, no JSON file is loaded. Unreadable or invalid files panic,
// since running with a half-applied config is worse than not starting.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SetupTokenTTL.Duration != 0 {
		config.SetupTokenTTL = time.Duration(c.SetupTokenTTL.Duration)
	}
	if c.VerifyTokenTTL.Duration != 0 {
		config.VerifyTokenTTL = time.Duration(c.VerifyTokenTTL.Duration)
	}
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = time.Duration(c.AccessTokenTTL.Duration)
	}
	if c.EncryptionKey != "" {
		config.EncryptionKey = c.EncryptionKey
	}
	if c.TOTPIssuer != "" {
		config.TOTPIssuer = c.TOTPIssuer
	}
	if c.PoolMaxConns != 0 {
		config.PoolMaxConns = c.PoolMaxConns
	}
	if c.PoolIdleTimeout.Duration != 0 {
		config.PoolIdleTimeout = time.Duration(c.PoolIdleTimeout.Duration)
	}
	if c.PoolAcquireTimeout.Duration != 0 {
		config.PoolAcquireTimeout = time.Duration(c.PoolAcquireTimeout.Duration)
	}
	if c.ReminderPollInterval.Duration != 0 {
		config.ReminderPollInterval = time.Duration(c.ReminderPollInterval.Duration)
	}
	if c.FitnessClientID != "" {
		config.FitnessClientID = c.FitnessClientID
	}
}
