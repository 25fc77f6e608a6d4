// Package config loads configuration structs from environment variables.
//
// Fields are described with `env` struct tags (github.com/caarlos0/env),
// and a .env file is read once per process if present (github.com/joho/godotenv),
// which keeps local development setups out of the shell profile.
//
//	type LedgerConfig struct {
//	    FingerprintKey string        `env:"RECEIPTS_LEDGER_FINGERPRINT_KEY,required"`
//	    Retention      time.Duration `env:"RECEIPTS_LEDGER_RETENTION" envDefault:"2160h"`
//	}
//
//	var cfg LedgerConfig
//	config.MustLoad(&cfg)
package config
