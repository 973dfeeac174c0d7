package auth

import (
	"fmt"
	"time"
)

// Algorithm represents supported password hashing algorithms.
type Algorithm string

const (
	// AlgorithmBcrypt is bcrypt hashing (widely supported, compatible with
	// digests produced by the previous backend).
	AlgorithmBcrypt Algorithm = "bcrypt"

	// AlgorithmArgon2id is argon2id hashing (modern, recommended for new
	// deployments).
	AlgorithmArgon2id Algorithm = "argon2id"
)

// Config configures password hashing and token issuance.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// JWTSecret is the HMAC signing key for bearer tokens (required).
	JWTSecret string `mapstructure:"jwt_secret"`

	// TokenTTL is the absolute token lifetime (default: 2h).
	TokenTTL time.Duration `mapstructure:"token_ttl"`

	// PasswordAlgorithm selects the hashing algorithm (default: "bcrypt").
	PasswordAlgorithm Algorithm `mapstructure:"password_algorithm"`

	// BcryptCost is the bcrypt cost parameter (default: 12, range: 4-31).
	BcryptCost int `mapstructure:"bcrypt_cost"`

	// Argon2Time is the number of iterations for argon2id (default: 1).
	Argon2Time uint32 `mapstructure:"argon2_time"`

	// Argon2Memory is the memory usage in KiB for argon2id (default: 65536 = 64MB).
	Argon2Memory uint32 `mapstructure:"argon2_memory"`

	// Argon2Threads is the parallelism for argon2id (default: 4).
	Argon2Threads uint8 `mapstructure:"argon2_threads"`

	// MinPasswordLength is the minimum accepted password length (default: 6).
	MinPasswordLength int `mapstructure:"min_password_length"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.TokenTTL == 0 {
		c.TokenTTL = 2 * time.Hour
	}
	if c.PasswordAlgorithm == "" {
		c.PasswordAlgorithm = AlgorithmBcrypt
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 1
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 4
	}
	if c.MinPasswordLength == 0 {
		c.MinPasswordLength = 6
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	switch c.PasswordAlgorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return fmt.Errorf("unsupported password_algorithm: %s (use bcrypt or argon2id)", c.PasswordAlgorithm)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31 (got: %d)", c.BcryptCost)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive (got: %s)", c.TokenTTL)
	}
	if c.MinPasswordLength < 1 {
		return fmt.Errorf("min_password_length must be >= 1 (got: %d)", c.MinPasswordLength)
	}
	return nil
}

// NewHasher creates a Hasher from configuration.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	switch cfg.PasswordAlgorithm {
	case AlgorithmArgon2id:
		return NewArgon2Hasher(
			WithArgon2Time(cfg.Argon2Time),
			WithArgon2Memory(cfg.Argon2Memory),
			WithArgon2Threads(cfg.Argon2Threads),
		)
	default:
		return NewBcryptHasher(WithCost(cfg.BcryptCost))
	}
}
