package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// AdminConfig holds the bcrypt hash of the operator password that is
// exchanged for an admin token.
type AdminConfig struct {
	PasswordHash string
	BcryptCost   int
	Pepper       string // optional global secret appended before hashing
}

// NewAdminConfig reads ADMIN_PASSWORD_HASH, BCRYPT_COST (default 12) and PASSWORD_PEPPER.
// An empty hash is allowed; Verify then rejects every password.
func NewAdminConfig() (*AdminConfig, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12"
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}
	if cost < 10 || cost > 14 {
		return nil, fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", cost)
	}

	return &AdminConfig{
		PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		BcryptCost:   cost,
		Pepper:       os.Getenv("PASSWORD_PEPPER"),
	}, nil
}

// Enabled reports whether an admin password has been configured.
func (c *AdminConfig) Enabled() bool {
	return c.PasswordHash != ""
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c *AdminConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify checks pw against the configured hash.
func (c *AdminConfig) Verify(pw string) bool {
	if !c.Enabled() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(pw+c.Pepper)) == nil
}
