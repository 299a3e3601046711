// Package keyring keeps postgres connection strings in the OS keyring so they
// never have to appear in config files or shell history.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/komaplan/internal/constants"
)

// StorePrefix selects a keyring-held connection string: "keyring" or "keyring:<profile>".
const StorePrefix = "keyring"

var (
	// ErrNotFound is returned when no credentials are stored for the profile
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func user(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return constants.DefaultKeyringUser
	}
	return constants.DefaultKeyringUser + ":" + profile
}

// GetConnectionString returns the connection string stored for profile ("" for the default).
func GetConnectionString(profile string) (string, error) {
	connStr, err := keyring.Get(constants.AppName, user(profile))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// SetConnectionString stores connStr for profile.
func SetConnectionString(profile, connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, user(profile), connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// DeleteConnectionString removes the connection string stored for profile.
func DeleteConnectionString(profile string) error {
	if err := keyring.Delete(constants.AppName, user(profile)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable is a best-effort probe of the OS keyring.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// IsKeyringRef reports whether store names a keyring entry instead of a path or URL.
func IsKeyringRef(store string) bool {
	return store == StorePrefix || strings.HasPrefix(store, StorePrefix+":")
}

// Resolve turns a "keyring[:profile]" store reference into the stored connection string.
// Other values are returned unchanged.
func Resolve(store string) (string, error) {
	if !IsKeyringRef(store) {
		return store, nil
	}
	profile := strings.TrimPrefix(strings.TrimPrefix(store, StorePrefix), ":")
	connStr, err := GetConnectionString(profile)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", store, err)
	}
	return connStr, nil
}
