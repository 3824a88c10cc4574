package keyring

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/pibble/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// TokenRecord is the persisted form of a signed-in JWT session
type TokenRecord struct {
	AccessToken string    `json:"accessToken"`
	User        TokenUser `json:"user"`
}

type TokenUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// DemoRecord is the persisted form of a demo-header session
type DemoRecord struct {
	Email string
	Name  string
}

func get(user string) (string, error) {
	value, err := keyring.Get(constants.KeyringService, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

func set(user, value string) error {
	if err := keyring.Set(constants.KeyringService, user, value); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// remove deletes an entry; a missing entry is not an error
func remove(user string) error {
	err := keyring.Delete(constants.KeyringService, user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// GetToken returns the persisted JWT session.
// Returns ErrNotFound if none is stored.
func GetToken() (TokenRecord, error) {
	raw, err := get(constants.KeyringAuthTokenUser)
	if err != nil {
		return TokenRecord{}, err
	}
	var rec TokenRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.AccessToken == "" {
		// A corrupt record is treated as absent and cleaned up
		_ = remove(constants.KeyringAuthTokenUser)
		return TokenRecord{}, ErrNotFound
	}
	return rec, nil
}

// SetToken persists a JWT session and drops any legacy demo identity.
func SetToken(rec TokenRecord) error {
	if rec.AccessToken == "" {
		return errors.New("access token cannot be empty")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := set(constants.KeyringAuthTokenUser, string(data)); err != nil {
		return err
	}
	return deleteDemo()
}

// GetDemo returns the persisted demo identity.
func GetDemo() (DemoRecord, error) {
	email, err := get(constants.KeyringDemoEmailUser)
	if err != nil {
		return DemoRecord{}, err
	}
	name, err := get(constants.KeyringDemoNameUser)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return DemoRecord{}, err
	}
	return DemoRecord{Email: email, Name: name}, nil
}

// SetDemo persists a demo identity and drops any stored token.
func SetDemo(rec DemoRecord) error {
	if rec.Email == "" {
		return errors.New("demo email cannot be empty")
	}
	if err := set(constants.KeyringDemoEmailUser, rec.Email); err != nil {
		return err
	}
	if err := set(constants.KeyringDemoNameUser, rec.Name); err != nil {
		return err
	}
	return remove(constants.KeyringAuthTokenUser)
}

func deleteDemo() error {
	if err := remove(constants.KeyringDemoEmailUser); err != nil {
		return err
	}
	return remove(constants.KeyringDemoNameUser)
}

// ClearSession removes every persisted session entry.
func ClearSession() error {
	if err := remove(constants.KeyringAuthTokenUser); err != nil {
		return err
	}
	return deleteDemo()
}

// GetConnectionString retrieves the cache connection string from the OS keyring.
// Returns ErrNotFound if no credentials are stored.
func GetConnectionString() (string, error) {
	return get(constants.KeyringCacheConnUser)
}

// SetConnectionString stores the cache connection string in the OS keyring.
func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	return set(constants.KeyringCacheConnUser, connStr)
}

// DeleteConnectionString removes the cache connection string from the OS keyring.
func DeleteConnectionString() error {
	err := keyring.Delete(constants.KeyringService, constants.KeyringCacheConnUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.KeyringService, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
