package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/zalando/go-keyring"

	"togglepace/internal/logger"
)

const (
	Service       = "togglepace"
	UserToggl     = "toggl"
	UserSevenPace = "sevenpace"
)

var (
	// ErrMissing is returned when a required token is in neither the
	// environment nor the keyring.
	ErrMissing = errors.New("api token not configured")
	// ErrNotFound is returned when no token is stored under a keyring user.
	ErrNotFound = errors.New("token not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be used.
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Tokens holds the API credentials of both services. Environment values win
// over keyring values.
type Tokens struct {
	Toggl     string `env:"TOGGL_API_KEY"`
	SevenPace string `env:"SEVENPACE_API_KEY"`
}

func Load() (Tokens, error) {
	var tokens Tokens
	if err := env.Parse(&tokens); err != nil {
		return Tokens{}, fmt.Errorf("parse env: %w", err)
	}
	tokens.Toggl = strings.TrimSpace(tokens.Toggl)
	tokens.SevenPace = strings.TrimSpace(tokens.SevenPace)

	if tokens.Toggl == "" {
		tokens.Toggl = lookup(UserToggl)
	}
	if tokens.SevenPace == "" {
		tokens.SevenPace = lookup(UserSevenPace)
	}
	return tokens, nil
}

// Require returns ErrMissing naming every absent token. The Toggl token is
// only checked when requireToggl is set.
func (t Tokens) Require(requireToggl bool) error {
	missing := make([]string, 0, 2)
	if requireToggl && t.Toggl == "" {
		missing = append(missing, "TOGGL_API_KEY")
	}
	if t.SevenPace == "" {
		missing = append(missing, "SEVENPACE_API_KEY")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf(
		"%w: %s (set the environment variable or run: togglepace auth set <toggl|sevenpace>)",
		ErrMissing,
		strings.Join(missing, ", "),
	)
}

func Get(user string) (string, error) {
	if err := checkUser(user); err != nil {
		return "", err
	}
	value, err := keyring.Get(Service, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

func Set(user, token string) error {
	if err := checkUser(user); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(Service, user, token); err != nil {
		return fmt.Errorf("store token in keyring: %w", err)
	}
	return nil
}

func Delete(user string) error {
	if err := checkUser(user); err != nil {
		return err
	}
	if err := keyring.Delete(Service, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete token from keyring: %w", err)
	}
	return nil
}

// Mask keeps the last four characters of a token.
func Mask(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

func lookup(user string) string {
	value, err := Get(user)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Debug("keyring lookup failed", "user", user, "err", err)
		}
		return ""
	}
	return strings.TrimSpace(value)
}

func checkUser(user string) error {
	switch user {
	case UserToggl, UserSevenPace:
		return nil
	default:
		return fmt.Errorf("unknown token %q (supported: %s, %s)", user, UserToggl, UserSevenPace)
	}
}
