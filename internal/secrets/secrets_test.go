package secrets

import (
	"errors"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestLoad_EnvWinsOverKeyring(t *testing.T) {
	keyring.MockInit()
	t.Setenv("TOGGL_API_KEY", "env-toggl")
	t.Setenv("SEVENPACE_API_KEY", "")

	if err := Set(UserToggl, "ring-toggl"); err != nil {
		t.Fatalf("set toggl: %v", err)
	}
	if err := Set(UserSevenPace, "ring-7pace"); err != nil {
		t.Fatalf("set sevenpace: %v", err)
	}

	tokens, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tokens.Toggl != "env-toggl" {
		t.Fatalf("expected env toggl token, got %q", tokens.Toggl)
	}
	if tokens.SevenPace != "ring-7pace" {
		t.Fatalf("expected keyring sevenpace token, got %q", tokens.SevenPace)
	}
	if err := tokens.Require(true); err != nil {
		t.Fatalf("tokens should be complete: %v", err)
	}
}

func TestRequire_NamesMissingTokens(t *testing.T) {
	t.Parallel()

	err := Tokens{}.Require(true)
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "TOGGL_API_KEY") || !strings.Contains(err.Error(), "SEVENPACE_API_KEY") {
		t.Fatalf("expected both names in error: %v", err)
	}

	if err := (Tokens{SevenPace: "x"}).Require(false); err != nil {
		t.Fatalf("toggl token must be optional for file imports: %v", err)
	}
}

func TestKeyringRoundTrip(t *testing.T) {
	keyring.MockInit()

	if _, err := Get(UserSevenPace); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before set, got %v", err)
	}
	if err := Set(UserSevenPace, "  abc  "); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := Get(UserSevenPace)
	if err != nil || value != "abc" {
		t.Fatalf("expected trimmed token, got %q %v", value, err)
	}
	if err := Delete(UserSevenPace); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := Delete(UserSevenPace); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUnknownUserAndEmptyToken(t *testing.T) {
	keyring.MockInit()

	if err := Set("github", "x"); err == nil {
		t.Fatalf("expected unknown user error")
	}
	if err := Set(UserToggl, " "); err == nil {
		t.Fatalf("expected empty token error")
	}
}

func TestMask(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":           "(not set)",
		"abc":        "***",
		"1234567890": "******7890",
	}
	for input, want := range tests {
		if got := Mask(input); got != want {
			t.Fatalf("Mask(%q) = %q, want %q", input, got, want)
		}
	}
}
