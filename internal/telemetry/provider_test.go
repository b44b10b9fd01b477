package telemetry

import (
	"context"
	"testing"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	t.Setenv(EnvEndpoint, "")

	shutdown, err := Setup(context.Background(), "togglepace")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown returned error: %v", err)
	}
}

func TestSetup_ExplicitlyDisabled(t *testing.T) {
	t.Setenv(EnvEndpoint, "http://localhost:4318")
	t.Setenv(EnvEnabled, "false")

	shutdown, err := Setup(context.Background(), "togglepace")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown returned error: %v", err)
	}
}
