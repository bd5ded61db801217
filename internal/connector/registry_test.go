package connector

import (
	"context"
	"slices"
	"testing"
)

type stubConnector struct{}

func (stubConnector) Fetch(context.Context, ConnectorConfig) (Payload, error) {
	return Payload{Source: "stub"}, nil
}

func TestRegisterAndGet(t *testing.T) {
	Register("stub", func() Connector { return stubConnector{} })
	defer delete(registry, "stub")

	ctor, err := Get("stub")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := ctor().Fetch(context.Background(), ConnectorConfig{})
	if err != nil || p.Source != "stub" {
		t.Fatalf("unexpected fetch result: %+v, %v", p, err)
	}
	if !slices.Contains(Providers(), "stub") {
		t.Fatalf("expected stub in providers, got %v", Providers())
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := Get("does-not-exist"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
