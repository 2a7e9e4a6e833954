package cli

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/joseph-ayodele/mtext/internal/common"
	"github.com/joseph-ayodele/mtext/internal/provider"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildClients_SkipsFailingProvider(t *testing.T) {
	cfg := &common.Config{}

	// An ID outside the registry makes buildClient fail; the openai and
	// anthropic clients construct without I/O, so the run continues with them.
	ids := []provider.ID{provider.OpenAI, provider.ID("bogus"), provider.Anthropic}
	clients := buildClients(context.Background(), ids, "", cfg, discardLogger())

	if len(clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(clients))
	}
	if clients[0].Name() != provider.OpenAI || clients[1].Name() != provider.Anthropic {
		t.Fatalf("wrong clients: %s, %s", clients[0].Name(), clients[1].Name())
	}
}

func TestBuildClients_AllFailingYieldsEmpty(t *testing.T) {
	clients := buildClients(context.Background(), []provider.ID{provider.ID("bogus")}, "", &common.Config{}, discardLogger())
	if len(clients) != 0 {
		t.Fatalf("expected no clients, got %d", len(clients))
	}
}

func TestBuildClients_ModelOverride(t *testing.T) {
	clients := buildClients(context.Background(), []provider.ID{provider.OpenAI}, "gpt-4o-mini", &common.Config{}, discardLogger())
	if len(clients) != 1 {
		t.Fatalf("expected 1 client, got %d", len(clients))
	}
	if clients[0].Model() != "gpt-4o-mini" {
		t.Fatalf("model = %q, want override", clients[0].Model())
	}
}
