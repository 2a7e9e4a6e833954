// Package provider defines the contracts shared by every vision-language
// provider and the registry that decides which providers a run can use.
package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/joseph-ayodele/mtext/internal/common"
)

// ID identifies a provider.
type ID string

const (
	Gemini    ID = "gemini"
	OpenAI    ID = "openai"
	Anthropic ID = "anthropic"
)

// Order is the fixed enumeration order for provider processing. Runs iterate
// providers in this order, so output and summaries are deterministic.
var Order = []ID{Gemini, OpenAI, Anthropic}

// Spec describes a provider: its credential env var and default model.
// Specs are immutable and defined at process start.
type Spec struct {
	ID           ID
	KeyEnv       string
	DefaultModel string
}

// Specs maps each provider ID to its spec.
var Specs = map[ID]Spec{
	Gemini:    {ID: Gemini, KeyEnv: "GOOGLE_API_KEY", DefaultModel: "gemini-2.0-flash"},
	OpenAI:    {ID: OpenAI, KeyEnv: "OPENAI_API_KEY", DefaultModel: "gpt-4o"},
	Anthropic: {ID: Anthropic, KeyEnv: "ANTHROPIC_API_KEY", DefaultModel: "claude-3-5-sonnet-20241022"},
}

// Request is a single page-extraction call.
type Request struct {
	Image    []byte
	MIMEType string
	Prompt   string
}

// Client turns one page image into text. Implementations live in the
// per-provider subpackages.
type Client interface {
	Name() ID
	Model() string
	ExtractText(ctx context.Context, req Request) (string, error)
}

// Parse validates a --provider value.
func Parse(s string) (ID, error) {
	id := ID(s)
	if _, ok := Specs[id]; !ok {
		return "", fmt.Errorf("%w: unknown provider %q", common.ErrInvalidInput, s)
	}
	return id, nil
}

// Available returns the providers whose credential env var is set, in Order.
// An absent credential silently excludes the provider.
func Available() []ID {
	var out []ID
	for _, id := range Order {
		if os.Getenv(Specs[id].KeyEnv) != "" {
			out = append(out, id)
		}
	}
	return out
}

// Select resolves the provider set for a run. If requested is non-empty, that
// single provider is returned, and a missing credential is an error (the user
// asked for it explicitly). Otherwise every available provider is returned;
// none available is ErrNoProviderAvailable.
func Select(requested string) ([]ID, error) {
	if requested != "" {
		id, err := Parse(requested)
		if err != nil {
			return nil, err
		}
		if os.Getenv(Specs[id].KeyEnv) == "" {
			return nil, fmt.Errorf("%w: credential %s for provider %q is not set",
				common.ErrNoProviderAvailable, Specs[id].KeyEnv, id)
		}
		return []ID{id}, nil
	}
	avail := Available()
	if len(avail) == 0 {
		return nil, fmt.Errorf("%w: none of GOOGLE_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY is set",
			common.ErrNoProviderAvailable)
	}
	return avail, nil
}
