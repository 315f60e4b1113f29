package provider

import (
	"context"
	"fmt"

	"snapask/src/config"
)

// Provider answers a text instruction about one or more PNG screenshots.
// Exactly one implementation is constructed at startup and used for the
// lifetime of the process.
type Provider interface {
	// Name returns a short vendor label for logging, e.g. "openai".
	Name() string
	// Answer sends the instruction text plus every image, in order, and
	// returns the model's answer. No timeout or retry is applied here;
	// the call runs until completion, failure, or ctx cancellation.
	Answer(ctx context.Context, prompt string, images [][]byte) (string, error)
}

// New selects the vendor per the startup configuration rule: openai when its
// key is present, else gemini, else an error that must abort startup.
func New(cfg *config.Config) (Provider, error) {
	vendor, active, err := cfg.Active()
	if err != nil {
		return nil, err
	}
	if active.Model == "" {
		return nil, fmt.Errorf("model is required for vendor %s", vendor)
	}
	switch vendor {
	case config.VendorOpenAI:
		return newOpenAI(active), nil
	case config.VendorGemini:
		return newGemini(active), nil
	default:
		return nil, fmt.Errorf("unknown vendor %q", vendor)
	}
}
