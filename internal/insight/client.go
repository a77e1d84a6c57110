// Package insight turns ergonomic metrics reports into narrative analysis by
// way of an external text-generation provider. It owns prompt construction,
// provider dispatch (Anthropic and OpenAI-compatible APIs, including NVIDIA
// NIM), response parsing into fixed sections, and the degraded-result policy:
// a provider failure never aborts a caller's pipeline.
package insight

import (
	"context"
	"fmt"
)

// SamplingConfig is the per-provider sampling configuration. Values are set
// at startup from configuration, not at call sites.
type SamplingConfig struct {
	// Temperature controls sampling randomness.
	Temperature float64

	// TopP is the nucleus-sampling probability mass cutoff. Zero means the
	// provider default; Anthropic calls omit it entirely when zero.
	TopP float64

	// MaxTokens caps the output length.
	MaxTokens int

	// Stream requests incremental output. Fragments are concatenated in
	// arrival order before parsing, so callers always see one complete text.
	Stream bool
}

// Request is a single completion call.
type Request struct {
	// System is the fixed role description sent with the prompt.
	System string

	// Prompt is the user-turn content.
	Prompt string

	// Sampling selects the provider sampling parameters for this call.
	Sampling SamplingConfig
}

// Completer is the interface to a hosted text-generation provider.
// Implementations must be safe for concurrent use and must honor ctx —
// completion is a long-latency call. All failures (auth, quota, network,
// malformed response) are returned as *ServiceError.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ServiceError wraps a provider failure so callers can treat every cause —
// timeout, quota, network, bad payload — uniformly.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("insight: %s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
