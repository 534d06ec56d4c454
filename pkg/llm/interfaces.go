// Package llm provides the text-generation boundary for defect reports.
package llm

import (
	"context"
)

// TextGenerator is the narrow interface the report generator depends on.
// Implementations wrap a chat-completion style API; tests substitute a mock.
type TextGenerator interface {
	// Generate produces text for a system+user message pair. Failures are
	// returned as *Error with a classification the caller can act on.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}
