package llm

import (
	"context"
	"sync"
)

// MockTextGenerator is a configurable mock for testing report generation.
// Set the function field to control behavior in tests. Safe for concurrent
// use so cache-stampede tests can share one instance.
type MockTextGenerator struct {
	// GenerateFunc is called when Generate is invoked.
	// If nil, returns empty string and nil error.
	GenerateFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	mu sync.Mutex

	// Call tracking for verification
	GenerateCalls int
	LastSystem    string
	LastPrompt    string
}

// NewMockTextGenerator creates a new mock with sensible defaults.
func NewMockTextGenerator() *MockTextGenerator {
	return &MockTextGenerator{Model: "mock-model"}
}

// Generate implements TextGenerator.
func (m *MockTextGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	m.GenerateCalls++
	m.LastSystem = systemPrompt
	m.LastPrompt = userPrompt
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, systemPrompt, userPrompt)
	}
	return "", nil
}

// GetModel implements TextGenerator.
func (m *MockTextGenerator) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Reset clears call tracking.
func (m *MockTextGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls = 0
	m.LastSystem = ""
	m.LastPrompt = ""
}

// Ensure MockTextGenerator implements TextGenerator at compile time.
var _ TextGenerator = (*MockTextGenerator)(nil)
