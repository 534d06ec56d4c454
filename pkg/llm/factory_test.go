package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTextGenerator(t *testing.T) {
	logger := zap.NewNop()

	t.Run("openai by default", func(t *testing.T) {
		gen, err := NewTextGenerator("", &Config{
			Endpoint: "http://localhost:8000/v1",
			Model:    "qwen2.5-7b",
		}, logger)
		require.NoError(t, err)
		assert.IsType(t, &OpenAIClient{}, gen)
		assert.Equal(t, "qwen2.5-7b", gen.GetModel())
	})

	t.Run("explicit openai", func(t *testing.T) {
		gen, err := NewTextGenerator("openai", &Config{
			Endpoint: "https://api.openai.com/v1",
			Model:    "gpt-4o-mini",
			APIKey:   "sk-test",
		}, logger)
		require.NoError(t, err)
		assert.IsType(t, &OpenAIClient{}, gen)
	})

	t.Run("anthropic", func(t *testing.T) {
		gen, err := NewTextGenerator("anthropic", &Config{
			Model:  "claude-sonnet-4-20250514",
			APIKey: "sk-ant-test",
		}, logger)
		require.NoError(t, err)
		assert.IsType(t, &AnthropicClient{}, gen)
	})

	t.Run("anthropic without key is a config error", func(t *testing.T) {
		_, err := NewTextGenerator("anthropic", &Config{Model: "claude-sonnet-4-20250514"}, logger)
		require.Error(t, err)
		assert.Equal(t, ErrorTypeConfig, GetErrorType(err))
	})

	t.Run("openai without endpoint is a config error", func(t *testing.T) {
		_, err := NewTextGenerator("openai", &Config{Model: "gpt-4o-mini"}, logger)
		require.Error(t, err)
		assert.Equal(t, ErrorTypeConfig, GetErrorType(err))
	})

	t.Run("unknown provider is a config error", func(t *testing.T) {
		_, err := NewTextGenerator("gemini", &Config{Model: "m"}, logger)
		require.Error(t, err)
		assert.Equal(t, ErrorTypeConfig, GetErrorType(err))
	})
}
