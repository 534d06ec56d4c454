// Package logging builds the service logger and keeps credentials out of it.
package logging

import (
	"go.uber.org/zap"
)

// NewLogger creates the root zap logger. Local environments get the
// development config (console encoder, debug level); everything else gets
// production JSON output.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
