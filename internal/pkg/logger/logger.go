package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds the process logger. Release-like environments get JSON output.
func New(appEnv string) (*zap.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(appEnv)) {
	case "prod", "production", "release":
		return zap.NewProduction()
	default:
		return zap.NewDevelopment()
	}
}
