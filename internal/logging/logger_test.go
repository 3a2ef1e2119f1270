package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "internal/usecase/deploy_account.go", shortPath("/src/aadeploy/internal/usecase/deploy_account.go"))
	assert.Equal(t, "rpc/client.go", shortPath("/elsewhere/rpc/client.go"))
}
