package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		level        string
		debugEnabled bool
		warnEnabled  bool
	}{
		{level: "debug", debugEnabled: true, warnEnabled: true},
		{level: "info", debugEnabled: false, warnEnabled: true},
		{level: "warn", debugEnabled: false, warnEnabled: true},
		{level: "error", debugEnabled: false, warnEnabled: false},
		{level: "bogus", debugEnabled: false, warnEnabled: true},
		{level: "", debugEnabled: false, warnEnabled: true},
	}

	for _, tc := range tests {
		t.Run("level "+tc.level, func(t *testing.T) {
			logger := Setup(tc.level)
			require.NotNil(t, logger)
			assert.Equal(t, tc.debugEnabled, logger.Enabled(context.Background(), slog.LevelDebug))
			assert.Equal(t, tc.warnEnabled, logger.Enabled(context.Background(), slog.LevelWarn))
		})
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	logger := Setup("info")
	assert.Equal(t, logger, slog.Default())
}
