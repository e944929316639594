package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		environment string
		wantLevel   zapcore.Level
	}{
		{"development debug", "debug", "development", zapcore.DebugLevel},
		{"production info", "info", "production", zapcore.InfoLevel},
		{"warn level", "warn", "staging", zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.environment)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := New("loud", "production")
		assert.Error(t, err)
	})
}
