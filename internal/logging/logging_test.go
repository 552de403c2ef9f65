package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		opts Options
		want zapcore.Level
	}{
		{Options{}, zapcore.InfoLevel},
		{Options{Level: "warn"}, zapcore.WarnLevel},
		{Options{Level: "ERROR", Format: "json"}, zapcore.ErrorLevel},
		{Options{Level: "error", Verbose: true}, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		logger, err := New(tt.opts)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(tt.want), "%+v enables %s", tt.opts, tt.want)
		if tt.want > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(tt.want-1), "%+v disables %s", tt.opts, tt.want-1)
		}
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}
