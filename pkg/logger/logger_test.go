package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestDefaultLoggerIsUsableBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Log.Info("before init")
	})
}

func TestSetModeChangesLevel(t *testing.T) {
	SetMode("debug")
	assert.Equal(t, zapcore.DebugLevel, Level())

	SetMode("release")
	assert.Equal(t, zapcore.InfoLevel, Level())
}
