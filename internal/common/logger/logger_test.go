package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapter_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).With(map[string]interface{}{"component": "chat"})

	log.Info("chat handled", map[string]interface{}{"userId": "user1"})
	log.WithError(errors.New("boom")).Error("tool failed", nil)
	log.Warn("cache degraded", map[string]interface{}{"error": errors.New("redis down")})

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "chat handled", entries[0].Message)
	assert.Equal(t, "chat", entries[0].ContextMap()["component"])
	assert.Equal(t, "user1", entries[0].ContextMap()["userId"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	assert.Equal(t, "redis down", entries[2].ContextMap()["error"])
}

func TestNew_Levels(t *testing.T) {
	assert.True(t, New("debug", "json").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, New("warn", "console").Core().Enabled(zapcore.InfoLevel))
	assert.False(t, New("", "json").Core().Enabled(zapcore.DebugLevel))
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	log.Info("ignored", map[string]interface{}{"k": "v"})
	assert.NotNil(t, log.WithFields(nil))
}
