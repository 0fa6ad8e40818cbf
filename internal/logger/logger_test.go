package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"libinstall/pkg/logging"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log, err := New("debug", format)
		require.NoError(t, err)
		assert.NotNil(t, log)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)
	log.SetCommand("install")

	ctx := logging.WithRunID(context.Background(), "abc")
	log.InfowCtx(ctx, "archive extracted", "entries", 3)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "abc", fields["run_id"])
	assert.Equal(t, "install", fields["command"])
	assert.EqualValues(t, 3, fields["entries"])
}

func TestContextCommandWins(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)
	log.SetCommand("install")

	ctx := logging.WithCommand(context.Background(), "url")
	log.WarnwCtx(ctx, "url not found")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "url", logs.All()[0].ContextMap()["command"])
}

func TestNopLogger(t *testing.T) {
	log := NopLogger()
	log.ErrorwCtx(context.Background(), "ignored")
	assert.NoError(t, log.Sync())
}
