package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core), LevelDebug)

	l.With(String("special", "door")).Debug("spawned",
		Int("sector", 3),
		Float64("dest", 124),
		Bool("crush", false),
		Uint64("tick", 7),
		Error(errors.New("boom")),
	)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "door", ctx["special"])
		assert.Equal(t, int64(3), ctx["sector"])
		assert.Equal(t, 124.0, ctx["dest"])
		assert.Equal(t, false, ctx["crush"])
		assert.Equal(t, uint64(7), ctx["tick"])
		assert.Equal(t, "boom", ctx["error"])
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("whatever"))
	assert.Equal(t, LevelNone, ParseLevel("none"))
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.Info("ignored")
	assert.Equal(t, LevelNone, l.GetLevel())
}
