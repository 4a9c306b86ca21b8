package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		expected := New(&Config{Level: DebugLevel, Output: &bytes.Buffer{}})
		ctx := ContextWithLogger(t.Context(), expected)

		assert.Equal(t, expected, FromContext(ctx))
	})

	t.Run("Should return discard logger when no logger in context", func(t *testing.T) {
		l := FromContext(t.Context())

		require.NotNil(t, l)
		l.Info("丢弃的日志")
	})

	t.Run("Should return discard logger when wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(t.Context(), LoggerCtxKey, "not a logger")

		require.NotNil(t, FromContext(ctx))
	})

	t.Run("Should return discard logger when nil logger in context", func(t *testing.T) {
		ctx := context.WithValue(t.Context(), LoggerCtxKey, (Logger)(nil))

		require.NotNil(t, FromContext(ctx))
	})
}

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	testCases := []struct {
		level    LogLevel
		expected int
	}{
		{DebugLevel, -4},
		{InfoLevel, 0},
		{WarnLevel, 4},
		{ErrorLevel, 8},
		{DisabledLevel, 1000},
		{LogLevel("unknown"), 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, int(tc.level.ToCharmlogLevel()), "level %s", tc.level)
	}
}

func TestParseLevel(t *testing.T) {
	t.Run("Should parse known levels case insensitively", func(t *testing.T) {
		lvl, err := ParseLevel(" DEBUG ")
		require.NoError(t, err)
		assert.Equal(t, DebugLevel, lvl)
	})

	t.Run("Should default empty level to info", func(t *testing.T) {
		lvl, err := ParseLevel("")
		require.NoError(t, err)
		assert.Equal(t, InfoLevel, lvl)
	})

	t.Run("Should reject unknown level", func(t *testing.T) {
		_, err := ParseLevel("verbose")
		assert.ErrorContains(t, err, "verbose")
	})
}

func TestNew(t *testing.T) {
	t.Run("Should filter messages below level", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Level: WarnLevel, Output: &buf})

		l.Info("hidden")
		l.Warn("visible", "file", "user.go")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "visible")
		assert.Contains(t, buf.String(), "user.go")
	})

	t.Run("Should write json when configured", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Level: DebugLevel, Output: &buf, JSON: true})

		l.Debug("json message", "n", 1)

		assert.Contains(t, buf.String(), `"msg":"json message"`)
	})

	t.Run("Should discard everything", func(t *testing.T) {
		l := Discard()
		l.Error("nothing")
	})
}
