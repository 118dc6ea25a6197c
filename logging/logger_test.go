package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Logger = (*StructuredLogger)(nil)
	_ Logger = NoOpLogger{}
	_ Logger = (*SlogAdapter)(nil)
)

func newJSONLogger(buf *bytes.Buffer, level LogLevel) *StructuredLogger {
	return NewLogger(&LoggerConfig{Level: level, Format: "json", Output: buf})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, LogLevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown", "k", 1)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
	assert.EqualValues(t, 1, lines[0]["k"])
}

func TestStructuredLogger_ScopedAttributes(t *testing.T) {
	var buf bytes.Buffer
	base := newJSONLogger(&buf, LogLevelDebug)
	scoped := base.WithComponent("critic").WithSession("sess-1").WithContext("provider", "groq")

	scoped.Info("hello")
	base.Info("plain")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "critic", lines[0]["component"])
	assert.Equal(t, "sess-1", lines[0]["session_id"])
	assert.Equal(t, "groq", lines[0]["provider"])
	assert.NotContains(t, lines[1], "component")
}

func TestStructuredLogger_DomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, LogLevelDebug)

	LogLLMCall(l, "llama", 10*time.Millisecond, nil)
	LogStage(l, "generator", 2, time.Millisecond, errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "LLM call completed", lines[0]["msg"])
	assert.Equal(t, "Stage execution failed", lines[1]["msg"])
	assert.Equal(t, "boom", lines[1]["error"])
	assert.Equal(t, "ERROR", lines[1]["level"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"", LogLevelInfo, false},
		{"WARN", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"verbose", LogLevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
