package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, Debug, true)

	t.Run("Info", func(t *testing.T) {
		buf.Reset()
		log.Info("info message", "client", "matrix", "count", 3)
		output := buf.String()
		assert.Contains(t, output, `"message":"info message"`)
		assert.Contains(t, output, `"client":"matrix"`)
		assert.Contains(t, output, `"count":3`)
	})

	t.Run("Error value", func(t *testing.T) {
		buf.Reset()
		log.Error("send failed", "error", errors.New("boom"))
		assert.Contains(t, buf.String(), `"error":"boom"`)
	})

	t.Run("Odd args", func(t *testing.T) {
		buf.Reset()
		log.Debug("odd", "dangling")
		assert.Contains(t, buf.String(), `"dangling":"(no value)"`)
	})
}

func TestZerologLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, Warn, true)

	log.Info("info message")
	assert.Zero(t, buf.Len(), "info should not be logged at Warn level")

	log.Warn("warn message")
	assert.Contains(t, buf.String(), "warn message")

	buf.Reset()
	debug := log.LogMode(Debug)
	debug.Debug("debug message")
	assert.Contains(t, buf.String(), "debug message")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", Debug},
		{"INFO", Info},
		{"Warn", Warn},
		{"warning", Warn},
		{"error", Error},
		{"silent", Silent},
		{"", Info},
		{"bogus", Info},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in, Info), "input %q", tt.in)
	}
}

func TestDiscard(t *testing.T) {
	// Must be safe to call with any arguments.
	Discard.Info("msg", "k", "v")
	Discard.Warn("msg")
	Discard.Error("msg", "k")
	Discard.Debug("msg")
	assert.Equal(t, Discard, Discard.LogMode(Debug))
}
