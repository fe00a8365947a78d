package internal

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestNewLoggerFormat(t *testing.T) {
	buf := captureLog(t)

	NewLogger(LogLevelInfo).WithName("Session").Info("column renamed", "from", "city", "to", "location")
	assert.Contains(t, buf.String(), "[Session]")
	assert.Contains(t, buf.String(), `"msg"="column renamed"`)
	assert.Contains(t, buf.String(), `"to"="location"`)
}

func TestNewLoggerVerbosity(t *testing.T) {
	buf := captureLog(t)

	NewLogger(LogLevelInfo).V(1).Info("hidden")
	assert.Empty(t, buf.String())

	NewLogger(LogLevelDebug).V(1).Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestErrorLevelOnlyPrintsErrors(t *testing.T) {
	buf := captureLog(t)
	l := NewLogger(LogLevelError)

	l.Info("routine")
	assert.Empty(t, buf.String())

	l.Error(errors.New("boom"), "export failed")
	assert.Contains(t, buf.String(), "boom")
}
