package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONLinesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLinesLogRecorder(&buf, "session-1")

	assert.NoError(t, log.RecordCommandRun([]string{"echo", "hi"}, false))
	assert.NoError(t, log.RecordJobFinished(42, 1, false))
	assert.NoError(t, log.RecordTimeoutFired(42, 10))
	assert.NoError(t, log.RecordBackgroundStarted(43))
	assert.NoError(t, log.RecordInvalidPipeline([]string{"|", "wc"}, errors.New("invalid pipe command")))

	assert.Equal(t, 5, strings.Count(buf.String(), "\n"), "one JSON object per line")

	var entries []*LogEntry
	assert.NoError(t, ReadJSONLinesLog(&buf, func(le *LogEntry) {
		entries = append(entries, le)
	}))

	if assert.Len(t, entries, 5) {
		assert.Equal(t, "session-1", entries[0].SessionID)
		assert.NotZero(t, entries[0].TimestampMicros)

		assert.Equal(t, []string{"echo", "hi"}, entries[0].CommandRun.Tokens)
		assert.Equal(t, 42, entries[1].JobFinished.Pgid)
		assert.Equal(t, 1, entries[1].JobFinished.Status)
		assert.Equal(t, 10, entries[2].TimeoutFired.Seconds)
		assert.Equal(t, 43, entries[3].BackgroundStarted.Pid)
		assert.Equal(t, "invalid pipe command", entries[4].InvalidPipeline.Error)
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()

	assert.NoError(t, log.RecordCommandRun([]string{"ls"}, true))
}

func TestReadJSONLinesLogBadInput(t *testing.T) {
	err := ReadJSONLinesLog(strings.NewReader("not json"), func(le *LogEntry) {})

	assert.Error(t, err)
}
