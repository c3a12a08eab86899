// Package logger is a standardized event logging framework for shell
// sessions. Events are recorded as newline delimited JSON objects so session
// logs can be inspected and replayed by external tooling.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures the interaction events of one shell session.
type Logger struct {
	SessionID string
	Record    LogRecorder
}

// NewJSONLinesLogRecorder creates a Logger that exports events in newline
// delimited JSON object format.
func NewJSONLinesLogRecorder(w io.Writer, sessionID string) *Logger {
	return &Logger{
		SessionID: sessionID,
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// NewNopLogger creates a Logger that discards all events.
func NewNopLogger() *Logger {
	return &Logger{Record: func(le *LogEntry) error { return nil }}
}

// LogEntry is a single session event. Exactly one event field is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	CommandRun        *CommandRun        `json:"command_run,omitempty"`
	JobFinished       *JobFinished       `json:"job_finished,omitempty"`
	TimeoutFired      *TimeoutFired      `json:"timeout_fired,omitempty"`
	BackgroundStarted *BackgroundStarted `json:"background_started,omitempty"`
	InvalidPipeline   *InvalidPipeline   `json:"invalid_pipeline,omitempty"`
}

// CommandRun records one command line accepted by the shell.
type CommandRun struct {
	Tokens     []string `json:"tokens"`
	Background bool     `json:"background,omitempty"`
}

// JobFinished records the completion of a foreground job.
type JobFinished struct {
	Pgid     int  `json:"pgid"`
	Status   int  `json:"status"`
	Signaled bool `json:"signaled,omitempty"`
}

// TimeoutFired records the watchdog interrupting a foreground job.
type TimeoutFired struct {
	Pgid    int `json:"pgid"`
	Seconds int `json:"seconds"`
}

// BackgroundStarted records a job launched with a trailing "&".
type BackgroundStarted struct {
	Pid int `json:"pid"`
}

// InvalidPipeline records a command line rejected before anything spawned.
type InvalidPipeline struct {
	Tokens []string `json:"tokens"`
	Error  string   `json:"error"`
}

func (l *Logger) record(le *LogEntry) error {
	le.TimestampMicros = time.Now().UnixMicro()
	le.SessionID = l.SessionID
	return l.Record(le)
}

func (l *Logger) RecordCommandRun(tokens []string, background bool) error {
	return l.record(&LogEntry{CommandRun: &CommandRun{Tokens: tokens, Background: background}})
}

func (l *Logger) RecordJobFinished(pgid, status int, signaled bool) error {
	return l.record(&LogEntry{JobFinished: &JobFinished{Pgid: pgid, Status: status, Signaled: signaled}})
}

func (l *Logger) RecordTimeoutFired(pgid, seconds int) error {
	return l.record(&LogEntry{TimeoutFired: &TimeoutFired{Pgid: pgid, Seconds: seconds}})
}

func (l *Logger) RecordBackgroundStarted(pid int) error {
	return l.record(&LogEntry{BackgroundStarted: &BackgroundStarted{Pid: pid}})
}

func (l *Logger) RecordInvalidPipeline(tokens []string, err error) error {
	return l.record(&LogEntry{InvalidPipeline: &InvalidPipeline{Tokens: tokens, Error: err.Error()}})
}

// ReadJSONLinesLog parses a newline delimited JSON session log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}
		handler(&logEntry)
	}
	return nil
}
