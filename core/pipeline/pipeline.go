// Package pipeline splits tokenized command lines into stages and runs them
// as pipe-connected OS processes.
package pipeline

import (
	"errors"
	"io"
)

// Tokens with special meaning at the stage level. A trailing TokBackground on
// the whole line is handled by the caller before Split sees the tokens.
const (
	TokPipe        = "|"
	TokRedirectIn  = "<"
	TokRedirectOut = ">"
	TokBackground  = "&"
)

// ErrInvalidPipe is reported when a pipe symbol borders an empty stage
// (leading pipe, trailing pipe, or two pipes in a row).
var ErrInvalidPipe = errors.New("invalid pipe command")

// Stage is one program invocation within a pipeline: the program name, its
// arguments, and any redirection directives still inline.
type Stage []string

// Stdio holds the standard streams a pipeline inherits from the shell.
// Stage redirections and pipe wiring override individual streams.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Split partitions a flat token sequence into pipeline stages on TokPipe.
// Any empty stage rejects the whole pipeline before anything is spawned.
func Split(tokens []string) ([]Stage, error) {
	var stages []Stage
	var current Stage

	for _, tok := range tokens {
		if tok == TokPipe {
			if len(current) == 0 {
				return nil, ErrInvalidPipe
			}
			stages = append(stages, current)
			current = nil
			continue
		}
		current = append(current, tok)
	}

	if len(current) == 0 {
		return nil, ErrInvalidPipe
	}
	return append(stages, current), nil
}
