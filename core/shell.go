// Package core implements the interactive shell: the read-eval loop,
// builtin dispatch, and the hand-off to pipeline execution.
package core

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abiosoft/readline"
	"github.com/anmitsu/go-shlex"
	"github.com/fatih/color"

	"pipesh/core/config"
	"pipesh/core/job"
	"pipesh/core/logger"
	"pipesh/core/pipeline"
)

var promptColor = color.New(color.FgBlue, color.Bold)

type Shell struct {
	Config     *config.Configuration
	Readline   *readline.Instance
	Log        *logger.Logger
	Supervisor *job.Supervisor

	stdio   pipeline.Stdio
	toClose listCloser
	done    bool
}

// NewShell sets up a shell speaking to the process's standard streams, with
// a fresh session log in the configuration directory.
func NewShell(configuration *config.Configuration) (*Shell, error) {
	sessionID := time.Now().Format(time.RFC3339)

	logFd, err := configuration.CreateSessionLog(fmt.Sprintf("%s.log", sessionID))
	if err != nil {
		return nil, err
	}

	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(os.Stdin),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	if err := cfg.Init(); err != nil {
		logFd.Close()
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		logFd.Close()
		return nil, err
	}

	stdio := pipeline.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	log := logger.NewJSONLinesLogRecorder(logFd, sessionID)

	shell := &Shell{
		Config:   configuration,
		Readline: rl,
		Log:      log,
		Supervisor: &job.Supervisor{
			Timeout: configuration.Timeout(),
			Stdout:  stdio.Out,
			Stderr:  stdio.Err,
			Log:     log,
		},
		stdio: stdio,
	}
	shell.toClose = append(shell.toClose, logFd, rl)

	return shell, nil
}

// Prompt renders the working directory followed by the configured prompt.
func (s *Shell) Prompt() string {
	wd, err := os.Getwd()
	if err != nil {
		wd = "?"
	}
	return fmt.Sprintf("%s %s", promptColor.Sprint(wd), s.Config.Prompt)
}

// Run is the shell's main loop. It returns nil once the user exits and an
// error only when the input stream itself fails.
func (s *Shell) Run() error {
	stopSignals := job.HandleInterrupts()
	defer stopSignals()

	for !s.done {
		s.Readline.SetPrompt(s.Prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			// Input closed; mirror what a user typing "exit" would see.
			fmt.Fprintln(s.stdio.Out, "exit")
			return nil

		case err == readline.ErrInterrupt:
			continue // Ctrl+C at the prompt, nothing to interrupt.

		case err != nil:
			return fmt.Errorf("reading input: %w", err)

		case strings.TrimSpace(line) == "":
			continue

		default:
			s.dispatch(line)
		}
	}
	return nil
}

// dispatch tokenizes one line and runs it as a builtin or a pipeline.
func (s *Shell) dispatch(line string) {
	tokens, err := shlex.Split(line, true)
	if err != nil {
		fmt.Fprintf(s.stdio.Err, "pipesh: syntax error: %v\n", err)
		return
	}
	if len(tokens) == 0 {
		return
	}
	if len(tokens) > s.Config.MaxTokens {
		fmt.Fprintln(s.stdio.Err, "pipesh: too many arguments")
		return
	}

	// A trailing "&" marks the whole line, not a stage, for background
	// execution and is stripped before pipeline construction.
	background := false
	if tokens[len(tokens)-1] == pipeline.TokBackground {
		background = true
		tokens = tokens[:len(tokens)-1]
		if len(tokens) == 0 {
			return
		}
	}

	stages, err := pipeline.Split(tokens)
	if err != nil {
		fmt.Fprintln(s.stdio.Err, err)
		s.Log.RecordInvalidPipeline(tokens, err)
		return
	}
	if len(stages) > s.Config.MaxStages {
		fmt.Fprintln(s.stdio.Err, "pipesh: too many pipeline stages")
		return
	}

	s.Log.RecordCommandRun(tokens, background)

	// Builtins operate on the shell's own state, so they run synchronously
	// in this process and only as a simple command.
	if len(stages) == 1 {
		if builtin, ok := AllBuiltins[stages[0][0]]; ok {
			builtin.Main(s, stages[0])
			return
		}
	}

	if background {
		s.Supervisor.RunBackground(stages, s.stdio)
		return
	}
	s.Supervisor.Run(stages, s.stdio)
}

func (s *Shell) Close() error {
	return s.toClose.Close()
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
