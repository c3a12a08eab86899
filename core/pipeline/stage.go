package pipeline

import (
	"errors"
	"os"
	"os/exec"
)

// OutputFileMode is the permission for files created by output redirection.
const OutputFileMode = 0644

// ErrMissingCommand is reported for a stage with no program left after its
// redirection tokens are removed, e.g. "> file".
var ErrMissingCommand = errors.New("missing command")

// Redirect is a single parsed redirection directive.
type Redirect struct {
	Kind string // TokRedirectIn or TokRedirectOut
	File string
}

// SplitRedirect scans the stage left to right for the first redirection
// token and returns the argument vector truncated there. Only the first
// redirection is honored regardless of kind; a redirection token with no
// following file name is left in the argument vector untouched.
func (s Stage) SplitRedirect() (argv []string, redir *Redirect) {
	for i, tok := range s {
		if (tok == TokRedirectOut || tok == TokRedirectIn) && i+1 < len(s) {
			return s[:i], &Redirect{Kind: tok, File: s[i+1]}
		}
	}
	return s, nil
}

// Command prepares the OS process for one stage. The stage's redirection, if
// any, overrides the corresponding stream in stdio; output files are
// truncated or created with OutputFileMode. The returned files are the
// opened redirection targets, owned by the caller and closed once the
// process has been started. The program is resolved via PATH and inherits
// the current environment.
func (s Stage) Command(stdio Stdio) (*exec.Cmd, []*os.File, error) {
	argv, redir := s.SplitRedirect()
	if len(argv) == 0 {
		return nil, nil, ErrMissingCommand
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err

	var files []*os.File
	if redir != nil {
		switch redir.Kind {
		case TokRedirectOut:
			fd, err := os.OpenFile(redir.File, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, OutputFileMode)
			if err != nil {
				return nil, nil, err
			}
			cmd.Stdout = fd
			files = append(files, fd)

		case TokRedirectIn:
			fd, err := os.Open(redir.File)
			if err != nil {
				return nil, nil, err
			}
			cmd.Stdin = fd
			files = append(files, fd)
		}
	}

	return cmd, files, nil
}
