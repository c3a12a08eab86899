package pipeline

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// pipePair is one OS-level pipe. Both ends are owned by the orchestrating
// process until every stage has been spawned, then closed; a descriptor left
// open here would keep downstream readers from ever seeing EOF.
type pipePair struct {
	r *os.File
	w *os.File
}

func (p pipePair) close() {
	p.r.Close()
	p.w.Close()
}

// Job is the record of one launched pipeline: the per-stage process handles,
// the process group they share, and the statuses collected by Wait.
type Job struct {
	cmds     []*exec.Cmd // nil for stages that never launched
	statuses []int       // pre-filled with 1 for stages that never launched
	pgid     int
	pipes    []pipePair // closed once spawning is done; kept for tests
}

// Start launches every stage of the pipeline wired through N-1 freshly
// created pipes and returns without waiting. Pipe creation failure aborts
// with zero processes spawned. A stage that cannot be launched (bad
// redirection target, unresolvable program) is reported and recorded with
// status 1; its sibling stages still run and observe end-of-input or a
// broken pipe, never a coordinated abort. All stages are placed in a single
// process group led by the first stage spawned.
func Start(stages []Stage, stdio Stdio) (*Job, error) {
	n := len(stages)
	if n == 0 {
		return nil, errors.New("empty pipeline")
	}

	job := &Job{
		cmds:     make([]*exec.Cmd, n),
		statuses: make([]int, n),
	}

	// Create the pipes up front. The single-stage fast path creates none.
	job.pipes = make([]pipePair, n-1)
	for i := range job.pipes {
		r, w, err := os.Pipe()
		if err != nil {
			for _, p := range job.pipes[:i] {
				p.close()
			}
			return nil, fmt.Errorf("pipe: %w", err)
		}
		job.pipes[i] = pipePair{r: r, w: w}
	}

	for i, stage := range stages {
		stageIO := stdio
		if i > 0 {
			stageIO.In = job.pipes[i-1].r
		}
		if i < n-1 {
			stageIO.Out = job.pipes[i].w
		}

		cmd, files, err := stage.Command(stageIO)
		if err != nil {
			fmt.Fprintln(stdio.Err, err)
			job.statuses[i] = 1
			continue
		}

		// First launched stage leads the group, the rest join it.
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: job.pgid}

		err = cmd.Start()
		for _, fd := range files {
			fd.Close()
		}
		if err != nil {
			fmt.Fprintln(stdio.Err, err)
			job.statuses[i] = 1
			continue
		}

		if job.pgid == 0 {
			job.pgid = cmd.Process.Pid
		}
		job.cmds[i] = cmd
	}

	// The orchestrating process never touches pipeline data itself: release
	// every pipe end now that the children hold their own descriptors.
	for _, p := range job.pipes {
		p.close()
	}

	return job, nil
}

// Pgid returns the process group shared by the job's stages, or 0 if no
// stage was successfully launched.
func (j *Job) Pgid() int {
	return j.pgid
}

// Interrupt sends SIGINT to the job's process group. Safe to call after the
// job has already exited.
func (j *Job) Interrupt() {
	if j.pgid > 0 {
		_ = syscall.Kill(-j.pgid, syscall.SIGINT)
	}
}

// Wait blocks until every stage has terminated and returns the final stage's
// exit status along with whether it was killed by a signal.
func (j *Job) Wait() (status int, signaled bool) {
	last := len(j.cmds) - 1
	status = j.statuses[last]

	for i, cmd := range j.cmds {
		if cmd == nil {
			continue
		}
		st, sig := exitStatus(cmd.Wait())
		j.statuses[i] = st
		if i == last {
			status, signaled = st, sig
		}
	}
	return status, signaled
}

// exitStatus maps a Wait error onto shell exit-status conventions.
func exitStatus(err error) (status int, signaled bool) {
	if err == nil {
		return 0, false
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				return 128 + int(ws.Signal()), true
			}
			return ws.ExitStatus(), false
		}
	}
	return 1, false
}
