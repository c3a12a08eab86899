// Package job supervises pipeline execution: it tracks the single current
// foreground job, races it against a timeout watchdog, and forwards
// interrupt signals to it.
package job

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"pipesh/core/logger"
	"pipesh/core/pipeline"
)

// foregroundPgid is the process group of the currently-running foreground
// job, or 0. This single word is the only state shared between the
// asynchronous signal path and normal execution, so it is only ever touched
// with atomic loads and stores.
var foregroundPgid atomic.Int64

// Register records pgid as the current foreground job.
func Register(pgid int) { foregroundPgid.Store(int64(pgid)) }

// Clear resets the foreground registration to the empty sentinel.
func Clear() { foregroundPgid.Store(0) }

// Foreground returns the registered foreground process group, or 0.
func Foreground() int { return int(foregroundPgid.Load()) }

// HandleInterrupts installs the SIGINT forwarder: an interrupt delivered to
// the shell is passed on to the foreground job's process group, if any, and
// swallowed otherwise so the shell itself survives. The returned function
// uninstalls the forwarder.
func HandleInterrupts() (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT)

	go func() {
		for range ch {
			if pgid := Foreground(); pgid > 0 {
				_ = syscall.Kill(-pgid, syscall.SIGINT)
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(ch)
	}
}

// Supervisor runs pipelines in the foreground or background with a fixed
// wall-clock timeout on foreground jobs.
type Supervisor struct {
	Timeout time.Duration
	Stdout  io.Writer
	Stderr  io.Writer
	Log     *logger.Logger
}

// Run executes a foreground pipeline to completion and returns its exit
// status. The job is registered for interrupt forwarding, raced against the
// timeout watchdog, and unregistered once it has been reaped. A job killed
// by a signal is the expected outcome of a timeout or Ctrl+C and is not
// reported as an error; a normal non-zero exit is.
func (s *Supervisor) Run(stages []pipeline.Stage, stdio pipeline.Stdio) int {
	j, err := pipeline.Start(stages, stdio)
	if err != nil {
		fmt.Fprintln(s.Stderr, err)
		return 1
	}

	pgid := j.Pgid()
	Register(pgid)

	// Watchdog: sleeps for the timeout and interrupts the job if it is
	// still the registered foreground job when the timer fires.
	seconds := int(s.Timeout / time.Second)
	timer := time.NewTimer(s.Timeout)
	finished := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-timer.C:
			if pgid == 0 || Foreground() != pgid {
				return
			}
			fmt.Fprintf(s.Stdout, "Foreground process timed out after %d seconds.\n", seconds)
			s.Log.RecordTimeoutFired(pgid, seconds)
			j.Interrupt()
		case <-finished:
		}
	}()

	status, signaled := j.Wait()

	// Stop the watchdog and wait for it so it cannot fire after the fact.
	// Stopping is idempotent against a watchdog that already fired; the
	// race between the job's natural exit and the timer is tolerated.
	close(finished)
	timer.Stop()
	<-stopped
	Clear()

	if !signaled && status != 0 {
		fmt.Fprintf(s.Stderr, "Process exited with status %d\n", status)
	}
	s.Log.RecordJobFinished(pgid, status, signaled)
	return status
}

// RunBackground launches the pipeline without waiting and announces its
// process ID. The registration is cleared so a later Ctrl+C cannot reach the
// backgrounded job. The job's handles are never reaped.
func (s *Supervisor) RunBackground(stages []pipeline.Stage, stdio pipeline.Stdio) int {
	j, err := pipeline.Start(stages, stdio)
	if err != nil {
		fmt.Fprintln(s.Stderr, err)
		return 1
	}

	Clear()
	fmt.Fprintf(s.Stdout, "[%d] Background process started\n", j.Pgid())
	s.Log.RecordBackgroundStarted(j.Pgid())
	return 0
}
