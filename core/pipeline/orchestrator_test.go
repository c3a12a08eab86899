package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testStdio() (Stdio, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return Stdio{In: strings.NewReader(""), Out: &out, Err: &errOut}, &out, &errOut
}

func TestStartSingleStage(t *testing.T) {
	stdio, out, _ := testStdio()

	j, err := Start([]Stage{{"echo", "hello"}}, stdio)
	assert.NoError(t, err)

	status, signaled := j.Wait()

	assert.Equal(t, 0, status)
	assert.False(t, signaled)
	assert.Equal(t, "hello\n", out.String())
	assert.Empty(t, j.pipes, "single-stage pipelines create no pipes")
}

func TestStartPipeline(t *testing.T) {
	stdio, out, _ := testStdio()

	stages := []Stage{{"echo", "hello"}, {"tr", "a-z", "A-Z"}}
	j, err := Start(stages, stdio)
	assert.NoError(t, err)
	assert.Len(t, j.pipes, len(stages)-1)

	status, signaled := j.Wait()

	assert.Equal(t, 0, status)
	assert.False(t, signaled)
	assert.Equal(t, "HELLO\n", out.String())
}

func TestStartClosesAllPipeEnds(t *testing.T) {
	stdio, _, _ := testStdio()

	j, err := Start([]Stage{{"echo", "a"}, {"cat"}, {"cat"}}, stdio)
	assert.NoError(t, err)
	j.Wait()

	// Both ends of every pipe must already be closed in the orchestrating
	// process, otherwise downstream stages could never have seen EOF.
	for _, p := range j.pipes {
		assert.Error(t, p.r.Close(), "read end still open")
		assert.Error(t, p.w.Close(), "write end still open")
	}
}

func TestStartSharesOneProcessGroup(t *testing.T) {
	stdio, _, _ := testStdio()

	j, err := Start([]Stage{{"echo", "a"}, {"cat"}}, stdio)
	assert.NoError(t, err)
	defer j.Wait()

	assert.NotZero(t, j.Pgid())
	assert.Equal(t, j.cmds[0].Process.Pid, j.Pgid())
}

func TestStartUnresolvableProgram(t *testing.T) {
	stdio, _, errOut := testStdio()

	j, err := Start([]Stage{{"definitely-not-a-real-program-xyz"}}, stdio)
	assert.NoError(t, err)

	status, signaled := j.Wait()

	assert.Equal(t, 1, status)
	assert.False(t, signaled)
	assert.Contains(t, errOut.String(), "definitely-not-a-real-program-xyz")
}

func TestStartBadRedirectDoesNotAbortSiblings(t *testing.T) {
	stdio, out, errOut := testStdio()
	missing := filepath.Join(t.TempDir(), "nope")

	// The first stage never launches; the second sees EOF and still runs.
	stages := []Stage{{"cat", "<", missing}, {"wc", "-c"}}
	j, err := Start(stages, stdio)
	assert.NoError(t, err)

	status, signaled := j.Wait()

	assert.Equal(t, 0, status, "last stage exits cleanly")
	assert.False(t, signaled)
	assert.Equal(t, 1, j.statuses[0])
	assert.Contains(t, errOut.String(), "nope")
	assert.Equal(t, "0", strings.TrimSpace(out.String()))
}

func TestOutputRedirectOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	run := func(text string) {
		stdio, _, _ := testStdio()
		j, err := Start([]Stage{{"echo", text, ">", path}}, stdio)
		assert.NoError(t, err)
		status, _ := j.Wait()
		assert.Equal(t, 0, status)
	}

	run("first first first")
	run("second")

	contents, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "second\n", string(contents))
}

func TestInputRedirect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	assert.NoError(t, os.WriteFile(path, []byte("b\na\n"), 0644))

	stdio, out, _ := testStdio()
	j, err := Start([]Stage{{"sort", "<", path}}, stdio)
	assert.NoError(t, err)

	status, _ := j.Wait()

	assert.Equal(t, 0, status)
	assert.Equal(t, "a\nb\n", out.String())
}

func TestWaitReportsLastStageStatus(t *testing.T) {
	stdio, _, _ := testStdio()

	j, err := Start([]Stage{{"echo", "hi"}, {"false"}}, stdio)
	assert.NoError(t, err)

	status, signaled := j.Wait()

	assert.Equal(t, 1, status)
	assert.False(t, signaled)
}

func TestStartEmptyPipeline(t *testing.T) {
	stdio, _, _ := testStdio()

	j, err := Start(nil, stdio)

	assert.Error(t, err)
	assert.Nil(t, j)
}
