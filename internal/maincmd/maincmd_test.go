package maincmd_test

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-thread/internal/maincmd"
)

func run(args ...string) (mainer.ExitCode, string, string) {
	var out, errOut bytes.Buffer
	var c maincmd.Cmd
	code := c.Main(append([]string{"hioload-thread"}, args...), mainer.Stdio{Stdout: &out, Stderr: &errOut})
	return code, out.String(), errOut.String()
}

func TestHelpAndVersion(t *testing.T) {
	code, out, _ := run("--help")
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out, "usage: hioload-thread")

	code, out, _ = run("-v")
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out, "hioload-thread")
}

func TestInvalidArgs(t *testing.T) {
	code, _, errOut := run()
	assert.Equal(t, mainer.InvalidArgs, code)
	assert.Contains(t, errOut, "no command specified")

	code, _, errOut = run("frobnicate")
	assert.Equal(t, mainer.InvalidArgs, code)
	assert.Contains(t, errOut, "unknown command: frobnicate")

	code, _, errOut = run("--thread-name", "x", "caps")
	assert.Equal(t, mainer.InvalidArgs, code)
	assert.Contains(t, errOut, "invalid flag 'thread-name'")

	code, _, errOut = run("--backend", "beos", "caps")
	assert.Equal(t, mainer.InvalidArgs, code)
	assert.Contains(t, errOut, "unknown backend")
}

func TestCaps(t *testing.T) {
	code, out, errOut := run("--backend", "win32", "caps")
	assert.Equal(t, mainer.Success, code, errOut)
	assert.Contains(t, out, "backend:         win32")
	assert.Contains(t, out, "cancel:          forceful")
	assert.Contains(t, out, "exit code only:  true")
	assert.Contains(t, out, "platform.cpus:")
}

func TestSpawnWin32(t *testing.T) {
	code, out, errOut := run("--backend", "win32", "-n", "3", "-d", "1ms", "spawn")
	assert.Equal(t, mainer.Success, code, errOut)
	assert.Contains(t, out, "thread(1) -> 0")
	assert.Contains(t, out, "thread(3) -> 2")
	assert.Contains(t, out, "threads.created=3")
	assert.Contains(t, out, "threads.joined=3")
}

func TestSpawnDefault(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("covered by the win32 variant")
	}
	code, out, errOut := run("-n", "2", "spawn")
	if code == mainer.Failure && errOut != "" {
		// platforms without a native backend report the creation failure
		assert.Contains(t, errOut, "create thread 0")
		return
	}
	assert.Equal(t, mainer.Success, code, errOut)
	assert.Contains(t, out, "thread(2) -> 1")
	assert.Contains(t, out, "threads.joined=2")
}

func TestName(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("thread names are read back from the OS on linux only")
	}
	code, out, errOut := run("--thread-name", "cli-worker", "name")
	assert.Equal(t, mainer.Success, code, errOut)
	assert.Contains(t, out, "outside: cli-worker")
	assert.Contains(t, out, "inside:  cli-worker")
}
