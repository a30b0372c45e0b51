//go:build unix

package worker_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/ghostpeony/sidecar/internal/execution/worker"
	"github.com/ghostpeony/sidecar/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWorker_Start_IsAlive(t *testing.T) {
	w, err := worker.Start(context.Background(), worker.StartConfig{
		Cmd:  "sleep",
		Args: []string{"10"},
	}, zap.NewNop())
	require.NoError(t, err)

	defer w.Kill()

	pid := w.Pid()
	require.NotZero(t, pid, "pid should be set after Start")
	assert.NotEmpty(t, w.ID())

	alive, err := w.Alive()
	assert.NoError(t, err)
	assert.True(t, alive)

	require.Eventually(t, func() bool {
		return util.IsProcessAlive(pid)
	}, 2*time.Second, 10*time.Millisecond, "process never reported alive")
}

func TestWorker_Start_ReturnsErrorIfInvalidCommand(t *testing.T) {
	_, err := worker.Start(context.Background(), worker.StartConfig{Cmd: ""}, zap.NewNop())
	assert.ErrorIs(t, err, worker.ErrInvalidCommand)
}

func TestWorker_Start_ReturnsErrorIfExecutableMissing(t *testing.T) {
	_, err := worker.Start(context.Background(), worker.StartConfig{
		Cmd: "sidecar-test-binary-that-does-not-exist",
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestWorker_Start_ReturnsErrorIfCwdMissing(t *testing.T) {
	_, err := worker.Start(context.Background(), worker.StartConfig{
		Cmd:  "sleep",
		Args: []string{"1"},
		Cwd:  "/sidecar/test/dir/does/not/exist",
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestWorker_Start_FailsIfContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := worker.Start(ctx, worker.StartConfig{Cmd: "sleep", Args: []string{"10"}}, zap.NewNop())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorker_Start_UsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()

	w, err := worker.Start(context.Background(), worker.StartConfig{
		Cmd:  "sh",
		Args: []string{"-c", "pwd"},
		Cwd:  dir,
	}, zap.NewNop())
	require.NoError(t, err)

	evt, err := w.Wait()
	require.NoError(t, err)

	assert.Contains(t, evt.Stdout, dir)
}

func TestWorker_Start_PassesEnvironment(t *testing.T) {
	w, err := worker.Start(context.Background(), worker.StartConfig{
		Cmd:  "sh",
		Args: []string{"-c", "echo $SIDECAR_TEST_VALUE"},
		Env:  map[string]string{"SIDECAR_TEST_VALUE": "foobar"},
	}, zap.NewNop())
	require.NoError(t, err)

	evt, err := w.Wait()
	require.NoError(t, err)

	assert.Equal(t, "foobar\n", evt.Stdout)
}

func TestWorker_CapturesStderr(t *testing.T) {
	w, err := worker.Start(context.Background(), worker.StartConfig{
		Cmd:  "sh",
		Args: []string{"-c", ">&2 echo \"error\""},
	}, zap.NewNop())
	require.NoError(t, err)

	evt, err := w.Wait()
	require.NoError(t, err)

	assert.Equal(t, 0, *evt.Code)
	assert.Equal(t, "error\n", evt.Stderr)
}

func TestWorker_Alive_FalseAfterExit(t *testing.T) {
	w, err := worker.Start(context.Background(), worker.StartConfig{Cmd: "echo"}, zap.NewNop())
	require.NoError(t, err)

	<-w.Done()

	alive, err := w.Alive()
	assert.NoError(t, err)
	assert.False(t, alive)
}

func TestWorker_Wait_ReturnsExitCode(t *testing.T) {
	w, err := worker.Start(context.Background(), worker.StartConfig{
		Cmd:  "sh",
		Args: []string{"-c", "exit 3"},
	}, zap.NewNop())
	require.NoError(t, err)

	evt, err := w.Wait()
	require.NoError(t, err)

	require.NotNil(t, evt.Code)
	assert.Equal(t, 3, *evt.Code)
	assert.Nil(t, evt.Signal)
}

func TestWorker_Kill_KillsProcess(t *testing.T) {
	w, err := worker.Start(context.Background(), worker.StartConfig{
		Cmd:  "sleep",
		Args: []string{"10"},
	}, zap.NewNop())
	require.NoError(t, err)

	err = w.Kill()
	require.NoError(t, err)

	evt, err := w.Wait()
	require.NoError(t, err)

	require.NotNil(t, evt.Signal)
	assert.Equal(t, syscall.SIGKILL, syscall.Signal(*evt.Signal))
	assert.Nil(t, evt.Code)

	assert.False(t, util.IsProcessAlive(w.Pid()))
}

func TestWorker_Kill_KillsProcessGroup(t *testing.T) {
	w, err := worker.Start(context.Background(), worker.StartConfig{
		Cmd:  "sh",
		Args: []string{"-c", "sleep 10 & wait"},
	}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, w.Kill())

	done := make(chan struct{})
	go func() {
		_, _ = w.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("process group was not killed")
	}
}

func TestWorker_Kill_KillsGroupAfterLeaderExited(t *testing.T) {
	dir := t.TempDir()

	w, err := worker.Start(context.Background(), worker.StartConfig{
		Cmd:  "sh",
		Args: []string{"-c", "sleep 30 >/dev/null 2>&1 & echo $! > child.pid; exit 0"},
		Cwd:  dir,
	}, zap.NewNop())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		alive, err := w.Alive()
		return err == nil && !alive
	}, 5*time.Second, 10*time.Millisecond, "leader never exited")

	raw, err := os.ReadFile(filepath.Join(dir, "child.pid"))
	require.NoError(t, err)

	child, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	require.NoError(t, err)

	require.True(t, util.IsProcessAlive(child), "child should outlive the leader")

	require.NoError(t, w.Kill())

	require.Eventually(t, func() bool {
		return !util.IsProcessAlive(child)
	}, 5*time.Second, 10*time.Millisecond, "child of exited leader was not killed")

	_, err = w.Wait()
	assert.NoError(t, err)
}

func TestWorker_Kill_AfterExitSucceeds(t *testing.T) {
	w, err := worker.Start(context.Background(), worker.StartConfig{Cmd: "echo"}, zap.NewNop())
	require.NoError(t, err)

	_, err = w.Wait()
	require.NoError(t, err)

	assert.NoError(t, w.Kill())
}

func TestWorker_Wait_CanBeCalledRepeatedly(t *testing.T) {
	w, err := worker.Start(context.Background(), worker.StartConfig{Cmd: "echo"}, zap.NewNop())
	require.NoError(t, err)

	first, err := w.Wait()
	require.NoError(t, err)

	second, err := w.Wait()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
