package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFileLifecycle(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "run", "focuslog.pid"))

	pid, err := d.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, 0, pid)

	require.NoError(t, d.WritePID())
	pid, err = d.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	running, runningPID, err := d.IsRunning()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), runningPID)

	require.NoError(t, d.RemovePID())
	require.NoError(t, d.RemovePID())
	_, err = os.Stat(d.PIDFile())
	assert.True(t, os.IsNotExist(err))
}

func TestReadPIDInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))

	_, err := New(path).ReadPID()
	assert.ErrorContains(t, err, "invalid PID")
}

func TestIsRunningRemovesStalePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.pid")
	// PIDs are capped well below this on Linux.
	require.NoError(t, os.WriteFile(path, []byte("999999999\n"), 0644))

	running, _, err := New(path).IsRunning()
	require.NoError(t, err)
	assert.False(t, running)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStopWhenNotRunning(t *testing.T) {
	err := New(filepath.Join(t.TempDir(), "none.pid")).Stop()
	assert.ErrorContains(t, err, "not running")
}

func TestIsChild(t *testing.T) {
	t.Setenv(ChildEnv, "")
	assert.False(t, IsChild())
	t.Setenv(ChildEnv, "1")
	assert.True(t, IsChild())
}
