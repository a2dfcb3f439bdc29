package launch

import (
	"os"
	"testing"

	"github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeProcessName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "screenpipe", normalizeProcessName(" Screenpipe.EXE "))
	assert.Equal(t, "screenpipe", normalizeProcessName("screenpipe"))
	assert.Empty(t, normalizeProcessName("  "))
}

func TestRecorderRunningFindsCurrentProcess(t *testing.T) {
	t.Parallel()
	self, err := process.NewProcess(int32(os.Getpid()))
	require.NoError(t, err)
	name, err := self.Name()
	require.NoError(t, err)

	ok, err := RecorderRunning(name)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = RecorderRunning("definitely-not-a-running-process-4821")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = RecorderRunning("")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecorderProbe(t *testing.T) {
	t.Parallel()
	assert.False(t, RecorderProbe("definitely-not-a-running-process-4821", nil)())
}

func TestBrowserCommand(t *testing.T) {
	t.Parallel()
	name, args := browserCommand("windows", "http://127.0.0.1:3000")
	assert.Equal(t, "rundll32", name)
	assert.Equal(t, []string{"url.dll,FileProtocolHandler", "http://127.0.0.1:3000"}, args)

	name, _ = browserCommand("darwin", "http://x")
	assert.Equal(t, "open", name)
	name, _ = browserCommand("linux", "http://x")
	assert.Equal(t, "xdg-open", name)
}
