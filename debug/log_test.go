package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDisabledWritesNothing(t *testing.T) {
	Disable()
	assert.False(t, Enabled())
	Log("test", "ignored %d", 1)
	LogEvery(1, "test", "ignored")
}

func TestEnableAtWritesLines(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "logs", "debug.log")

	require.NoError(EnableAt(path))
	t.Cleanup(Disable)
	assert.True(Enabled())

	Log("seq", "bar %d -> %d", 1, 2)
	for i := 0; i < 5; i++ {
		LogEvery(2, "output", "SetCV: %v", "port gone")
	}
	Disable()

	data, err := os.ReadFile(path)
	require.NoError(err)
	out := string(data)

	assert.Contains(out, "Debug logging started")
	assert.Contains(out, "seq")
	assert.Contains(out, "bar 1 -> 2")
	assert.Equal(3, strings.Count(out, "SetCV: port gone"))
	assert.Contains(out, "(every 2, count=5)")
}

func TestEnableAtTruncates(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(os.WriteFile(path, []byte("old contents\n"), 0644))

	require.NoError(EnableAt(path))
	Disable()

	data, err := os.ReadFile(path)
	require.NoError(err)
	assert.NotContains(t, string(data), "old contents")
}
