package execution

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/devtask/pkg/config"
	"github.com/blairham/devtask/pkg/logging"
)

func TestLogTiming(t *testing.T) {
	t.Setenv(logging.EnvLogLevel, "")

	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })

	logging.Configure("debug")
	t.Cleanup(func() { logging.Configure("") })

	LogTiming("hook collection", time.Now())
	assert.Contains(t, buf.String(), "[TIMING] hook collection")
	assert.Contains(t, buf.String(), "component=hook")

	buf.Reset()
	logging.Configure("warn")
	LogTiming("hook collection", time.Now())
	assert.Empty(t, buf.String())
	assert.Equal(t, logrus.WarnLevel, logging.Level())
}

func TestPassedAndCounts(t *testing.T) {
	results := []Result{
		{Hook: config.Hook{ID: "a"}, Success: true},
		{Hook: config.Hook{ID: "b"}, Success: true, Skipped: true},
	}
	assert.True(t, Passed(results))
	assert.True(t, Passed(nil))

	results = append(results,
		Result{Hook: config.Hook{ID: "c"}},
		NotRunResult(config.Hook{ID: "d"}),
	)
	assert.False(t, Passed(results))

	passed, failed, skipped, notRun := Counts(results)
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, notRun)
}

func TestSnapshot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.py"), []byte("y = 2\n"), 0o644))

	files := []string{"a.py", "b.py", "missing.py"}
	before := TakeSnapshot(root, files)

	assert.Empty(t, before.Changed(TakeSnapshot(root, files)))

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.py"), []byte("y = 3\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "missing.py"), []byte(""), 0o644))

	assert.Equal(t, []string{"b.py", "missing.py"}, before.Changed(TakeSnapshot(root, files)))
}
