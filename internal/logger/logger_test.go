package logger

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("test message %s", "arg")

	assert.Equal(t, "[DEBUG] test message arg\n", buf.String())
}

func TestDebugAndInfo_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Section("hidden")

	assert.Empty(t, buf.String())
}

func TestWarnAndError_AlwaysWritten(t *testing.T) {
	buf := capture(t, false)

	Warn("source %s degraded", "BBC")
	Error("run failed")

	assert.Equal(t, "[WARN] source BBC degraded\n[ERROR] run failed\n", buf.String())
}

func TestInfo_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Info("collected %d items", 3)

	assert.Equal(t, "[INFO] collected 3 items\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := capture(t, true)

	Section("Collecting")

	assert.Equal(t, "\n=== Collecting ===\n", buf.String())
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, true)
	SetOutput(io.Discard)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			Info("message %d", n)
		}(i)
		go func(n int) {
			defer wg.Done()
			SetVerbose(n%2 == 0)
		}(i)
	}
	wg.Wait()
}
