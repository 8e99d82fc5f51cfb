package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
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

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "debug", entries[0]["level"])
	assert.Equal(t, "test message arg", entries[0]["message"])
	assert.Contains(t, entries[0], "time")
}

func TestDebugAndInfo_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Section("hidden")

	assert.Empty(t, buf.String())
}

func TestSection(t *testing.T) {
	buf := capture(t, true)

	Section("Migration")

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "Migration", entries[0]["section"])
}

func TestSection_Formats(t *testing.T) {
	buf := capture(t, true)

	Section("Migrating %s to %s", "local-1", "remote-2")

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "Migrating local-1 to remote-2", entries[0]["section"])
}

func TestInfo(t *testing.T) {
	buf := capture(t, true)

	Info("count: %d", 3)

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "count: 3", entries[0]["message"])
}

func TestWarn_AlwaysWritten(t *testing.T) {
	buf := capture(t, false)

	Warn("skipping %s", "ad1")

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "skipping ad1", entries[0]["message"])
}

func TestLogger_StructuredFields(t *testing.T) {
	buf := capture(t, false)

	l := Logger()
	l.Warn().Str("kind", "profile").Str("local_id", "p1").Msg("create failed")

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "profile", entries[0]["kind"])
	assert.Equal(t, "p1", entries[0]["local_id"])
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, true)
	SetOutput(&bytes.Buffer{})

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%5 == 0 {
				SetVerbose(n%2 == 0)
			}
			Debug("message %d", n)
			Warn("warning %d", n)
			_ = IsVerbose()
		}(i)
	}
	wg.Wait()
}
