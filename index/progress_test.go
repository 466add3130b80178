package index

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 25)
	tracker.Start()

	tracker.Update(10)
	assert.Empty(t, buf.String(), "below interval, nothing reported yet")

	tracker.Update(25)
	assert.Contains(t, buf.String(), "25/100")

	tracker.Update(30)
	assert.NotContains(t, buf.String(), "30/100", "interval not crossed again")

	tracker.Finish()
	assert.Contains(t, buf.String(), "100/100")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestProgressTracker_UpdateBeforeStartIgnored(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Update(5)
	tracker.Finish()
	assert.Empty(t, buf.String())
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)
	tracker.Start()

	tracker.Update(50)
	assert.Contains(t, buf.String(), "10/10")
}

func TestProgressTracker_Elapsed(t *testing.T) {
	tracker := NewProgressTracker(&bytes.Buffer{}, 10, 1)
	assert.Zero(t, tracker.Elapsed())

	tracker.Start()
	require.GreaterOrEqual(t, tracker.Elapsed().Nanoseconds(), int64(0))
}
