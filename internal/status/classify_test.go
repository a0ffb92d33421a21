package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbichler/pulse/internal/models"
)

func windowWith(kind models.ActivityKind, age time.Duration, now time.Time) []models.Activity {
	act := models.Activity{
		Timestamp:   now.Add(-age),
		Kind:        kind,
		Description: "Tool: read",
		Details:     "Datei: /a.txt",
	}
	return []models.Activity{act}
}

func TestClassify_ThresholdBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		want models.AgentStatus
	}{
		{"59.9s is active", 59*time.Second + 900*time.Millisecond, models.StatusActive},
		{"60.0s is waiting", 60 * time.Second, models.StatusWaiting},
		{"299.9s is waiting", 299*time.Second + 900*time.Millisecond, models.StatusWaiting},
		{"300.0s is idle", 300 * time.Second, models.StatusIdle},
		{"an hour is idle", time.Hour, models.StatusIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(windowWith(models.ActivityToolCall, tt.age, now), now)
			assert.Equal(t, tt.want, cls.Status)
		})
	}
}

func TestClassify_EmptyWindow(t *testing.T) {
	now := time.Now()
	cls := Classify(nil, now)
	assert.Equal(t, models.StatusIdle, cls.Status)
	assert.Nil(t, cls.CurrentTask)
}

func TestClassify_CurrentTaskFromToolCall(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cls := Classify(windowWith(models.ActivityToolCall, 10*time.Second, now), now)

	assert.Equal(t, models.StatusActive, cls.Status)
	require.NotNil(t, cls.CurrentTask)
	assert.Equal(t, "Tool: read — Datei: /a.txt", *cls.CurrentTask)
}

func TestClassify_CurrentTaskFromResponse(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cls := Classify(windowWith(models.ActivityResponse, 10*time.Second, now), now)

	require.NotNil(t, cls.CurrentTask)
	assert.Equal(t, "composing reply", *cls.CurrentTask)
}

func TestClassify_NoCurrentTaskForUserMessage(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cls := Classify(windowWith(models.ActivityUserMessage, 10*time.Second, now), now)

	assert.Equal(t, models.StatusActive, cls.Status)
	assert.Nil(t, cls.CurrentTask)
}

func TestClassify_NoCurrentTaskOutsideActive(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	cls := Classify(windowWith(models.ActivityToolCall, 2*time.Minute, now), now)
	assert.Equal(t, models.StatusWaiting, cls.Status)
	assert.Nil(t, cls.CurrentTask)

	cls = Classify(windowWith(models.ActivityToolCall, 10*time.Minute, now), now)
	assert.Equal(t, models.StatusIdle, cls.Status)
	assert.Nil(t, cls.CurrentTask)
}
