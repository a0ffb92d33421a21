package status

import (
	"time"

	"github.com/mbichler/pulse/internal/models"
)

// Fixed classification policy. The boundaries are half-open: an activity
// exactly 60s old is already waiting, exactly 300s old is already idle.
// These values are deliberately not configurable.
const (
	activeThreshold  = 60 * time.Second
	waitingThreshold = 300 * time.Second
)

// composingLabel is the current-task label while the agent is writing a reply.
const composingLabel = "composing reply"

// Classification is the result of classifying an activity window.
type Classification struct {
	Status      models.AgentStatus
	CurrentTask *string
}

// Classify derives the coarse agent state from the time since the most
// recent activity. An empty window classifies as idle.
func Classify(activities []models.Activity, now time.Time) Classification {
	if len(activities) == 0 {
		return Classification{Status: models.StatusIdle}
	}

	latest := activities[0]
	delta := now.Sub(latest.Timestamp)

	switch {
	case delta < activeThreshold:
		return Classification{
			Status:      models.StatusActive,
			CurrentTask: currentTask(latest),
		}
	case delta < waitingThreshold:
		return Classification{Status: models.StatusWaiting}
	default:
		return Classification{Status: models.StatusIdle}
	}
}

// currentTask labels what the agent is doing right now, derived from the
// most recent activity. Only tool calls and replies produce a label.
func currentTask(latest models.Activity) *string {
	switch latest.Kind {
	case models.ActivityToolCall:
		task := latest.Description + " — " + latest.Details
		return &task
	case models.ActivityResponse:
		task := composingLabel
		return &task
	default:
		return nil
	}
}
