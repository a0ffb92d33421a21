package status

import (
	"time"

	"github.com/mbichler/pulse/internal/activity"
	"github.com/mbichler/pulse/internal/models"
	"github.com/mbichler/pulse/internal/session"
	"github.com/mbichler/pulse/internal/transcript"
)

// Generator derives a full status snapshot from the session index and
// transcript directory. A Generator holds no state between runs; Generate
// is a pure function of the files on disk and the given instant.
type Generator struct {
	index  *session.Index
	reader *transcript.Reader
}

// NewGenerator creates a Generator over the agent runtime's session
// directory. An empty slot selects the default main session slot.
func NewGenerator(sessionDir, slot string) *Generator {
	return &Generator{
		index:  session.NewIndex(sessionDir, slot),
		reader: transcript.NewReader(sessionDir),
	}
}

// Generate recomputes the snapshot from scratch. It never fails: every data
// irregularity short of a publish failure degrades to an offline or empty
// result, so a run always produces some valid snapshot.
func (g *Generator) Generate(now time.Time) *models.StatusSnapshot {
	sess, err := g.index.Current()
	if err != nil || sess == nil {
		return offlineSnapshot(now)
	}

	entries, err := g.reader.ReadWindow(sess.SessionID, transcript.DefaultWindow)
	if err != nil {
		entries = nil
	}

	activities := activity.Extract(entries)
	if activities == nil {
		activities = []models.Activity{}
	}

	cls := Classify(activities, now)

	subAgents, err := g.index.SubAgents()
	if err != nil {
		subAgents = 0
	}

	return &models.StatusSnapshot{
		Online:       true,
		LastUpdate:   now,
		Status:       cls.Status,
		CurrentTask:  cls.CurrentTask,
		Model:        sess.Model,
		ContextUsage: sess.ContextUsagePercent(),
		SubAgents:    subAgents,
		Activities:   activities,
	}
}

// offlineSnapshot is the well-defined result when no session is tracked.
func offlineSnapshot(now time.Time) *models.StatusSnapshot {
	return &models.StatusSnapshot{
		Online:      false,
		LastUpdate:  now,
		Status:      models.StatusOffline,
		CurrentTask: nil,
		Activities:  []models.Activity{},
	}
}
