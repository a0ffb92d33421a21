package activity

import (
	"strings"

	"github.com/mbichler/pulse/internal/models"
)

const (
	// Window bounds how many recent activities survive extraction.
	Window = 20

	// detailLimit caps the length of any detail string.
	detailLimit = 100

	// minReplyLen suppresses trivial acknowledgement texts. Only assistant
	// text strictly longer than this yields a response activity.
	minReplyLen = 10
)

// Extract maps raw transcript entries to normalized activities. Entries are
// walked in given (chronological) order; entries without a timestamp are
// skipped. The result is bounded to the most recent Window activities and
// reversed so index 0 is the most recent.
func Extract(entries []models.TranscriptEntry) []models.Activity {
	var activities []models.Activity

	for _, entry := range entries {
		if entry.Timestamp.IsZero() {
			continue
		}

		switch entry.Role {
		case models.RoleAssistant:
			for _, block := range entry.Content {
				switch block.Type {
				case models.BlockToolCall:
					activities = append(activities, models.Activity{
						Timestamp:   entry.Timestamp,
						Kind:        models.ActivityToolCall,
						Tool:        block.Name,
						Description: "Tool: " + block.Name,
						Details:     Summarize(block.Name, block.Arguments),
					})
				case models.BlockText:
					if len([]rune(block.Text)) > minReplyLen {
						activities = append(activities, models.Activity{
							Timestamp:   entry.Timestamp,
							Kind:        models.ActivityResponse,
							Description: "reply sent",
							Details:     ellipsize(block.Text, detailLimit),
						})
					}
				}
				// Unknown block tags are ignored for forward compatibility.
			}

		case models.RoleUser:
			text := joinUserText(entry.Content)
			if text == "" {
				continue
			}
			details := cutRunes(text, detailLimit)
			if len([]rune(text)) >= detailLimit {
				details += "..."
			}
			activities = append(activities, models.Activity{
				Timestamp:   entry.Timestamp,
				Kind:        models.ActivityUserMessage,
				Description: "message from operator",
				Details:     details,
			})
		}
	}

	if len(activities) > Window {
		activities = activities[len(activities)-Window:]
	}

	// Most recent first.
	for i, j := 0, len(activities)-1; i < j; i, j = i+1, j-1 {
		activities[i], activities[j] = activities[j], activities[i]
	}
	return activities
}

// joinUserText concatenates the text-bearing blocks of a user entry with a
// single-space separator.
func joinUserText(blocks []models.ContentBlock) string {
	var parts []string
	for _, block := range blocks {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, " ")
}

// ellipsize truncates s to n runes, appending "..." when it was longer.
func ellipsize(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
