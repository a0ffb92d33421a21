package models

import "time"

// ActivityKind classifies a normalized activity.
type ActivityKind string

const (
	ActivityToolCall    ActivityKind = "tool_call"
	ActivityResponse    ActivityKind = "response"
	ActivityUserMessage ActivityKind = "user_message"
)

// Activity is a normalized, display-ready unit derived from transcript
// entries. Immutable value; identity is position plus timestamp.
type Activity struct {
	Timestamp   time.Time    `json:"timestamp"`
	Kind        ActivityKind `json:"kind"`
	Tool        string       `json:"tool,omitempty"`
	Description string       `json:"description"`
	Details     string       `json:"details,omitempty"`
}
