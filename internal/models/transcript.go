package models

import "time"

// Entry roles as they appear in the transcript log.
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Content block tags. Blocks with other tags decode fine but are ignored
// downstream, which keeps old binaries tolerant of new block kinds.
const (
	BlockToolCall = "toolCall"
	BlockText     = "text"
)

// TranscriptEntry is one decoded line of a session's JSONL transcript.
// A zero Timestamp means the line carried none; such entries are dropped
// during activity extraction.
type TranscriptEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Role      string         `json:"role"`
	Content   []ContentBlock `json:"content"`
}

// ContentBlock is a tagged variant: a tool invocation or a text block,
// discriminated by Type.
type ContentBlock struct {
	Type      string         `json:"type"`
	Name      string         `json:"name,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Text      string         `json:"text,omitempty"`
}
