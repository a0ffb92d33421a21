package models

import "time"

// AgentStatus is the coarse derived state of the agent.
type AgentStatus string

const (
	StatusOffline AgentStatus = "Offline"
	StatusIdle    AgentStatus = "Idle"
	StatusWaiting AgentStatus = "WaitingForInput"
	StatusActive  AgentStatus = "Active"
)

// StatusSnapshot is the published artifact describing the agent's current
// derived status. It is fully regenerated on every run; the previous
// snapshot never feeds into the next.
type StatusSnapshot struct {
	Online       bool        `json:"online"`
	LastUpdate   time.Time   `json:"lastUpdate"`
	Status       AgentStatus `json:"status"`
	CurrentTask  *string     `json:"currentTask"`
	Model        string      `json:"model,omitempty"`
	ContextUsage int         `json:"contextUsage,omitempty"`
	SubAgents    int         `json:"subAgents,omitempty"`
	Activities   []Activity  `json:"activities"`
}
