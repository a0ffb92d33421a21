package models

import "time"

// TaskStatus represents the state of a dashboard task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusBacklog    TaskStatus = "backlog"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task owners: the agent itself or the human operator.
const (
	OwnerAgent    = "agent"
	OwnerOperator = "operator"
)

// Task is one item on the dashboard's task board.
type Task struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Owner     string       `json:"owner"`
	Project   string       `json:"project,omitempty"`
	Status    TaskStatus   `json:"status"`
	Priority  TaskPriority `json:"priority"`
	Completed string       `json:"completed,omitempty"` // YYYY-MM-DD, set when done
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
