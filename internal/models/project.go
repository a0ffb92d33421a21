package models

import "time"

// Project groups dashboard tasks under a short key and tracks rough progress.
type Project struct {
	Key       string    `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Progress  int       `json:"progress"` // 0-100
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// DataDocument is the static tasks/projects document the dashboard loads
// once at startup, alongside the live snapshot.
type DataDocument struct {
	Tasks    TasksByOwner        `json:"tasks"`
	Projects map[string]*Project `json:"projects"`
}

// TasksByOwner splits the task board by owner.
type TasksByOwner struct {
	Agent    []*Task `json:"agent"`
	Operator []*Task `json:"operator"`
}
