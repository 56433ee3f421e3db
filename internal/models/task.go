package models

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task belongs to exactly one user. DueDate is nil when the task has no
// deadline. Priority and Category are the human-readable names;
// PriorityID and CategoryID are the rows they resolve to in their
// lookup tables. CategoryID is nil for uncategorized tasks, in which
// case Category is empty.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Status      string
	Priority    string
	PriorityID  int64
	Category    string
	CategoryID  *int64
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}
