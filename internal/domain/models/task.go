package models

import "time"

// TaskStatus is derived from the task's date at creation time and flipped
// to completed by the user.
type TaskStatus string

const (
	TaskStatusToday     TaskStatus = "TODAY"
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusFuture    TaskStatus = "FUTURE"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// SubtaskStatus marks a single checklist item inside a task.
type SubtaskStatus string

const (
	SubtaskPending   SubtaskStatus = "PENDING"
	SubtaskCompleted SubtaskStatus = "COMPLETED"
)

// Subtask is an embedded checklist entry; it has no life outside its task.
type Subtask struct {
	ID     string        `json:"id"`
	Task   string        `json:"task"`
	Status SubtaskStatus `json:"status"`
}

// Task is a single-owner todo item. Tasks are not shareable: there is no
// member list and only the owning user can read or mutate them.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	SubCategory string     `json:"sub_category"`
	Priority    string     `json:"priority"`
	Date        time.Time  `json:"date"`
	Status      TaskStatus `json:"status"`
	Subtasks    []Subtask  `json:"subtasks"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
