package domain

import "time"

// MaxContentLength is the longest task content accepted, in characters.
const MaxContentLength = 200

// Task represents a single to-do item owned by exactly one user.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Content     string     `json:"content"`
	Completed   bool       `json:"completed"`
	DateCreated time.Time  `json:"date_created"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (t *Task) IsOverdue(reference time.Time) bool {
	if t == nil || t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(reference)
}
