// Package models contains the data models shared by the repositories, services and request handlers.
package models

import (
	"database/sql"
	"time"
)

// AllSentinel is the filter value meaning "do not restrict by this dimension".
const AllSentinel = "All"

// Task represents a task in the system.
// Task has the following properties:
// - ID: The unique identifier of the task, generated on insert.
// - Title: The title of the task.
// - Description: The optional description of the task.
// - Category: One of the configured categories.
// - Status: One of the configured statuses.
// - Priority: One of the configured priorities, empty when priorities are disabled.
// - DueDate: The optional due date.
// - OwnerID: The user the task belongs to.
// - CompletedAt: Set while the task is in the terminal status, nil otherwise.
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Title       string     `json:"title" gorm:"size:100;not null"`
	Description string     `json:"description" gorm:"size:500"`
	Category    string     `json:"category" gorm:"size:64;not null;index:idx_tasks_owner_category,priority:2"`
	Status      string     `json:"status" gorm:"size:32;not null;index:idx_tasks_owner_status,priority:2"`
	Priority    string     `json:"priority,omitempty" gorm:"size:16"`
	DueDate     *time.Time `json:"dueDate"`
	OwnerID     string     `json:"ownerId" gorm:"size:36;not null;index:idx_tasks_owner_status,priority:1;index:idx_tasks_owner_category,priority:1"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// Clone returns a deep copy of the task so callers never share the nullable times.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	return &c
}

// TaskChanges is the typed partial update applied by a repository.
// A nil pointer leaves the field untouched. For the nullable times a non-nil
// value with Valid=false clears the column.
type TaskChanges struct {
	Title       *string
	Description *string
	Category    *string
	Status      *string
	Priority    *string
	DueDate     *sql.NullTime
	CompletedAt *sql.NullTime
}

// Apply merges the changes into t.
func (c TaskChanges) Apply(t *Task) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Category != nil {
		t.Category = *c.Category
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.DueDate != nil {
		t.DueDate = nullTimePtr(*c.DueDate)
	}
	if c.CompletedAt != nil {
		t.CompletedAt = nullTimePtr(*c.CompletedAt)
	}
}

// Columns returns the changes keyed by column name, for SQL backed repositories.
func (c TaskChanges) Columns() map[string]any {
	cols := map[string]any{}
	if c.Title != nil {
		cols["title"] = *c.Title
	}
	if c.Description != nil {
		cols["description"] = *c.Description
	}
	if c.Category != nil {
		cols["category"] = *c.Category
	}
	if c.Status != nil {
		cols["status"] = *c.Status
	}
	if c.Priority != nil {
		cols["priority"] = *c.Priority
	}
	if c.DueDate != nil {
		cols["due_date"] = nullTimePtr(*c.DueDate)
	}
	if c.CompletedAt != nil {
		cols["completed_at"] = nullTimePtr(*c.CompletedAt)
	}
	return cols
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
