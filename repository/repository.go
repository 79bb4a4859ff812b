// Package repository abstracts task and user persistence.
//
// The repositories carry no business rules: they store, filter, page, sample and
// count records. Every operation on tasks is scoped by owner.
package repository

import (
	"context"
	"errors"
	"fmt"

	"TaskWheelService/models"
)

var (
	// ErrNotFound is returned when no record matches an id (and owner).
	ErrNotFound = errors.New("record not found")
	// ErrEmpty is returned by SampleOne when the filter matches nothing.
	ErrEmpty = errors.New("no record matches the filter")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// TaskRepository is the persistence contract of the task engine.
type TaskRepository interface {
	// Insert stores a new task, assigning the id when empty and the timestamps.
	Insert(ctx context.Context, task *models.Task) (*models.Task, error)
	// FindByID returns ErrNotFound when the task is missing or owned by someone else.
	FindByID(ctx context.Context, id, ownerID string) (*models.Task, error)
	// FindMany returns one page of matches and the total match count ignoring skip and limit.
	FindMany(ctx context.Context, filter models.TaskFilter, sort models.TaskSort, skip, limit int) ([]*models.Task, int64, error)
	// Update merges the changes and returns the stored result.
	Update(ctx context.Context, id, ownerID string, changes models.TaskChanges) (*models.Task, error)
	// Delete reports whether a task was removed.
	Delete(ctx context.Context, id, ownerID string) (bool, error)
	// SampleOne returns a uniformly random match, or ErrEmpty.
	SampleOne(ctx context.Context, filter models.TaskFilter) (*models.Task, error)
	// CountByGroup counts the owner's tasks per distinct value of field.
	CountByGroup(ctx context.Context, ownerID string, field models.GroupField) (map[string]int64, error)
}

// UserRepository stores registered users.
type UserRepository interface {
	// Create returns ErrDuplicate when the email is already registered.
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}
