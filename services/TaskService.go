// Package services implements the business rules of the task manager on top of the repositories.
//
// TaskService is stateless across calls: every operation is scoped to the caller's
// owner id, all state lives in the injected repository.
package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"math"
	"strings"
	"time"

	"TaskWheelService/commands"
	"TaskWheelService/config"
	"TaskWheelService/models"
	"TaskWheelService/repository"
	"TaskWheelService/validation"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// TaskService is the task query and lifecycle engine.
type TaskService struct {
	repo     repository.TaskRepository
	vocab    config.Vocabulary
	validate *validator.Validate
	log      logrus.FieldLogger
	now      func() time.Time
}

// Option customizes a TaskService.
type Option func(*TaskService)

// WithClock replaces the time source used to stamp completedAt.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

// WithLogger sets the logger of the service.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *TaskService) { s.log = log }
}

// NewTaskService creates the engine over repo for the given vocabulary.
func NewTaskService(repo repository.TaskRepository, vocab config.Vocabulary, opts ...Option) *TaskService {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &TaskService{
		repo:     repo,
		vocab:    vocab,
		validate: validation.New(vocab),
		log:      discard,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Vocabulary returns the vocabulary the service validates against.
func (s *TaskService) Vocabulary() config.Vocabulary {
	return s.vocab
}

// CreateTask validates cmd and stores a new task owned by ownerID.
// The status defaults to the initial status; creating a task directly in the
// terminal status stamps completedAt.
//
// Returns:
// - *models.Task: The stored task.
// - error: A *ValidationError listing every violated field, or a storage error.
func (s *TaskService) CreateTask(ctx context.Context, ownerID string, cmd commands.CreateTaskCommand) (*models.Task, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	cmd.Title = strings.TrimSpace(cmd.Title)
	cmd.Description = strings.TrimSpace(cmd.Description)
	if err := s.validate.Struct(cmd); err != nil {
		return nil, validationErr(err)
	}

	task := &models.Task{
		Title:       cmd.Title,
		Description: cmd.Description,
		Category:    cmd.Category,
		Status:      cmd.Status,
		Priority:    cmd.Priority,
		OwnerID:     ownerID,
	}
	if task.Status == "" {
		task.Status = s.vocab.InitialStatus
	}
	if task.Priority == "" && s.vocab.PrioritiesEnabled() {
		task.Priority = s.vocab.DefaultPriority
	}
	if cmd.DueDate != "" {
		due, _ := validation.ParseDate(cmd.DueDate)
		task.DueDate = &due
	}
	if task.Status == s.vocab.TerminalStatus {
		now := s.now()
		task.CompletedAt = &now
	}

	created, err := s.repo.Insert(ctx, task)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"task operation": "create task",
		"task":           created.ID,
		"owner":          ownerID,
	}).Info("task created")
	return created, nil
}

// ListTasks returns one page of the owner's tasks, newest first unless cmd asks otherwise.
// A page past the end yields no items and accurate pagination metadata.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string, cmd commands.ListTasksCommand) (*models.TaskPage, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	if err := s.validate.Struct(cmd); err != nil {
		return nil, validationErr(err)
	}

	page, pageSize := cmd.Page, cmd.PageSize
	if page == 0 {
		page = DefaultPage
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	filter := models.TaskFilter{
		OwnerID:  ownerID,
		Status:   unlessAll(cmd.Status),
		Category: unlessAll(cmd.Category),
	}
	order := models.DefaultTaskSort()
	if cmd.SortBy != "" {
		order.Field = models.SortField(cmd.SortBy)
	}
	if cmd.Order != "" {
		order.Descending = cmd.Order == "desc"
	}

	// pages too far out to address are past the end of any listing
	skip := math.MaxInt
	if page-1 <= math.MaxInt/pageSize {
		skip = (page - 1) * pageSize
	}
	items, total, err := s.repo.FindMany(ctx, filter, order, skip, pageSize)
	if err != nil {
		return nil, err
	}
	return &models.TaskPage{
		Items:      items,
		Pagination: paginate(page, pageSize, skip, len(items), total),
	}, nil
}

// GetTask returns the task, or ErrNotFound when it is missing or owned by someone else.
func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	task, err := s.repo.FindByID(ctx, taskID, ownerID)
	if err != nil {
		return nil, notFound(err)
	}
	return task, nil
}

// UpdateTask applies a partial update.
//
// completedAt follows status transitions: entering the terminal status stamps it,
// any present non-terminal status clears it, re-sending the terminal status keeps
// the original stamp, and an absent status leaves it untouched.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID string, cmd commands.UpdateTaskCommand) (*models.Task, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	cmd.Title = trimPtr(cmd.Title)
	cmd.Description = trimPtr(cmd.Description)
	if err := s.validate.Struct(cmd); err != nil {
		return nil, validationErr(err)
	}

	current, err := s.repo.FindByID(ctx, taskID, ownerID)
	if err != nil {
		return nil, notFound(err)
	}

	changes := models.TaskChanges{
		Title:       cmd.Title,
		Description: cmd.Description,
		Category:    cmd.Category,
		Status:      cmd.Status,
		Priority:    cmd.Priority,
	}
	if cmd.DueDate != nil {
		changes.DueDate = &sql.NullTime{}
		if *cmd.DueDate != "" {
			due, _ := validation.ParseDate(*cmd.DueDate)
			changes.DueDate = &sql.NullTime{Time: due, Valid: true}
		}
	}
	if cmd.Status != nil {
		toTerminal := *cmd.Status == s.vocab.TerminalStatus
		wasTerminal := current.Status == s.vocab.TerminalStatus
		switch {
		case toTerminal && !wasTerminal:
			changes.CompletedAt = &sql.NullTime{Time: s.now(), Valid: true}
		case !toTerminal:
			changes.CompletedAt = &sql.NullTime{}
		}
	}

	updated, err := s.repo.Update(ctx, taskID, ownerID, changes)
	if err != nil {
		return nil, notFound(err)
	}
	s.log.WithFields(logrus.Fields{
		"task operation": "update task",
		"task":           taskID,
		"owner":          ownerID,
		"status":         updated.Status,
	}).Info("task updated")
	return updated, nil
}

// DeleteTask removes the task permanently.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	if ownerID == "" {
		return ErrMissingOwner
	}
	removed, err := s.repo.Delete(ctx, taskID, ownerID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.log.WithFields(logrus.Fields{
		"task operation": "delete task",
		"task":           taskID,
		"owner":          ownerID,
	}).Info("task deleted")
	return nil
}

// RandomTask spins the task wheel: it returns one of the owner's tasks in the
// initial status, uniformly at random, optionally restricted to a category.
// The "All" category means unrestricted. An empty eligible set yields ErrNoEligibleTask.
func (s *TaskService) RandomTask(ctx context.Context, ownerID string, cmd commands.RandomTaskCommand) (*models.Task, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	if err := s.validate.Struct(cmd); err != nil {
		return nil, validationErr(err)
	}

	filter := models.TaskFilter{
		OwnerID:  ownerID,
		Status:   s.vocab.InitialStatus,
		Category: unlessAll(cmd.Category),
	}
	task, err := s.repo.SampleOne(ctx, filter)
	if errors.Is(err, repository.ErrEmpty) {
		return nil, ErrNoEligibleTask
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Stats counts the owner's tasks by status and by category.
// Statuses and categories without tasks are absent from the result.
func (s *TaskService) Stats(ctx context.Context, ownerID string) (*models.TaskStats, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	byStatus, err := s.repo.CountByGroup(ctx, ownerID, models.GroupByStatus)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.repo.CountByGroup(ctx, ownerID, models.GroupByCategory)
	if err != nil {
		return nil, err
	}
	return &models.TaskStats{ByStatus: byStatus, ByCategory: byCategory}, nil
}

func paginate(page, pageSize, skip, count int, total int64) models.Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return models.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     int64(skip) < total && int64(skip+count) < total,
		HasPrev:     page > 1,
	}
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func unlessAll(v string) string {
	if v == models.AllSentinel {
		return ""
	}
	return v
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
