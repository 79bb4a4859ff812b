package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"TaskWheelService/models"

	"github.com/google/uuid"
)

type memoryRecord struct {
	task models.Task
	seq  uint64
}

// MemoryTaskRepository provides in-memory task storage.
// Returned tasks are copies; mutating them does not touch the store.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*memoryRecord
	seq   uint64
	now   func() time.Time
	intn  func(n int) int
}

// NewMemoryTaskRepository creates an empty in-memory task repository.
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks: make(map[string]*memoryRecord),
		now:   time.Now,
		intn:  rand.Intn,
	}
}

func (r *MemoryTaskRepository) Insert(ctx context.Context, task *models.Task) (*models.Task, error) {
	if err := contextErr(ctx, "insert task"); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := task.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if _, exists := r.tasks[stored.ID]; exists {
		return nil, storageErr("insert task", fmt.Errorf("%w: id %s", ErrDuplicate, stored.ID))
	}
	now := r.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.seq++
	r.tasks[stored.ID] = &memoryRecord{task: *stored, seq: r.seq}
	return stored.Clone(), nil
}

func (r *MemoryTaskRepository) FindByID(ctx context.Context, id, ownerID string) (*models.Task, error) {
	if err := contextErr(ctx, "find task"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.tasks[id]
	if !ok || rec.task.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return rec.task.Clone(), nil
}

func (r *MemoryTaskRepository) FindMany(ctx context.Context, filter models.TaskFilter, order models.TaskSort, skip, limit int) ([]*models.Task, int64, error) {
	if err := contextErr(ctx, "list tasks"); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	matches := make([]*memoryRecord, 0)
	for _, rec := range r.tasks {
		if matchesFilter(&rec.task, filter) {
			matches = append(matches, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		c := compareTasks(&matches[i].task, &matches[j].task, order.Field)
		if c == 0 {
			c = compareSeq(matches[i].seq, matches[j].seq)
		}
		if order.Descending {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(matches))
	if skip < 0 {
		skip = 0
	}
	if skip >= len(matches) {
		return []*models.Task{}, total, nil
	}
	end := len(matches)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}

	out := make([]*models.Task, 0, end-skip)
	for _, rec := range matches[skip:end] {
		out = append(out, rec.task.Clone())
	}
	return out, total, nil
}

func (r *MemoryTaskRepository) Update(ctx context.Context, id, ownerID string, changes models.TaskChanges) (*models.Task, error) {
	if err := contextErr(ctx, "update task"); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tasks[id]
	if !ok || rec.task.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	updated := rec.task.Clone()
	changes.Apply(updated)
	updated.UpdatedAt = r.now()
	rec.task = *updated
	return updated.Clone(), nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	if err := contextErr(ctx, "delete task"); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tasks[id]
	if !ok || rec.task.OwnerID != ownerID {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

// SampleOne picks a match with single-pass reservoir sampling, so the eligible
// set is never copied out of the map.
func (r *MemoryTaskRepository) SampleOne(ctx context.Context, filter models.TaskFilter) (*models.Task, error) {
	if err := contextErr(ctx, "sample task"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var picked *models.Task
	seen := 0
	for _, rec := range r.tasks {
		if !matchesFilter(&rec.task, filter) {
			continue
		}
		seen++
		if r.intn(seen) == 0 {
			picked = &rec.task
		}
	}
	if picked == nil {
		return nil, ErrEmpty
	}
	return picked.Clone(), nil
}

func (r *MemoryTaskRepository) CountByGroup(ctx context.Context, ownerID string, field models.GroupField) (map[string]int64, error) {
	if err := contextErr(ctx, "count tasks"); err != nil {
		return nil, err
	}

	var key func(*models.Task) string
	switch field {
	case models.GroupByStatus:
		key = func(t *models.Task) string { return t.Status }
	case models.GroupByCategory:
		key = func(t *models.Task) string { return t.Category }
	default:
		return nil, fmt.Errorf("unsupported group field %q", field)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, rec := range r.tasks {
		if rec.task.OwnerID == ownerID {
			counts[key(&rec.task)]++
		}
	}
	return counts, nil
}

func matchesFilter(t *models.Task, f models.TaskFilter) bool {
	if t.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}

func compareTasks(a, b *models.Task, field models.SortField) int {
	switch field {
	case models.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case models.SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case models.SortByDueDate:
		// tasks without a due date sort last in ascending order
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareSeq(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// MemoryUserRepository provides in-memory user storage.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := contextErr(ctx, "create user"); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return ErrDuplicate
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := contextErr(ctx, "find user"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if err := contextErr(ctx, "find user"); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

// contextErr reports a cancelled or expired context as a StorageError, like the SQL repositories.
func contextErr(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return storageErr(op, err)
	}
	return nil
}
