package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"TaskWheelService/config"
	"TaskWheelService/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupGormRepository creates a task repository on an in-memory SQLite database.
func setupGormRepository(t *testing.T) TaskRepository {
	t.Helper()

	db, err := OpenDatabase(context.Background(), config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewGormTaskRepository(db)
}

func repositories() map[string]func(t *testing.T) TaskRepository {
	return map[string]func(t *testing.T) TaskRepository{
		"memory": func(t *testing.T) TaskRepository { return NewMemoryTaskRepository() },
		"gorm":   setupGormRepository,
	}
}

func newTask(owner, title, category, status string) *models.Task {
	return &models.Task{Title: title, Category: category, Status: status, OwnerID: owner}
}

func seed(t *testing.T, repo TaskRepository, tasks ...*models.Task) []*models.Task {
	t.Helper()
	out := make([]*models.Task, 0, len(tasks))
	for i, task := range tasks {
		if task.CreatedAt.IsZero() {
			task.CreatedAt = time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC)
		}
		stored, err := repo.Insert(context.Background(), task)
		require.NoError(t, err)
		out = append(out, stored)
	}
	return out
}

func TestTaskRepositoryContract(t *testing.T) {
	for name, factory := range repositories() {
		t.Run(name, func(t *testing.T) {
			t.Run("insert assigns id and timestamps", func(t *testing.T) {
				repo := factory(t)
				stored, err := repo.Insert(context.Background(), newTask("u1", "Buy milk", "Personal", "Pending"))
				require.NoError(t, err)
				assert.NotEmpty(t, stored.ID)
				assert.False(t, stored.CreatedAt.IsZero())
				assert.False(t, stored.UpdatedAt.IsZero())
			})

			t.Run("find by id is owner scoped", func(t *testing.T) {
				repo := factory(t)
				stored := seed(t, repo, newTask("u1", "Buy milk", "Personal", "Pending"))[0]

				found, err := repo.FindByID(context.Background(), stored.ID, "u1")
				require.NoError(t, err)
				assert.Equal(t, "Buy milk", found.Title)

				_, err = repo.FindByID(context.Background(), stored.ID, "u2")
				assert.ErrorIs(t, err, ErrNotFound)
				_, err = repo.FindByID(context.Background(), "missing", "u1")
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("find many filters sorts and pages", func(t *testing.T) {
				repo := factory(t)
				seed(t, repo,
					newTask("u1", "a", "Work", "Pending"),
					newTask("u1", "b", "Work", "Completed"),
					newTask("u1", "c", "Health", "Pending"),
					newTask("u1", "d", "Work", "Pending"),
					newTask("u2", "e", "Work", "Pending"),
				)
				ctx := context.Background()

				all, total, err := repo.FindMany(ctx, models.TaskFilter{OwnerID: "u1"}, models.DefaultTaskSort(), 0, 10)
				require.NoError(t, err)
				assert.EqualValues(t, 4, total)
				assert.Equal(t, []string{"d", "c", "b", "a"}, titles(all))

				work, total, err := repo.FindMany(ctx, models.TaskFilter{OwnerID: "u1", Status: "Pending", Category: "Work"}, models.DefaultTaskSort(), 0, 10)
				require.NoError(t, err)
				assert.EqualValues(t, 2, total)
				assert.Equal(t, []string{"d", "a"}, titles(work))

				page, total, err := repo.FindMany(ctx, models.TaskFilter{OwnerID: "u1"}, models.TaskSort{Field: models.SortByTitle}, 1, 2)
				require.NoError(t, err)
				assert.EqualValues(t, 4, total)
				assert.Equal(t, []string{"b", "c"}, titles(page))

				beyond, total, err := repo.FindMany(ctx, models.TaskFilter{OwnerID: "u1"}, models.DefaultTaskSort(), 40, 10)
				require.NoError(t, err)
				assert.EqualValues(t, 4, total)
				assert.Empty(t, beyond)
			})

			t.Run("due date sort puts undated tasks last", func(t *testing.T) {
				repo := factory(t)
				soon := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
				later := soon.AddDate(0, 1, 0)
				undated := newTask("u1", "undated", "Work", "Pending")
				dueLater := newTask("u1", "later", "Work", "Pending")
				dueLater.DueDate = &later
				dueSoon := newTask("u1", "soon", "Work", "Pending")
				dueSoon.DueDate = &soon
				seed(t, repo, undated, dueLater, dueSoon)
				ctx := context.Background()

				asc, _, err := repo.FindMany(ctx, models.TaskFilter{OwnerID: "u1"}, models.TaskSort{Field: models.SortByDueDate}, 0, 10)
				require.NoError(t, err)
				assert.Equal(t, []string{"soon", "later", "undated"}, titles(asc))

				desc, _, err := repo.FindMany(ctx, models.TaskFilter{OwnerID: "u1"}, models.TaskSort{Field: models.SortByDueDate, Descending: true}, 0, 10)
				require.NoError(t, err)
				assert.Equal(t, []string{"undated", "later", "soon"}, titles(desc))
			})

			t.Run("update merges changes", func(t *testing.T) {
				repo := factory(t)
				stored := seed(t, repo, newTask("u1", "Buy milk", "Personal", "Pending"))[0]
				title, status := "Buy oat milk", "Completed"
				done := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

				updated, err := repo.Update(context.Background(), stored.ID, "u1", models.TaskChanges{
					Title:       &title,
					Status:      &status,
					CompletedAt: &sql.NullTime{Time: done, Valid: true},
				})
				require.NoError(t, err)
				assert.Equal(t, "Buy oat milk", updated.Title)
				assert.Equal(t, "Personal", updated.Category)
				require.NotNil(t, updated.CompletedAt)
				assert.True(t, done.Equal(*updated.CompletedAt))

				cleared, err := repo.Update(context.Background(), stored.ID, "u1", models.TaskChanges{CompletedAt: &sql.NullTime{}})
				require.NoError(t, err)
				assert.Nil(t, cleared.CompletedAt)
				assert.Equal(t, "Completed", cleared.Status)

				_, err = repo.Update(context.Background(), stored.ID, "u2", models.TaskChanges{Title: &title})
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("delete is owner scoped", func(t *testing.T) {
				repo := factory(t)
				stored := seed(t, repo, newTask("u1", "Buy milk", "Personal", "Pending"))[0]

				removed, err := repo.Delete(context.Background(), stored.ID, "u2")
				require.NoError(t, err)
				assert.False(t, removed)

				removed, err = repo.Delete(context.Background(), stored.ID, "u1")
				require.NoError(t, err)
				assert.True(t, removed)

				removed, err = repo.Delete(context.Background(), stored.ID, "u1")
				require.NoError(t, err)
				assert.False(t, removed)
			})

			t.Run("sample one respects the filter", func(t *testing.T) {
				repo := factory(t)
				seed(t, repo,
					newTask("u1", "a", "Work", "Pending"),
					newTask("u1", "b", "Health", "Completed"),
					newTask("u2", "c", "Health", "Pending"),
				)
				ctx := context.Background()

				picked, err := repo.SampleOne(ctx, models.TaskFilter{OwnerID: "u1", Status: "Pending"})
				require.NoError(t, err)
				assert.Equal(t, "a", picked.Title)

				_, err = repo.SampleOne(ctx, models.TaskFilter{OwnerID: "u1", Status: "Pending", Category: "Health"})
				assert.ErrorIs(t, err, ErrEmpty)
			})

			t.Run("sample one is uniform", func(t *testing.T) {
				repo := factory(t)
				const k, trials = 4, 4000
				for i := 0; i < k; i++ {
					seed(t, repo, newTask("u1", fmt.Sprintf("task-%d", i), "Work", "Pending"))
				}
				seed(t, repo, newTask("u1", "done", "Work", "Completed"))

				counts := map[string]int{}
				for i := 0; i < trials; i++ {
					picked, err := repo.SampleOne(context.Background(), models.TaskFilter{OwnerID: "u1", Status: "Pending"})
					require.NoError(t, err)
					counts[picked.Title]++
				}

				require.Len(t, counts, k)
				for title, n := range counts {
					assert.InDelta(t, trials/k, n, 150, "selection frequency of %s", title)
				}
			})

			t.Run("count by group", func(t *testing.T) {
				repo := factory(t)
				seed(t, repo,
					newTask("u1", "a", "Work", "Pending"),
					newTask("u1", "b", "Work", "Completed"),
					newTask("u1", "c", "Health", "Pending"),
					newTask("u2", "d", "Other", "In Progress"),
				)
				ctx := context.Background()

				byStatus, err := repo.CountByGroup(ctx, "u1", models.GroupByStatus)
				require.NoError(t, err)
				assert.Equal(t, map[string]int64{"Pending": 2, "Completed": 1}, byStatus)

				byCategory, err := repo.CountByGroup(ctx, "u1", models.GroupByCategory)
				require.NoError(t, err)
				assert.Equal(t, map[string]int64{"Work": 2, "Health": 1}, byCategory)

				_, err = repo.CountByGroup(ctx, "u1", models.GroupField("priority"))
				assert.Error(t, err)
			})
		})
	}
}

func TestMemoryTaskRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryTaskRepository()
	stored := seed(t, repo, newTask("u1", "Buy milk", "Personal", "Pending"))[0]

	stored.Title = "changed"
	found, err := repo.FindByID(context.Background(), stored.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", found.Title)
}

func TestMemoryTaskRepositoryHonoursContext(t *testing.T) {
	repo := NewMemoryTaskRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Insert(ctx, newTask("u1", "Buy milk", "Personal", "Pending"))
	assert.ErrorIs(t, err, context.Canceled)
	var storage *StorageError
	require.ErrorAs(t, err, &storage)
	assert.Equal(t, "insert task", storage.Op)

	_, _, err = repo.FindMany(ctx, models.TaskFilter{OwnerID: "u1"}, models.DefaultTaskSort(), 0, 10)
	assert.ErrorAs(t, err, &storage)

	_, err = NewMemoryUserRepository().FindByEmail(ctx, "ada@example.com")
	assert.ErrorAs(t, err, &storage)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGormTaskRepositorySamplesAtRandomOffset(t *testing.T) {
	repo := setupGormRepository(t).(*GormTaskRepository)
	seed(t, repo,
		&models.Task{ID: "00000000-0000-0000-0000-000000000001", Title: "first", Category: "Work", Status: "Pending", OwnerID: "u1"},
		&models.Task{ID: "00000000-0000-0000-0000-000000000002", Title: "second", Category: "Work", Status: "Pending", OwnerID: "u1"},
		&models.Task{ID: "00000000-0000-0000-0000-000000000003", Title: "third", Category: "Work", Status: "Pending", OwnerID: "u1"},
	)

	var bound int
	repo.intn = func(n int) int {
		bound = n
		return 2
	}
	picked, err := repo.SampleOne(context.Background(), models.TaskFilter{OwnerID: "u1", Status: "Pending"})
	require.NoError(t, err)
	assert.Equal(t, 3, bound)
	assert.Equal(t, "third", picked.Title)
}

func TestStorageErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("create: %w", storageErr("insert task", cause))

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert task", se.Op)
	assert.ErrorIs(t, err, cause)
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.DatabaseConfig{Username: "app", Password: "pw", Address: "db", Port: 3307, Name: "taskdb"})
	assert.Contains(t, dsn, "app:pw@tcp(db:3307)/taskdb")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "clientFoundRows=true")
}

func titles(tasks []*models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}
