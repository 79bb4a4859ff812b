package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"TaskWheelService/config"
	"TaskWheelService/models"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sampleAttempts bounds the count-then-offset retries when rows vanish between the two queries.
const sampleAttempts = 3

var sortColumns = map[models.SortField]string{
	models.SortByCreatedAt: "created_at",
	models.SortByUpdatedAt: "updated_at",
	models.SortByDueDate:   "due_date",
	models.SortByTitle:     "title",
}

var groupColumns = map[models.GroupField]string{
	models.GroupByStatus:   "status",
	models.GroupByCategory: "category",
}

// OpenDatabase connects to the configured SQL backend.
//
// Returns:
// - *gorm.DB: The connection pool handle.
// - error: An error if the driver is unknown or the database cannot be reached.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = gormmysql.Open(MySQLDSN(cfg))
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// a single connection keeps ":memory:" databases shared across calls
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// MySQLDSN formats the MySQL connection string for cfg.
func MySQLDSN(cfg config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	mc.DBName = cfg.Name
	mc.AllowNativePasswords = true
	mc.ParseTime = true
	mc.ClientFoundRows = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// Migrate creates or updates the tasks and users tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Task{}, &models.User{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// GormTaskRepository stores tasks in a SQL table through GORM.
type GormTaskRepository struct {
	db   *gorm.DB
	intn func(n int) int
}

// NewGormTaskRepository creates a task repository on db.
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db, intn: rand.Intn}
}

func (r *GormTaskRepository) Insert(ctx context.Context, task *models.Task) (*models.Task, error) {
	stored := task.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(stored).Error; err != nil {
		return nil, storageErr("insert task", err)
	}
	return stored, nil
}

func (r *GormTaskRepository) FindByID(ctx context.Context, id, ownerID string) (*models.Task, error) {
	return findTask(r.db.WithContext(ctx), id, ownerID)
}

func (r *GormTaskRepository) FindMany(ctx context.Context, filter models.TaskFilter, order models.TaskSort, skip, limit int) ([]*models.Task, int64, error) {
	col, ok := sortColumns[order.Field]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported sort field %q", order.Field)
	}
	dir := "ASC"
	if order.Descending {
		dir = "DESC"
	}

	q := scopeFilter(r.db.WithContext(ctx).Model(&models.Task{}), filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, storageErr("count tasks", err)
	}

	tasks := make([]*models.Task, 0)
	if total == 0 || int64(skip) >= total {
		return tasks, total, nil
	}

	page := q
	if order.Field == models.SortByDueDate {
		// tasks without a due date sort last in ascending order, as in MemoryTaskRepository
		page = page.Order(fmt.Sprintf("(%s IS NULL) %s", col, dir))
	}
	page = page.Order(fmt.Sprintf("%s %s", col, dir)).Order("id " + dir).Offset(skip)
	if limit > 0 {
		page = page.Limit(limit)
	}
	if err := page.Find(&tasks).Error; err != nil {
		return nil, 0, storageErr("list tasks", err)
	}
	return tasks, total, nil
}

// Update applies the changes inside a transaction and re-reads the row, so the
// returned task reflects the stored state.
func (r *GormTaskRepository) Update(ctx context.Context, id, ownerID string, changes models.TaskChanges) (*models.Task, error) {
	var updated *models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findTask(tx, id, ownerID); err != nil {
			return err
		}
		cols := changes.Columns()
		cols["updated_at"] = time.Now()
		res := tx.Model(&models.Task{}).Where("id = ? AND owner_id = ?", id, ownerID).Updates(cols)
		if res.Error != nil {
			return storageErr("update task", res.Error)
		}
		t, err := findTask(tx, id, ownerID)
		if err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		var se *StorageError
		if errors.Is(err, ErrNotFound) || errors.As(err, &se) {
			return nil, err
		}
		return nil, storageErr("update task", err)
	}
	return updated, nil
}

func (r *GormTaskRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Task{})
	if res.Error != nil {
		return false, storageErr("delete task", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SampleOne counts the matches and reads the row at a uniformly random offset
// of a stable ordering, served by the (owner_id, status) index.
func (r *GormTaskRepository) SampleOne(ctx context.Context, filter models.TaskFilter) (*models.Task, error) {
	for attempt := 0; attempt < sampleAttempts; attempt++ {
		q := scopeFilter(r.db.WithContext(ctx).Model(&models.Task{}), filter)

		var total int64
		if err := q.Count(&total).Error; err != nil {
			return nil, storageErr("count tasks", err)
		}
		if total == 0 {
			return nil, ErrEmpty
		}

		var tasks []*models.Task
		offset := r.intn(int(total))
		if err := q.Order("id").Offset(offset).Limit(1).Find(&tasks).Error; err != nil {
			return nil, storageErr("sample task", err)
		}
		if len(tasks) == 1 {
			return tasks[0], nil
		}
	}
	return nil, ErrEmpty
}

func (r *GormTaskRepository) CountByGroup(ctx context.Context, ownerID string, field models.GroupField) (map[string]int64, error) {
	col, ok := groupColumns[field]
	if !ok {
		return nil, fmt.Errorf("unsupported group field %q", field)
	}

	var rows []struct {
		Value string
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select(col+" AS value, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group(col).
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("count tasks by "+col, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Value] = row.Count
	}
	return counts, nil
}

func scopeFilter(q *gorm.DB, f models.TaskFilter) *gorm.DB {
	q = q.Where("owner_id = ?", f.OwnerID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	// a new session so the scoped query can be reused for count and fetch
	return q.Session(&gorm.Session{})
}

func findTask(db *gorm.DB, id, ownerID string) (*models.Task, error) {
	var task models.Task
	if err := db.Where("id = ? AND owner_id = ?", id, ownerID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("find task", err)
	}
	return &task, nil
}

// GormUserRepository stores users in a SQL table through GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a user repository on db.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicate
		}
		return tx.Create(user).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDuplicate), errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return storageErr("create user", err)
	}
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

func (r *GormUserRepository) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("find user", err)
	}
	return &user, nil
}
