package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	assert.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB opens a file-backed sqlite database with a single connection,
// so concurrent transactions queue up instead of failing with SQLITE_BUSY.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "taskboard.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Board{}, &model.Column{}, &model.Task{}))
	return db
}

type fixture struct {
	db     *gorm.DB
	boards *repository.BoardRepository
	tasks  *repository.TaskRepository
	board  *model.Board
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupSQLiteDB(t)
	f := &fixture{
		db:     db,
		boards: repository.NewBoardRepository(db),
		tasks:  repository.NewTaskRepository(db),
	}
	f.board = f.newBoard(t, "Sprint")
	return f
}

func (f *fixture) newBoard(t *testing.T, title string) *model.Board {
	t.Helper()

	board := &model.Board{Title: title}
	require.NoError(t, f.boards.Create(context.Background(), board))
	require.Len(t, board.Columns, 3)
	return board
}

func (f *fixture) column(i int) uuid.UUID {
	return f.board.Columns[i].ID
}

// addTasks appends tasks with the given titles and returns their IDs by title.
func (f *fixture) addTasks(t *testing.T, columnID uuid.UUID, titles ...string) map[string]uuid.UUID {
	t.Helper()

	ids := make(map[string]uuid.UUID, len(titles))
	for _, title := range titles {
		task := &model.Task{ColumnID: columnID, Title: title}
		require.NoError(t, f.tasks.Create(context.Background(), task))
		ids[title] = task.ID
	}
	return ids
}

const duplicatePositionsSQL = `SELECT COUNT(*) FROM (
	SELECT column_id, position FROM tasks WHERE position >= 0
	GROUP BY column_id, position HAVING COUNT(*) > 1
) AS clashes`

// checkPositionsPerStatement fails the test if any UPDATE leaves two tasks
// sharing a placed position in one column. The check runs inside the move's
// transaction. SQLite has no deferrable unique index, so this stands in for
// the (column_id, position) constraint that Postgres checks at commit.
func (f *fixture) checkPositionsPerStatement(t *testing.T) {
	t.Helper()

	require.NoError(t, f.db.Callback().Update().After("gorm:update").Register("test:unique_positions", func(tx *gorm.DB) {
		if tx.Error != nil {
			return
		}
		var clashes int64
		if err := tx.Session(&gorm.Session{NewDB: true}).Raw(duplicatePositionsSQL).Scan(&clashes).Error; err != nil {
			t.Errorf("failed to check positions: %v", err)
			return
		}
		if clashes > 0 {
			t.Errorf("update left %d duplicate positions: %s", clashes, tx.Statement.SQL.String())
		}
	}))
}

// assertPositionsSettled checks the whole table: no duplicate positions and
// no task left parked at the detached sentinel.
func (f *fixture) assertPositionsSettled(t *testing.T) {
	t.Helper()

	var clashes, detached int64
	require.NoError(t, f.db.Raw(duplicatePositionsSQL).Scan(&clashes).Error)
	require.NoError(t, f.db.Model(&model.Task{}).Where("position < 0").Count(&detached).Error)
	assert.Zero(t, clashes, "duplicate (column_id, position) pairs")
	assert.Zero(t, detached, "tasks left at the detached position")
}

// titles returns the column's task titles in position order and checks that
// the positions are exactly 0..n-1.
func (f *fixture) titles(t *testing.T, columnID uuid.UUID) []string {
	t.Helper()

	tasks, err := f.tasks.GetByColumnID(context.Background(), columnID)
	require.NoError(t, err)

	titles := make([]string, len(tasks))
	for i, task := range tasks {
		assert.Equal(t, i, task.Position, "column %s is not dense at %q", columnID, task.Title)
		titles[i] = task.Title
	}
	return titles
}
