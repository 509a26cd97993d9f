package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/model"
	"taskboard/internal/server"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:  "0",
		JWTExpiry:   time.Hour,
		BoardTTL:    time.Minute,
		ShutdownTTL: time.Second,
	}
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "server.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Board{}, &model.Column{}, &model.Task{}))
	return db
}

func setupServer(t *testing.T, cfg *config.Config) (*server.Server, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log, _ := logtest.NewNullLogger()
	s, err := server.New(cfg, setupDB(t), rdb, log)
	require.NoError(t, err)
	return s, mr
}

func call(t *testing.T, s *server.Server, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), out), resp.Body.String())
	}
	return resp.Code
}

func taskTitles(column handler.ColumnResponse) []string {
	titles := make([]string, 0, len(column.Tasks))
	for _, task := range column.Tasks {
		titles = append(titles, task.Title)
	}
	return titles
}

func TestHealthz(t *testing.T) {
	s, _ := setupServer(t, testConfig())

	var body map[string]string
	code := call(t, s, http.MethodGet, "/healthz", "", nil, &body)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestHealthz_RedisDown(t *testing.T) {
	s, mr := setupServer(t, testConfig())
	mr.Close()

	code := call(t, s, http.MethodGet, "/healthz", "", nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestBoardLifecycle(t *testing.T) {
	s, mr := setupServer(t, testConfig())

	var board handler.BoardResponse
	require.Equal(t, http.StatusCreated, call(t, s, http.MethodPost, "/boards", "",
		handler.CreateBoardRequest{Title: "Release"}, &board))
	require.Len(t, board.Columns, 3)
	todo, doing := board.Columns[0], board.Columns[1]

	ids := map[string]string{}
	for _, title := range []string{"A", "B", "C"} {
		var task handler.TaskResponse
		require.Equal(t, http.StatusCreated, call(t, s, http.MethodPost, "/tasks", "",
			handler.TaskRequest{Title: title, ColumnID: todo.ID}, &task))
		assert.Equal(t, "MEDIUM", task.Priority)
		ids[title] = task.ID
	}

	var view handler.BoardResponse
	require.Equal(t, http.StatusOK, call(t, s, http.MethodGet, "/boards/"+board.ID, "", nil, &view))
	assert.Equal(t, []string{"A", "B", "C"}, taskTitles(view.Columns[0]))
	assert.True(t, mr.Exists("board:"+board.ID))

	var moved handler.TaskResponse
	require.Equal(t, http.StatusOK, call(t, s, http.MethodPost, "/tasks/"+ids["B"]+"/move", "",
		map[string]interface{}{"column_id": doing.ID, "position": 0}, &moved))
	assert.Equal(t, doing.ID, moved.ColumnID)
	assert.Equal(t, 0, moved.Position)
	assert.False(t, mr.Exists("board:"+board.ID))

	require.Equal(t, http.StatusOK, call(t, s, http.MethodGet, "/boards/"+board.ID, "", nil, &view))
	assert.Equal(t, []string{"A", "C"}, taskTitles(view.Columns[0]))
	assert.Equal(t, []string{"B"}, taskTitles(view.Columns[1]))
	for i, task := range view.Columns[0].Tasks {
		assert.Equal(t, i, task.Position)
	}

	var tasks []handler.TaskResponse
	require.Equal(t, http.StatusOK, call(t, s, http.MethodGet, "/columns/"+todo.ID+"/tasks", "", nil, &tasks))
	assert.Len(t, tasks, 2)

	var errBody handler.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, call(t, s, http.MethodPost, "/tasks", "",
		handler.TaskRequest{Title: "x", ColumnID: todo.ID, Priority: "BOGUS"}, &errBody))
	assert.Equal(t, http.StatusNotFound, call(t, s, http.MethodGet, "/tasks/"+board.ID, "", nil, &errBody))
}

func TestCrossBoardMoveRejected(t *testing.T) {
	s, _ := setupServer(t, testConfig())

	var first, second handler.BoardResponse
	require.Equal(t, http.StatusCreated, call(t, s, http.MethodPost, "/boards", "", handler.CreateBoardRequest{Title: "One"}, &first))
	require.Equal(t, http.StatusCreated, call(t, s, http.MethodPost, "/boards", "", handler.CreateBoardRequest{Title: "Two"}, &second))

	var task handler.TaskResponse
	require.Equal(t, http.StatusCreated, call(t, s, http.MethodPost, "/tasks", "",
		handler.TaskRequest{Title: "Stay", ColumnID: first.Columns[0].ID}, &task))

	code := call(t, s, http.MethodPost, "/tasks/"+task.ID+"/move", "",
		map[string]interface{}{"column_id": second.Columns[0].ID, "position": 0}, nil)

	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAuthEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "test-secret"
	s, _ := setupServer(t, cfg)

	assert.Equal(t, http.StatusOK, call(t, s, http.MethodGet, "/healthz", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, call(t, s, http.MethodGet, "/boards", "", nil, nil))

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	require.NoError(t, err)
	token, err := issuer.GenerateToken("board-ui")
	require.NoError(t, err)

	var boards []handler.BoardResponse
	assert.Equal(t, http.StatusOK, call(t, s, http.MethodGet, "/boards", token, nil, &boards))
	assert.Empty(t, boards)
}
