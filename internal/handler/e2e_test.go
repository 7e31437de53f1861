package handler

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-app/internal/auth"
	"github.com/BuzzLyutic/todo-app/internal/model"
	"github.com/BuzzLyutic/todo-app/internal/repo"
	"github.com/BuzzLyutic/todo-app/internal/service"
	"github.com/BuzzLyutic/todo-app/internal/testutil"
)

// setupE2EServer поднимает API поверх настоящих Postgres и Redis
func setupE2EServer(t *testing.T) *testServer {
	t.Helper()
	pool, cleanupDB := testutil.SetupTestDB(t)
	t.Cleanup(cleanupDB)
	client, cleanupRedis := testutil.SetupRedis(t)
	t.Cleanup(cleanupRedis)
	testutil.TruncateTables(t, pool)

	logger := zap.NewNop()
	store := repo.NewCachedTaskRepo(repo.NewTaskRepo(pool), client, time.Minute, logger)
	verifier := auth.NewVerifier("e2e-secret")

	h := NewTaskHandler(service.NewSessions(store, logger, service.SessionConfig{ViewCacheSize: 16}), logger)
	srv := httptest.NewServer(NewRouter(h, verifier, logger))
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, verifier: verifier}
}

func TestE2E_FullWorkflow(t *testing.T) {
	srv := setupE2EServer(t)

	// 1. Создание
	created := srv.create(t, "alice", map[string]any{
		"text": "E2E task", "priority": "high", "category": "work", "due_date": "2030-01-01",
	})
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	// 2. Частичное обновление
	resp := srv.do(t, "alice", http.MethodPatch, "/api/tasks/"+created.ID, map[string]any{"text": "Updated E2E task"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.Task](t, resp)
	assert.Equal(t, "Updated E2E task", updated.Text)
	assert.Equal(t, model.PriorityHigh, updated.Priority)
	assert.NotNil(t, updated.UpdatedAt)

	// 3. Отметка выполненной
	resp = srv.do(t, "alice", http.MethodPost, "/api/tasks/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[model.Task](t, resp).Completed)

	// 4. После перезагрузки сессии данные приходят из хранилища
	resp = srv.do(t, "alice", http.MethodPost, "/api/session/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[listResponse](t, resp)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "Updated E2E task", list.Tasks[0].Text)
	assert.True(t, list.Tasks[0].Completed)
	assert.Equal(t, 100, list.CompletionPercent)

	// 5. Чужой пользователь задачу не видит
	bob := decode[listResponse](t, srv.do(t, "bob", http.MethodGet, "/api/tasks", nil))
	assert.Empty(t, bob.Tasks)
	resp = srv.do(t, "bob", http.MethodDelete, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// 6. Удаление
	resp = srv.do(t, "alice", http.MethodDelete, "/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = srv.do(t, "alice", http.MethodPost, "/api/session/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[listResponse](t, resp).Tasks)
}

func TestE2E_ConcurrentCreates(t *testing.T) {
	srv := setupE2EServer(t)

	// прогреваем сессию, чтобы все запросы писали в одну коллекцию
	srv.do(t, "alice", http.MethodGet, "/api/tasks", nil)

	const goroutines = 10
	var wg sync.WaitGroup
	codes := make([]int, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			resp := srv.do(t, "alice", http.MethodPost, "/api/tasks", map[string]any{"text": "parallel"})
			codes[idx] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusCreated, code, "request %d", i)
	}

	local := decode[listResponse](t, srv.do(t, "alice", http.MethodGet, "/api/tasks", nil))
	assert.Len(t, local.Tasks, goroutines)

	resp := srv.do(t, "alice", http.MethodPost, "/api/session/refresh", nil)
	remote := decode[listResponse](t, resp)
	assert.ElementsMatch(t, ids(local.Tasks), ids(remote.Tasks))
}

func TestE2E_HealthCheck(t *testing.T) {
	srv := setupE2EServer(t)

	resp := srv.do(t, "", http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}
