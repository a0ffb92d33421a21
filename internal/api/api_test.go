package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbichler/pulse/internal/models"
	"github.com/mbichler/pulse/internal/snapshot"
	"github.com/mbichler/pulse/internal/store"
)

func setupTestServer(t *testing.T) (*Server, store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	snapshotPath := filepath.Join(dir, "live-status.json")

	s, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })

	return NewServer(s, snapshotPath), s, snapshotPath
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetStatus_NoSnapshotDegradesToOffline(t *testing.T) {
	srv, _, _ := setupTestServer(t)
	w := doJSON(t, srv.Router(), "GET", "/api/v1/status", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var snap models.StatusSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.False(t, snap.Online)
	assert.Equal(t, models.StatusOffline, snap.Status)
	assert.NotNil(t, snap.Activities)
}

func TestGetStatus_ServesPublished(t *testing.T) {
	srv, _, snapshotPath := setupTestServer(t)

	task := "Tool: read — Datei: /a.txt"
	p := snapshot.NewPublisher(snapshotPath)
	require.NoError(t, p.Publish(&models.StatusSnapshot{
		Online:      true,
		LastUpdate:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Status:      models.StatusActive,
		CurrentTask: &task,
		Model:       "opus",
		Activities:  []models.Activity{},
	}))

	w := doJSON(t, srv.Router(), "GET", "/api/v1/status", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var snap models.StatusSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.True(t, snap.Online)
	assert.Equal(t, models.StatusActive, snap.Status)
	require.NotNil(t, snap.CurrentTask)
	assert.Equal(t, task, *snap.CurrentTask)
}

func TestSnapshotFile_NotFound(t *testing.T) {
	srv, _, _ := setupTestServer(t)
	w := doJSON(t, srv.Router(), "GET", "/data/live-status.json", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSnapshotFile_ServedWithNoStore(t *testing.T) {
	srv, _, snapshotPath := setupTestServer(t)

	p := snapshot.NewPublisher(snapshotPath)
	require.NoError(t, p.Publish(&models.StatusSnapshot{
		Online:     false,
		Status:     models.StatusOffline,
		Activities: []models.Activity{},
	}))

	w := doJSON(t, srv.Router(), "GET", "/data/live-status.json?t=12345", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), `"Offline"`)
}

func TestDataDocument_Endpoint(t *testing.T) {
	srv, s, _ := setupTestServer(t)
	ctx := context.Background()

	require.NoError(t, s.CreateProject(ctx, &models.Project{Key: "web", Name: "Website", Progress: 50}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{Title: "agent thing", Owner: models.OwnerAgent}))

	w := doJSON(t, srv.Router(), "GET", "/data/tasks.json", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var doc models.DataDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Len(t, doc.Tasks.Agent, 1)
	assert.Contains(t, doc.Projects, "web")
}

func TestTaskCRUD_API(t *testing.T) {
	srv, _, _ := setupTestServer(t)
	router := srv.Router()

	// Create
	w := doJSON(t, router, "POST", "/api/v1/tasks", `{"title":"review PR","owner":"operator","priority":"high"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var task models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	require.NotEmpty(t, task.ID)

	// Get
	w = doJSON(t, router, "GET", "/api/v1/tasks/"+task.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Update
	w = doJSON(t, router, "PUT", "/api/v1/tasks/"+task.ID, `{"status":"in_progress"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(t, models.TaskStatusInProgress, task.Status)

	// Toggle
	w = doJSON(t, router, "POST", "/api/v1/tasks/"+task.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(t, models.TaskStatusDone, task.Status)

	// List with filter
	w = doJSON(t, router, "GET", "/api/v1/tasks?owner=operator", "")
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []*models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 1)

	// Delete
	w = doJSON(t, router, "DELETE", "/api/v1/tasks/"+task.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/tasks/"+task.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTask_RequiresTitle(t *testing.T) {
	srv, _, _ := setupTestServer(t)
	w := doJSON(t, srv.Router(), "POST", "/api/v1/tasks", `{"owner":"agent"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectCRUD_API(t *testing.T) {
	srv, _, _ := setupTestServer(t)
	router := srv.Router()

	w := doJSON(t, router, "POST", "/api/v1/projects", `{"key":"web","name":"Website","color":"#4f9"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "PUT", "/api/v1/projects/web", `{"progress":75}`)
	require.Equal(t, http.StatusOK, w.Code)

	var p models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, 75, p.Progress)

	w = doJSON(t, router, "GET", "/api/v1/projects", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "DELETE", "/api/v1/projects/web", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/projects/web", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProject_RequiresKey(t *testing.T) {
	srv, _, _ := setupTestServer(t)
	w := doJSON(t, srv.Router(), "POST", "/api/v1/projects", `{"name":"nameless"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSHeaders(t *testing.T) {
	srv, _, _ := setupTestServer(t)
	w := doJSON(t, srv.Router(), "GET", "/api/v1/tasks", "")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDashboardIndex_Served(t *testing.T) {
	srv, _, _ := setupTestServer(t)
	w := doJSON(t, srv.Router(), "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pulse")
}
