package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbichler/pulse/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Running migrate again should be a no-op
	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

// --- Task CRUD ---

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Create
	task := &models.Task{
		Title:    "wire up the deploy hook",
		Owner:    models.OwnerAgent,
		Project:  "infra",
		Priority: models.TaskPriorityHigh,
	}
	require.NoError(t, s.CreateTask(ctx, task))
	assert.NotEmpty(t, task.ID, "create assigns a ULID")
	assert.Equal(t, models.TaskStatusTodo, task.Status, "create defaults status to todo")

	// Get
	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "wire up the deploy hook", got.Title)
	assert.Equal(t, models.TaskPriorityHigh, got.Priority)

	// Update
	got.Status = models.TaskStatusInProgress
	require.NoError(t, s.UpdateTask(ctx, got))
	got, err = s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, got.Status)

	// Delete
	require.NoError(t, s.DeleteTask(ctx, task.ID))
	_, err = s.GetTask(ctx, task.ID)
	assert.Error(t, err)
}

func TestTaskDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &models.Task{Title: "minimal"}
	require.NoError(t, s.CreateTask(ctx, task))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OwnerAgent, got.Owner)
	assert.Equal(t, models.TaskStatusTodo, got.Status)
	assert.Equal(t, models.TaskPriorityMedium, got.Priority)
}

func TestListTasks_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTask(ctx, &models.Task{Title: "a", Owner: models.OwnerAgent, Project: "web"}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{Title: "b", Owner: models.OwnerOperator, Project: "web"}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{Title: "c", Owner: models.OwnerAgent, Project: "infra", Status: models.TaskStatusBlocked}))

	all, err := s.ListTasks(ctx, TaskListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	agents, err := s.ListTasks(ctx, TaskListFilter{Owner: models.OwnerAgent})
	require.NoError(t, err)
	assert.Len(t, agents, 2)

	web, err := s.ListTasks(ctx, TaskListFilter{Project: "web"})
	require.NoError(t, err)
	assert.Len(t, web, 2)

	blocked, err := s.ListTasks(ctx, TaskListFilter{Status: models.TaskStatusBlocked})
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, "c", blocked[0].Title)

	both, err := s.ListTasks(ctx, TaskListFilter{Owner: models.OwnerAgent, Project: "web"})
	require.NoError(t, err)
	assert.Len(t, both, 1)
}

func TestToggleTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &models.Task{Title: "flip me"}
	require.NoError(t, s.CreateTask(ctx, task))

	toggled, err := s.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, toggled.Status)
	assert.NotEmpty(t, toggled.Completed, "done tasks get a completion date")

	toggled, err = s.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusTodo, toggled.Status)
	assert.Empty(t, toggled.Completed, "reopening clears the completion date")
}

// --- Project CRUD ---

func TestProjectCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &models.Project{Key: "web", Name: "Website", Color: "#4f9", Progress: 40, Status: "active"}
	require.NoError(t, s.CreateProject(ctx, p))

	got, err := s.GetProject(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, "Website", got.Name)
	assert.Equal(t, 40, got.Progress)

	got.Progress = 85
	require.NoError(t, s.UpdateProject(ctx, got))
	got, err = s.GetProject(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, 85, got.Progress)

	require.NoError(t, s.DeleteProject(ctx, "web"))
	_, err = s.GetProject(ctx, "web")
	assert.Error(t, err)
}

func TestCreateProject_RequiresKey(t *testing.T) {
	s := newTestStore(t)
	err := s.CreateProject(context.Background(), &models.Project{Name: "no key"})
	assert.Error(t, err)
}

func TestDataDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateProject(ctx, &models.Project{Key: "web", Name: "Website", Progress: 60}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{Title: "agent work", Owner: models.OwnerAgent, Project: "web"}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{Title: "operator work", Owner: models.OwnerOperator}))

	doc, err := s.DataDocument(ctx)
	require.NoError(t, err)

	require.Len(t, doc.Tasks.Agent, 1)
	assert.Equal(t, "agent work", doc.Tasks.Agent[0].Title)
	require.Len(t, doc.Tasks.Operator, 1)
	require.Contains(t, doc.Projects, "web")
	assert.Equal(t, 60, doc.Projects["web"].Progress)
}

func TestDataDocument_EmptyEncodesAsArrays(t *testing.T) {
	s := newTestStore(t)

	doc, err := s.DataDocument(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, doc.Tasks.Agent)
	assert.NotNil(t, doc.Tasks.Operator)
	assert.NotNil(t, doc.Projects)
}
