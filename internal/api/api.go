package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mbichler/pulse/internal/models"
	"github.com/mbichler/pulse/internal/snapshot"
	"github.com/mbichler/pulse/internal/store"
	"github.com/mbichler/pulse/internal/ui"
)

// Server provides the dashboard's HTTP surface: the published live-status
// snapshot plus the static tasks/projects data, with CRUD for the latter.
type Server struct {
	store        store.Store
	snapshotPath string
}

// NewServer creates a new API server reading snapshots from snapshotPath.
func NewServer(s store.Store, snapshotPath string) *Server {
	return &Server{store: s, snapshotPath: snapshotPath}
}

// Router returns an http.Handler for all routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// The file-based consumption contract: the dashboard polls the raw
	// snapshot document with a cache-busting query parameter.
	mux.HandleFunc("GET /data/live-status.json", s.serveSnapshotFile)
	mux.HandleFunc("GET /data/tasks.json", s.serveDataDocument)

	mux.HandleFunc("GET /api/v1/status", s.getStatus)

	mux.HandleFunc("GET /api/v1/tasks", s.listTasks)
	mux.HandleFunc("POST /api/v1/tasks", s.createTask)
	mux.HandleFunc("GET /api/v1/tasks/{id}", s.getTask)
	mux.HandleFunc("PUT /api/v1/tasks/{id}", s.updateTask)
	mux.HandleFunc("DELETE /api/v1/tasks/{id}", s.deleteTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/toggle", s.toggleTask)

	mux.HandleFunc("GET /api/v1/projects", s.listProjects)
	mux.HandleFunc("POST /api/v1/projects", s.createProject)
	mux.HandleFunc("GET /api/v1/projects/{key}", s.getProject)
	mux.HandleFunc("PUT /api/v1/projects/{key}", s.updateProject)
	mux.HandleFunc("DELETE /api/v1/projects/{key}", s.deleteProject)

	// The embedded dashboard takes everything the API routes above do not.
	if handler, err := ui.Handler(); err == nil {
		mux.Handle("/", handler)
	} else {
		slog.Warn("dashboard assets unavailable", "error", err)
	}

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// patchString applies a string value from a JSON patch map to the target if the key is present and non-empty.
func patchString(patch map[string]any, key string, target *string) {
	if v, ok := patch[key]; ok {
		if str, ok := v.(string); ok && str != "" {
			*target = str
		}
	}
}

// --- Status ---

// serveSnapshotFile serves the raw published snapshot. Snapshot polls must
// never be cached; the client additionally busts caches with a query param.
func (s *Server) serveSnapshotFile(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(s.snapshotPath); err != nil {
		writeError(w, http.StatusNotFound, "no snapshot published yet")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, s.snapshotPath)
}

// getStatus decodes the published snapshot and returns it. A missing file
// degrades to a synthetic offline snapshot so the dashboard always renders.
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := snapshot.Load(s.snapshotPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusOK, &models.StatusSnapshot{
				Online:     false,
				LastUpdate: time.Now().UTC(),
				Status:     models.StatusOffline,
				Activities: []models.Activity{},
			})
			return
		}
		slog.Warn("failed to load snapshot", "path", s.snapshotPath, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// --- Data document ---

func (s *Server) serveDataDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.DataDocument(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// --- Tasks ---

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	filter := store.TaskListFilter{
		Owner:   r.URL.Query().Get("owner"),
		Project: r.URL.Query().Get("project"),
		Status:  models.TaskStatus(r.URL.Query().Get("status")),
	}
	tasks, err := s.store.ListTasks(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if task.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := s.store.CreateTask(r.Context(), &task); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, &task)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	patchString(patch, "title", &task.Title)
	patchString(patch, "owner", &task.Owner)
	patchString(patch, "project", &task.Project)
	patchString(patch, "completed", &task.Completed)

	var status, priority string
	patchString(patch, "status", &status)
	patchString(patch, "priority", &priority)
	if status != "" {
		task.Status = models.TaskStatus(status)
	}
	if priority != "" {
		task.Priority = models.TaskPriority(priority)
	}

	if err := s.store.UpdateTask(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.ToggleTask(r.Context(), r.PathValue("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// --- Projects ---

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key string `json:"key"`
		models.Project
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	p := body.Project
	p.Key = body.Key
	if p.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	if p.Name == "" {
		p.Name = p.Key
	}
	if err := s.store.CreateProject(r.Context(), &p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, &p)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProject(r.Context(), r.PathValue("key"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProject(r.Context(), r.PathValue("key"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	patchString(patch, "name", &p.Name)
	patchString(patch, "color", &p.Color)
	patchString(patch, "status", &p.Status)
	if v, ok := patch["progress"]; ok {
		if f, ok := v.(float64); ok {
			p.Progress = int(f)
		}
	}

	if err := s.store.UpdateProject(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProject(r.Context(), r.PathValue("key")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
