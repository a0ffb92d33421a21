package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mbichler/pulse/internal/models"
	"github.com/mbichler/pulse/internal/snapshot"
	"github.com/mbichler/pulse/internal/store"
)

// Server wraps the pulse data layer and exposes it as MCP tools.
type Server struct {
	store        store.Store
	snapshotPath string
}

// NewServer creates the MCP server wrapper.
func NewServer(s store.Store, snapshotPath string) *Server {
	return &Server{
		store:        s,
		snapshotPath: snapshotPath,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("pulse", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.statusTool())
	srv.AddTool(s.listTasksTool())
	srv.AddTool(s.createTaskTool())
	srv.AddTool(s.updateTaskTool())
	srv.AddTool(s.toggleTaskTool())
	srv.AddTool(s.listProjectsTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// pulse_status
func (s *Server) statusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("pulse_status",
		mcp.WithDescription("Get the agent's current live status snapshot: online flag, status (Active/WaitingForInput/Idle/Offline), current task, model, context usage, and recent activities most recent first."),
	)
	return tool, s.handleStatus
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := snapshot.Load(s.snapshotPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			snap = &models.StatusSnapshot{
				Online:     false,
				LastUpdate: time.Now().UTC(),
				Status:     models.StatusOffline,
				Activities: []models.Activity{},
			}
		} else {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load snapshot: %v", err)), nil
		}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal snapshot: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// pulse_list_tasks
func (s *Server) listTasksTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("pulse_list_tasks",
		mcp.WithDescription("List tasks on the shared board, optionally filtered by owner, project, and/or status. Returns a JSON array of tasks."),
		mcp.WithString("owner", mcp.Description("Owner filter: agent or operator")),
		mcp.WithString("project", mcp.Description("Project key to filter by")),
		mcp.WithString("status", mcp.Description("Status filter: todo, in_progress, blocked, backlog, done")),
	)
	return tool, s.handleListTasks
}

func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := store.TaskListFilter{
		Owner:   request.GetString("owner", ""),
		Project: request.GetString("project", ""),
		Status:  models.TaskStatus(request.GetString("status", "")),
	}

	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list tasks: %v", err)), nil
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal tasks: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// pulse_create_task
func (s *Server) createTaskTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("pulse_create_task",
		mcp.WithDescription("Create a new task on the shared board. Returns the created task as JSON."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("owner", mcp.Description("Task owner: agent (default) or operator")),
		mcp.WithString("project", mcp.Description("Project key the task belongs to")),
		mcp.WithString("priority", mcp.Description("Task priority: low, medium (default), high")),
	)
	return tool, s.handleCreateTask
}

func (s *Server) handleCreateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}

	task := &models.Task{
		Title:    title,
		Owner:    request.GetString("owner", ""),
		Project:  request.GetString("project", ""),
		Priority: models.TaskPriority(request.GetString("priority", "")),
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create task: %v", err)), nil
	}

	data, err := json.Marshal(task)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal task: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// pulse_update_task
func (s *Server) updateTaskTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("pulse_update_task",
		mcp.WithDescription("Update an existing task. Provide the task ID and at least one field to update. Returns the updated task as JSON."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("status", mcp.Description("New status: todo, in_progress, blocked, backlog, done")),
		mcp.WithString("priority", mcp.Description("New priority: low, medium, high")),
		mcp.WithString("project", mcp.Description("New project key")),
	)
	return tool, s.handleUpdateTask
}

func (s *Server) handleUpdateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: task_id"), nil
	}

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("task not found: %s", taskID)), nil
	}

	updated := false

	if title := request.GetString("title", ""); title != "" {
		task.Title = title
		updated = true
	}
	if status := request.GetString("status", ""); status != "" {
		task.Status = models.TaskStatus(status)
		updated = true
		if task.Status == models.TaskStatusDone && task.Completed == "" {
			task.Completed = time.Now().UTC().Format("2006-01-02")
		}
	}
	if priority := request.GetString("priority", ""); priority != "" {
		task.Priority = models.TaskPriority(priority)
		updated = true
	}
	if project := request.GetString("project", ""); project != "" {
		task.Project = project
		updated = true
	}

	if !updated {
		return mcp.NewToolResultError("no fields provided to update; specify at least one of: title, status, priority, project"), nil
	}

	if err := s.store.UpdateTask(ctx, task); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update task: %v", err)), nil
	}

	data, err := json.Marshal(task)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal task: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// pulse_toggle_task
func (s *Server) toggleTaskTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("pulse_toggle_task",
		mcp.WithDescription("Toggle a task between done and todo. Returns the updated task as JSON."),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
	)
	return tool, s.handleToggleTask
}

func (s *Server) handleToggleTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: task_id"), nil
	}

	task, err := s.store.ToggleTask(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle task: %v", err)), nil
	}

	data, err := json.Marshal(task)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal task: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// pulse_list_projects
func (s *Server) listProjectsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("pulse_list_projects",
		mcp.WithDescription("List all projects on the board. Returns a JSON array with key, name, color, progress, and status per project."),
	)
	return tool, s.handleListProjects
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list projects: %v", err)), nil
	}

	type projectOut struct {
		Key      string `json:"key"`
		Name     string `json:"name"`
		Color    string `json:"color"`
		Progress int    `json:"progress"`
		Status   string `json:"status"`
	}

	out := make([]projectOut, len(projects))
	for i, p := range projects {
		out[i] = projectOut{
			Key:      p.Key,
			Name:     p.Name,
			Color:    p.Color,
			Progress: p.Progress,
			Status:   p.Status,
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal projects: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
