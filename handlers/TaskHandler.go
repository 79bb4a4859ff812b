// Package handlers provides the HTTP request handlers for TaskWheelService.
//
// Every task endpoint requires a bearer token; the caller id resolved by RequireAuth
// is the owner every task operation is scoped to. Responses use the response.Message
// envelope and errors are mapped onto status codes by writeError.
package handlers

import (
	"net/http"
	"strconv"

	"TaskWheelService/commands"
	"TaskWheelService/models"
	"TaskWheelService/response"
	"TaskWheelService/services"
	"TaskWheelService/validation"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// TaskHandler is the HTTP layer over services.TaskService.
type TaskHandler struct {
	tasks *services.TaskService
	log   logrus.FieldLogger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks *services.TaskService, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

// Routes mounts the task endpoints on r.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Get("/", h.ListTasks)
	r.Post("/", h.CreateTask)
	r.Get("/stats", h.Stats)
	r.Get("/random", h.RandomTask)
	r.Get("/{id}", h.GetTask)
	r.Put("/{id}", h.UpdateTask)
	r.Delete("/{id}", h.DeleteTask)
}

type taskData struct {
	Task *models.Task `json:"task"`
}

type taskListData struct {
	Tasks      []*models.Task    `json:"tasks"`
	Pagination models.Pagination `json:"pagination"`
}

// ListTasks handles GET /api/tasks.
// It accepts the query parameters "status", "category", "page", "limit", "sortBy" and "order";
// "All" in status or category means unfiltered.
//
// Example response:
//
//	{
//	  "success": true,
//	  "data": {
//	    "tasks": [ ... ],
//	    "pagination": {"currentPage": 1, "totalPages": 3, "totalItems": 25, "hasNext": true, "hasPrev": false}
//	  }
//	}
func (h *TaskHandler) ListTasks(res http.ResponseWriter, req *http.Request) {
	owner, _ := OwnerFromContext(req.Context())
	q := req.URL.Query()

	cmd := commands.ListTasksCommand{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		SortBy:   q.Get("sortBy"),
		Order:    q.Get("order"),
	}
	var fieldErrs []validation.FieldError
	var ok bool
	if cmd.Page, ok = positiveInt(q.Get("page")); !ok {
		fieldErrs = append(fieldErrs, validation.FieldError{Field: "page", Message: "Page must be a positive integer"})
	}
	if cmd.PageSize, ok = positiveInt(q.Get("limit")); !ok {
		fieldErrs = append(fieldErrs, validation.FieldError{Field: "limit", Message: "Limit must be between 1 and 100"})
	}
	if len(fieldErrs) > 0 {
		writeError(res, req, h.log, "list tasks", services.NewValidationError(fieldErrs...))
		return
	}

	page, err := h.tasks.ListTasks(req.Context(), owner, cmd)
	if err != nil {
		writeError(res, req, h.log, "list tasks", err)
		return
	}
	items := page.Items
	if items == nil {
		items = []*models.Task{}
	}
	_ = response.Write(res, http.StatusOK, response.OK("", taskListData{Tasks: items, Pagination: page.Pagination}))
}

// CreateTask handles POST /api/tasks.
//
// Example request body:
//
//	{
//	  "title": "Buy milk",
//	  "description": "Two litres",
//	  "category": "Personal",
//	  "dueDate": "2026-10-25"
//	}
//
// The task is created in the initial status and returned with status 201.
func (h *TaskHandler) CreateTask(res http.ResponseWriter, req *http.Request) {
	owner, _ := OwnerFromContext(req.Context())

	var cmd commands.CreateTaskCommand
	if err := decodeJSON(res, req, &cmd); err != nil {
		writeError(res, req, h.log, "create task", err)
		return
	}
	task, err := h.tasks.CreateTask(req.Context(), owner, cmd)
	if err != nil {
		writeError(res, req, h.log, "create task", err)
		return
	}
	_ = response.Write(res, http.StatusCreated, response.OK("Task created successfully", taskData{Task: task}))
}

// GetTask handles GET /api/tasks/{id}.
// A task owned by someone else is reported as not found.
func (h *TaskHandler) GetTask(res http.ResponseWriter, req *http.Request) {
	owner, _ := OwnerFromContext(req.Context())

	task, err := h.tasks.GetTask(req.Context(), owner, chi.URLParam(req, "id"))
	if err != nil {
		writeError(res, req, h.log, "get task by id", err)
		return
	}
	_ = response.Write(res, http.StatusOK, response.OK("", taskData{Task: task}))
}

// UpdateTask handles PUT /api/tasks/{id}.
// Only the fields present in the body change; an empty "dueDate" clears the due date.
func (h *TaskHandler) UpdateTask(res http.ResponseWriter, req *http.Request) {
	owner, _ := OwnerFromContext(req.Context())

	var cmd commands.UpdateTaskCommand
	if err := decodeJSON(res, req, &cmd); err != nil {
		writeError(res, req, h.log, "update task", err)
		return
	}
	task, err := h.tasks.UpdateTask(req.Context(), owner, chi.URLParam(req, "id"), cmd)
	if err != nil {
		writeError(res, req, h.log, "update task", err)
		return
	}
	_ = response.Write(res, http.StatusOK, response.OK("Task updated successfully", taskData{Task: task}))
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(res http.ResponseWriter, req *http.Request) {
	owner, _ := OwnerFromContext(req.Context())

	if err := h.tasks.DeleteTask(req.Context(), owner, chi.URLParam(req, "id")); err != nil {
		writeError(res, req, h.log, "delete task", err)
		return
	}
	_ = response.Write(res, http.StatusOK, response.OK("Task deleted successfully", nil))
}

// RandomTask handles GET /api/tasks/random?category=...
// It spins the wheel over the caller's pending tasks.
func (h *TaskHandler) RandomTask(res http.ResponseWriter, req *http.Request) {
	owner, _ := OwnerFromContext(req.Context())

	cmd := commands.RandomTaskCommand{Category: req.URL.Query().Get("category")}
	task, err := h.tasks.RandomTask(req.Context(), owner, cmd)
	if err != nil {
		writeError(res, req, h.log, "spin task wheel", err)
		return
	}
	_ = response.Write(res, http.StatusOK, response.OK("", taskData{Task: task}))
}

// Stats handles GET /api/tasks/stats.
//
// Example response:
//
//	{
//	  "success": true,
//	  "data": {"statusStats": {"Pending": 2, "Completed": 1}, "categoryStats": {"Work": 3}}
//	}
func (h *TaskHandler) Stats(res http.ResponseWriter, req *http.Request) {
	owner, _ := OwnerFromContext(req.Context())

	stats, err := h.tasks.Stats(req.Context(), owner)
	if err != nil {
		writeError(res, req, h.log, "task statistics", err)
		return
	}
	_ = response.Write(res, http.StatusOK, response.OK("", stats))
}

// positiveInt parses an optional query value. An absent value yields 0.
func positiveInt(v string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
