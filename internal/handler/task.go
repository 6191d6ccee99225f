package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/task-manager/internal/auth"
	"github.com/sakif/task-manager/internal/service"
)

// TaskHandler exposes task CRUD over HTTP. Every route is behind
// auth.RequireAuth, and every operation is scoped to the caller the
// middleware put in the context.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// HandleList returns all of the caller's tasks.
//
// HTTP: GET /tasks
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	tasks, err := h.tasks.ListForCaller(r.Context(), claims.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleGet returns a single caller-owned task.
//
// HTTP: GET /tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	task, err := h.tasks.GetByID(r.Context(), chi.URLParam(r, "id"), claims.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleCreate creates a task for the caller.
//
// HTTP: POST /tasks
// Body: {"description": ..., "userId": ...} — userId is required and must be
// the caller's own id.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	var params service.CreateTaskParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), claims.ID, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// HandleUpdate patches a caller-owned task (description/completed only).
//
// HTTP: PUT /tasks/{id}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	var patch service.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), chi.URLParam(r, "id"), claims.ID, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleDelete removes a single caller-owned task.
//
// HTTP: DELETE /tasks/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	if err := h.tasks.Delete(r.Context(), chi.URLParam(r, "id"), claims.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteCompleted bulk-deletes the caller's completed tasks.
//
// HTTP: DELETE /tasks/completed
// The 200 body is the bare count as a JSON number.
func (h *TaskHandler) HandleDeleteCompleted(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	count, err := h.tasks.DeleteCompleted(r.Context(), claims.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, count)
}

// HandleDeleteAll bulk-deletes every task the caller owns.
//
// HTTP: DELETE /tasks/all
func (h *TaskHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, auth.ErrInvalidToken)
		return
	}

	count, err := h.tasks.DeleteAll(r.Context(), claims.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, count)
}
