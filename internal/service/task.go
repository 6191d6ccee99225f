package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/task-manager/internal/apperror"
	"github.com/sakif/task-manager/internal/auth"
	"github.com/sakif/task-manager/internal/model"
	"github.com/sakif/task-manager/internal/repository"
)

// Task description limits, mirrored by the database column width.
const (
	MinDescriptionLength = 3
	MaxDescriptionLength = 125
)

// Per-context authorization messages for task operations.
const (
	msgFetchOtherTasks  = "It's not possible to fetch another users' tasks!"
	msgCreateForOthers  = "It's not possible to create a task for other users!"
	msgCreateNoOwner    = "It's not possible to create a new task without the user's ID!"
	msgAlterTaskID      = "It's not allowed to alter the task's ID!"
	msgAlterTaskOwner   = "It's not allowed to alter the task's owner!"
)

// TaskService handles owner-scoped task CRUD.
type TaskService struct {
	repo   repository.TaskRepository
	logger *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(repo repository.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// CreateTaskParams is the input to Create. AccountID is required and must be
// the caller's own id — tasks can't be created on someone else's behalf.
type CreateTaskParams struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	AccountID   string `json:"userId"`
}

// Create validates and inserts a task owned by the caller.
//
// A missing owner field is a BadRequest (the client forgot it); an owner
// field naming someone else is Unauthorized (the client is trying something).
// The distinction matters: the two cases return different statuses.
func (s *TaskService) Create(ctx context.Context, callerID string, params CreateTaskParams) (*model.Task, error) {
	if params.AccountID == "" {
		return nil, apperror.BadRequest("userId", msgCreateNoOwner)
	}
	if err := auth.RequireOwner(params.AccountID, callerID, msgCreateForOthers); err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:          params.ID,
		Description: params.Description,
		Completed:   params.Completed,
		AccountID:   params.AccountID,
	}

	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		slog.String("id", task.ID),
		slog.String("accountID", task.AccountID),
	)

	return task, nil
}

// ListForCaller returns the caller's tasks in insertion order. An empty list
// is a normal result.
func (s *TaskService) ListForCaller(ctx context.Context, callerID string) ([]model.Task, error) {
	tasks, err := s.repo.ListByAccount(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("service: listing tasks for account %s: %w", callerID, err)
	}
	return tasks, nil
}

// GetByID fetches a task and enforces ownership before returning it.
// A missing task is NotFound; an existing task owned by someone else is
// Unauthorized with the fixed fetch message.
func (s *TaskService) GetByID(ctx context.Context, id, callerID string) (*model.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.RequireOwner(task.AccountID, callerID, msgFetchOtherTasks); err != nil {
		return nil, err
	}

	return task, nil
}

// TaskPatch is the patch applied by Update. Description and the immutable
// fields use "" for "not submitted"; Completed is a pointer because false is
// a meaningful value — a nil pointer means the field wasn't in the request.
type TaskPatch struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   *bool  `json:"completed"`
	AccountID   string `json:"userId"`
}

// Update applies a patch to a caller-owned task. Only description and
// completed may change; a patch that tries to move the id or the owner is
// rejected outright.
func (s *TaskService) Update(ctx context.Context, id, callerID string, patch TaskPatch) (*model.Task, error) {
	task, err := s.GetByID(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if err := auth.RequireUnchanged(patch.ID, task.ID, msgAlterTaskID); err != nil {
		return nil, err
	}
	if err := auth.RequireUnchanged(patch.AccountID, task.AccountID, msgAlterTaskOwner); err != nil {
		return nil, err
	}

	if patch.Description != "" {
		task.Description = patch.Description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}

	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task updated", slog.String("id", task.ID))

	return task, nil
}

// Delete removes a single caller-owned task.
func (s *TaskService) Delete(ctx context.Context, id, callerID string) error {
	// Fetch + ownership first so deleting someone else's task fails the same
	// way fetching it does.
	if _, err := s.GetByID(ctx, id, callerID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("task deleted", slog.String("id", id))

	return nil
}

// DeleteCompleted removes the caller's completed tasks and returns the count.
// Calling it again right away legitimately returns zero.
func (s *TaskService) DeleteCompleted(ctx context.Context, callerID string) (int64, error) {
	count, err := s.repo.DeleteCompleted(ctx, callerID)
	if err != nil {
		return 0, fmt.Errorf("service: deleting completed tasks for account %s: %w", callerID, err)
	}

	s.logger.Info("completed tasks deleted",
		slog.String("accountID", callerID),
		slog.Int64("count", count),
	)

	return count, nil
}

// DeleteAll removes every task the caller owns and returns the count.
func (s *TaskService) DeleteAll(ctx context.Context, callerID string) (int64, error) {
	count, err := s.repo.DeleteAll(ctx, callerID)
	if err != nil {
		return 0, fmt.Errorf("service: deleting tasks for account %s: %w", callerID, err)
	}

	s.logger.Info("all tasks deleted",
		slog.String("accountID", callerID),
		slog.Int64("count", count),
	)

	return count, nil
}

// validateTask enforces the description rules with the legacy message.
func validateTask(t *model.Task) error {
	if len(t.Description) < MinDescriptionLength || len(t.Description) > MaxDescriptionLength {
		return apperror.BadRequest("description",
			fmt.Sprintf("The value %q is not a valid description!", t.Description))
	}
	return nil
}
