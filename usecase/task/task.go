package task

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

// DueDateLayout is the accepted due date input format.
const DueDateLayout = "2006-01-02"

// List option values accepted from the query string.
const (
	FilterAll       = "all"
	FilterActive    = "active"
	FilterCompleted = "completed"
)

// ListOptions carries raw query values; unknown filter and sort values
// fall back to their defaults.
type ListOptions struct {
	Filter string
	Sort   string
	Search string
}

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

// List returns the user's tasks, filtered, searched and ordered.
func (uc *UseCase) List(ctx context.Context, userID string, opts ListOptions) ([]domain.Task, error) {
	filter := repository.TaskFilter{
		UserID: userID,
		Search: strings.TrimSpace(opts.Search),
		Sort:   normalizeSort(opts.Sort),
	}

	switch opts.Filter {
	case FilterActive:
		completed := false
		filter.Completed = &completed
	case FilterCompleted:
		completed := true
		filter.Completed = &completed
	}

	return uc.tasks.List(ctx, filter)
}

// Get loads a single owned task, for the edit form.
func (uc *UseCase) Get(ctx context.Context, id, userID string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id, userID)
}

// Create validates and stores a new task owned by userID.
func (uc *UseCase) Create(ctx context.Context, userID, content, dueDate string) (*domain.Task, error) {
	cleaned, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	due, err := parseDueDate(dueDate)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		UserID:  userID,
		Content: cleaned,
		DueDate: due,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("task created", zap.String("task_id", created.ID), zap.String("user_id", userID))
	return created, nil
}

// Update applies new content and due date to an owned task. A blank due
// date clears any stored one; an invalid one leaves the task unchanged.
func (uc *UseCase) Update(ctx context.Context, id, userID, content, dueDate string) (*domain.Task, error) {
	cleaned, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	due, err := parseDueDate(dueDate)
	if err != nil {
		return nil, err
	}

	task, err := uc.tasks.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	task.Content = cleaned
	task.DueDate = due

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes an owned task.
func (uc *UseCase) Delete(ctx context.Context, id, userID string) error {
	if err := uc.tasks.Delete(ctx, id, userID); err != nil {
		return err
	}
	uc.logger.Info("task deleted", zap.String("task_id", id), zap.String("user_id", userID))
	return nil
}

// Toggle flips the completion flag and returns the task in its new state.
func (uc *UseCase) Toggle(ctx context.Context, id, userID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func validateContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", domain.NewError(domain.ErrCodeInvalid, "task content cannot be empty")
	}
	if utf8.RuneCountInString(content) > domain.MaxContentLength {
		return "", domain.NewError(domain.ErrCodeInvalid, "task content cannot exceed 200 characters")
	}
	return content, nil
}

func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DueDateLayout, raw)
	if err != nil {
		return nil, domain.NewError(domain.ErrCodeInvalid, "due date must be in YYYY-MM-DD format")
	}
	return &parsed, nil
}

func normalizeSort(sort string) repository.TaskSort {
	switch repository.TaskSort(sort) {
	case repository.SortDateAsc:
		return repository.SortDateAsc
	case repository.SortAlpha:
		return repository.SortAlpha
	default:
		return repository.SortDateDesc
	}
}
