package repository

import (
	"context"

	"github.com/taskhive/backend/domain"
)

// TaskSort enumerates the supported list orderings.
type TaskSort string

const (
	SortDateDesc TaskSort = "date_desc"
	SortDateAsc  TaskSort = "date_asc"
	SortAlpha    TaskSort = "alpha"
)

// TaskFilter scopes a listing. UserID is mandatory: every task query is
// owner-scoped, there is no cross-user listing path.
type TaskFilter struct {
	UserID    string
	Completed *bool
	Search    string
	Sort      TaskSort
}

// StatusCounts summarizes a user's tasks by completion state.
type StatusCounts struct {
	Open      int `json:"open"`
	Completed int `json:"completed"`
}

// TaskRepository persists tasks. Every lookup and mutation takes the
// owner's user id and must return domain.ErrTaskNotFound when the id
// does not resolve to a task owned by that user.
type TaskRepository interface {
	GetByID(ctx context.Context, id, userID string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id, userID string) error
	CountByStatus(ctx context.Context, userID string) (StatusCounts, error)
}
