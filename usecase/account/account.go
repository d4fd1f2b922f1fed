package account

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

// Summary is the account page payload: the user plus task counts.
type Summary struct {
	User  *domain.User            `json:"user"`
	Tasks repository.StatusCounts `json:"tasks"`
}

type UseCase struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) Summary(ctx context.Context, userID string) (*Summary, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := uc.tasks.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Summary{User: user, Tasks: counts}, nil
}
