package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id, userID string) (*domain.Task, error) {
	const query = `
	SELECT id, user_id, content, completed, date_created, due_date
	FROM tasks
	WHERE id = $1 AND user_id = $2
	`
	return scanTask(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT id, user_id, content, completed, date_created, due_date
	FROM tasks
	WHERE user_id = $1
	  AND ($2::boolean IS NULL OR completed = $2)
	  AND ($3 = '' OR content ILIKE '%' || $3 || '%')
	ORDER BY ` + orderClause(filter.Sort)

	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.Completed, escapeLike(filter.Search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, content, completed, due_date)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING date_created
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Content,
		task.Completed,
		task.DueDate,
	).Scan(&task.DateCreated); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET content = $3,
		completed = $4,
		due_date = $5
	WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query,
		task.ID,
		task.UserID,
		task.Content,
		task.Completed,
		task.DueDate,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) CountByStatus(ctx context.Context, userID string) (repository.StatusCounts, error) {
	const query = `
	SELECT COUNT(*) FILTER (WHERE NOT completed),
	       COUNT(*) FILTER (WHERE completed)
	FROM tasks
	WHERE user_id = $1
	`
	var counts repository.StatusCounts
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&counts.Open, &counts.Completed); err != nil {
		return repository.StatusCounts{}, err
	}
	return counts, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Content,
		&task.Completed,
		&task.DateCreated,
		&task.DueDate,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// orderClause maps a whitelisted sort value to SQL. Unknown values fall
// back to newest-first.
func orderClause(sort repository.TaskSort) string {
	switch sort {
	case repository.SortDateAsc:
		return "date_created ASC"
	case repository.SortAlpha:
		return "LOWER(content) ASC"
	default:
		return "date_created DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(search string) string {
	return likeEscaper.Replace(search)
}
