package task

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

// memTaskRepo mirrors the Postgres repository semantics in memory:
// owner-scoped lookups, case-insensitive substring search, whitelisted
// ordering.
type memTaskRepo struct {
	tasks map[string]domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]domain.Task)}
}

func (r *memTaskRepo) GetByID(ctx context.Context, id, userID string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	copied := task
	return &copied, nil
}

func (r *memTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var tasks []domain.Task
	for _, task := range r.tasks {
		if task.UserID != filter.UserID {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(task.Content), strings.ToLower(filter.Search)) {
			continue
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		switch filter.Sort {
		case repository.SortDateAsc:
			return tasks[i].DateCreated.Before(tasks[j].DateCreated)
		case repository.SortAlpha:
			return strings.ToLower(tasks[i].Content) < strings.ToLower(tasks[j].Content)
		default:
			return tasks[i].DateCreated.After(tasks[j].DateCreated)
		}
	})
	return tasks, nil
}

func (r *memTaskRepo) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.DateCreated.IsZero() {
		task.DateCreated = time.Now()
	}
	r.tasks[task.ID] = *task
	return task, nil
}

func (r *memTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return domain.ErrTaskNotFound
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *memTaskRepo) Delete(ctx context.Context, id, userID string) error {
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) CountByStatus(ctx context.Context, userID string) (repository.StatusCounts, error) {
	var counts repository.StatusCounts
	for _, task := range r.tasks {
		if task.UserID != userID {
			continue
		}
		if task.Completed {
			counts.Completed++
		} else {
			counts.Open++
		}
	}
	return counts, nil
}

func newTestUseCase() (*UseCase, *memTaskRepo) {
	repo := newMemTaskRepo()
	return New(repo, nil), repo
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		dueDate string
		wantErr bool
	}{
		{name: "valid", content: "Buy milk", wantErr: false},
		{name: "valid with due date", content: "Buy milk", dueDate: "2025-03-10", wantErr: false},
		{name: "empty", content: "", wantErr: true},
		{name: "whitespace only", content: "   \t  ", wantErr: true},
		{name: "exactly 200 chars", content: strings.Repeat("a", 200), wantErr: false},
		{name: "201 chars", content: strings.Repeat("a", 201), wantErr: true},
		{name: "bad due date format", content: "Buy milk", dueDate: "10/03/2025", wantErr: true},
		{name: "nonsense due date", content: "Buy milk", dueDate: "not-a-date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, repo := newTestUseCase()
			_, err := uc.Create(context.Background(), "user-1", tt.content, tt.dueDate)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
					t.Fatalf("expected invalid error, got %v", err)
				}
				if len(repo.tasks) != 0 {
					t.Fatal("rejected create must not persist a task")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(repo.tasks) != 1 {
				t.Fatalf("expected 1 task stored, got %d", len(repo.tasks))
			}
		})
	}
}

func TestCreateTrimsContentAndDefaults(t *testing.T) {
	uc, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "user-1", "  Buy milk  ", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Content != "Buy milk" {
		t.Errorf("content not trimmed: %q", created.Content)
	}
	if created.Completed {
		t.Error("new task must start incomplete")
	}
	if created.DueDate != nil {
		t.Error("omitted due date must stay empty")
	}
}

func TestDueDateRoundTrip(t *testing.T) {
	uc, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "user-1", "Buy milk", "2025-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.DueDate == nil {
		t.Fatal("due date missing after create")
	}
	want := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	if !created.DueDate.Equal(want) {
		t.Errorf("due date = %v, want %v", created.DueDate, want)
	}

	fetched, err := uc.Get(context.Background(), created.ID, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetched.DueDate == nil || !fetched.DueDate.Equal(want) {
		t.Errorf("due date after read = %v, want %v", fetched.DueDate, want)
	}
}

func TestUpdateClearsDueDate(t *testing.T) {
	uc, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "user-1", "Buy milk", "2025-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := uc.Update(context.Background(), created.ID, "user-1", "Buy oat milk", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.DueDate != nil {
		t.Error("blank due date must clear the stored one")
	}
	if updated.Content != "Buy oat milk" {
		t.Errorf("content = %q", updated.Content)
	}
}

func TestUpdateInvalidInputLeavesTaskUnchanged(t *testing.T) {
	uc, repo := newTestUseCase()

	created, err := uc.Create(context.Background(), "user-1", "Buy milk", "2025-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, tt := range []struct {
		name    string
		content string
		dueDate string
	}{
		{name: "empty content", content: "", dueDate: "2025-03-10"},
		{name: "oversized content", content: strings.Repeat("x", 201), dueDate: ""},
		{name: "bad due date", content: "Buy milk", dueDate: "March 10"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.Update(context.Background(), created.ID, "user-1", tt.content, tt.dueDate); err == nil {
				t.Fatal("expected error, got nil")
			}
			stored := repo.tasks[created.ID]
			if stored.Content != "Buy milk" || stored.DueDate == nil {
				t.Error("failed update must not change the stored task")
			}
		})
	}
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	uc, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "user-a", "private task", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if _, err := uc.Get(ctx, created.ID, "user-b"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("Get: expected not found, got %v", err)
	}
	if _, err := uc.Update(ctx, created.ID, "user-b", "stolen", ""); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("Update: expected not found, got %v", err)
	}
	if err := uc.Delete(ctx, created.ID, "user-b"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("Delete: expected not found, got %v", err)
	}
	if _, err := uc.Toggle(ctx, created.ID, "user-b"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("Toggle: expected not found, got %v", err)
	}

	// the owner still sees the task untouched
	task, err := uc.Get(ctx, created.ID, "user-a")
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if task.Content != "private task" {
		t.Errorf("content = %q", task.Content)
	}
}

func TestToggleIsIdempotentPair(t *testing.T) {
	uc, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "user-1", "Buy milk", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := uc.Toggle(context.Background(), created.ID, "user-1")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !first.Completed {
		t.Error("first toggle must complete the task")
	}

	second, err := uc.Toggle(context.Background(), created.ID, "user-1")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if second.Completed {
		t.Error("second toggle must return the task to incomplete")
	}
}

func TestListFilterSearchSort(t *testing.T) {
	uc, repo := newTestUseCase()
	ctx := context.Background()

	base := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	seed := []domain.Task{
		{ID: "t1", UserID: "user-1", Content: "Buy milk", DateCreated: base},
		{ID: "t2", UserID: "user-1", Content: "Call mom", Completed: true, DateCreated: base.Add(time.Hour)},
		{ID: "t3", UserID: "user-1", Content: "answer emails", DateCreated: base.Add(2 * time.Hour)},
		{ID: "t4", UserID: "user-2", Content: "Buy milkshake", DateCreated: base},
	}
	for _, task := range seed {
		repo.tasks[task.ID] = task
	}

	ids := func(tasks []domain.Task) []string {
		var out []string
		for _, task := range tasks {
			out = append(out, task.ID)
		}
		return out
	}

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "default newest first", opts: ListOptions{}, want: []string{"t3", "t2", "t1"}},
		{name: "active only", opts: ListOptions{Filter: FilterActive}, want: []string{"t3", "t1"}},
		{name: "completed only", opts: ListOptions{Filter: FilterCompleted}, want: []string{"t2"}},
		{name: "unknown filter behaves as all", opts: ListOptions{Filter: "bogus"}, want: []string{"t3", "t2", "t1"}},
		{name: "search case-insensitive", opts: ListOptions{Search: "MILK"}, want: []string{"t1"}},
		{name: "search misses", opts: ListOptions{Search: "groceries"}, want: nil},
		{name: "oldest first", opts: ListOptions{Sort: "date_asc"}, want: []string{"t1", "t2", "t3"}},
		{name: "alphabetical", opts: ListOptions{Sort: "alpha"}, want: []string{"t3", "t1", "t2"}},
		{name: "unknown sort falls back to newest first", opts: ListOptions{Sort: "priority"}, want: []string{"t3", "t2", "t1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := uc.List(ctx, "user-1", tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := ids(tasks)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
			for _, task := range tasks {
				if task.UserID != "user-1" {
					t.Fatalf("list leaked task %s owned by %s", task.ID, task.UserID)
				}
			}
		})
	}
}
