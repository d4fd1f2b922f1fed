package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/pkg/httpcontext"
	"github.com/taskhive/backend/repository"
	taskUC "github.com/taskhive/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, flash repository.FlashRepository, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, flash, logger),
		uc:          uc,
	}
}

// List serves the task list page: the user's tasks after filter,
// search and sort, plus any pending flash messages.
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFromCtx(ctx)
	query := transport.ParseListQuery(ctx.QueryArgs())

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, session.UserID, taskUC.ListOptions{
		Filter: query.Filter,
		Sort:   query.Sort,
		Search: query.Search,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, transport.NewPage(map[string]interface{}{
		"tasks":   tasks,
		"overdue": countOverdue(tasks, time.Now()),
		"filter":  query.Filter,
		"sort":    query.Sort,
		"search":  query.Search,
	}, h.popFlash(stdCtx, session.ID)))
}

// countOverdue drives the overdue badge on the list page.
func countOverdue(tasks []domain.Task, now time.Time) int {
	var n int
	for i := range tasks {
		if tasks[i].IsOverdue(now) {
			n++
		}
	}
	return n
}

// Create handles the add-task form on the list page.
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFromCtx(ctx)
	form := transport.ParseTaskForm(ctx.PostArgs())

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.uc.Create(stdCtx, session.UserID, form.Content, form.DueDate); err != nil {
		h.flashFailure(ctx, stdCtx, session.ID, err, "Sorry, there was an issue adding your task", "/")
		return
	}

	h.pushFlash(stdCtx, session.ID, "Task added")
	h.seeOther(ctx, "/")
}

// ShowUpdate serves the edit form data for an owned task.
func (h *TaskHandler) ShowUpdate(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFromCtx(ctx)
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Get(stdCtx, id, session.UserID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, transport.NewPage(map[string]interface{}{
		"task": task,
	}, h.popFlash(stdCtx, session.ID)))
}

// Update applies the edit form. Validation failures re-present the
// edit form; the stored task stays unchanged.
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFromCtx(ctx)
	id, _ := ctx.UserValue("id").(string)
	form := transport.ParseTaskForm(ctx.PostArgs())

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.uc.Update(stdCtx, id, session.UserID, form.Content, form.DueDate); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeInvalid) {
			h.pushFlash(stdCtx, session.ID, err.Error())
			h.seeOther(ctx, "/update/"+id)
			return
		}
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			h.respondError(ctx, err)
			return
		}
		h.flashFailure(ctx, stdCtx, session.ID, err, "There was an issue updating your task", "/")
		return
	}

	h.pushFlash(stdCtx, session.ID, "Task updated")
	h.seeOther(ctx, "/")
}

// Delete removes an owned task.
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFromCtx(ctx)
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, id, session.UserID); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			h.respondError(ctx, err)
			return
		}
		h.flashFailure(ctx, stdCtx, session.ID, err, "Sorry, there was a problem deleting that task", "/")
		return
	}

	h.pushFlash(stdCtx, session.ID, "Task deleted")
	h.seeOther(ctx, "/")
}

// Toggle flips an owned task's completion flag.
func (h *TaskHandler) Toggle(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFromCtx(ctx)
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.Toggle(stdCtx, id, session.UserID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			h.respondError(ctx, err)
			return
		}
		h.flashFailure(ctx, stdCtx, session.ID, err, "There was an issue updating the task", "/")
		return
	}

	if task.Completed {
		h.pushFlash(stdCtx, session.ID, "Task completed")
	} else {
		h.pushFlash(stdCtx, session.ID, "Task marked as incomplete")
	}
	h.seeOther(ctx, "/")
}

// flashFailure converts an operation error into a flash message and a
// redirect: validation errors keep their message, anything else gets
// the generic one. No retry, no partial state.
func (h *TaskHandler) flashFailure(ctx *fasthttp.RequestCtx, stdCtx context.Context, sessionID string, err error, generic, location string) {
	message := generic
	if domain.IsDomainError(err, domain.ErrCodeInvalid) {
		message = err.Error()
	} else {
		h.logger.Error("task operation failed", zap.Error(err))
	}
	h.pushFlash(stdCtx, sessionID, message)
	h.seeOther(ctx, location)
}
