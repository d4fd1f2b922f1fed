package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/pkg/httpcontext"
	"github.com/taskhive/backend/repository"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	flash   repository.FlashRepository
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, flash repository.FlashRepository, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, flash: flash, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// never leak store internals to the client
		h.logger.Error("request failed", zap.Error(err))
		message = "something went wrong, please try again"
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, nil))
}

// seeOther redirects after a successful state change (HTTP 303 pattern).
func (h baseHandler) seeOther(ctx *fasthttp.RequestCtx, location string) {
	ctx.Redirect(location, fasthttp.StatusSeeOther)
}

// pushFlash queues a one-time status message; failures are logged and
// swallowed because a lost flash must not fail the operation itself.
func (h baseHandler) pushFlash(ctx context.Context, sessionID, message string) {
	if h.flash == nil || sessionID == "" {
		return
	}
	if err := h.flash.Push(ctx, sessionID, message); err != nil {
		h.logger.Warn("failed to push flash message", zap.Error(err))
	}
}

// popFlash drains pending flash messages for the session.
func (h baseHandler) popFlash(ctx context.Context, sessionID string) []string {
	if h.flash == nil || sessionID == "" {
		return nil
	}
	messages, err := h.flash.Pop(ctx, sessionID)
	if err != nil {
		h.logger.Warn("failed to pop flash messages", zap.Error(err))
		return nil
	}
	return messages
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
