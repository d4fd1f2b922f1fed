package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/pkg/httpcontext"
	"github.com/taskhive/backend/repository"
	accountUC "github.com/taskhive/backend/usecase/account"
)

type AccountHandler struct {
	baseHandler
	uc *accountUC.UseCase
}

func NewAccountHandler(uc *accountUC.UseCase, adapter *httpcontext.Adapter, flash repository.FlashRepository, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		baseHandler: newBaseHandler(adapter, flash, logger),
		uc:          uc,
	}
}

// Show serves the account page: the user (never the hash) and task counts.
func (h *AccountHandler) Show(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFromCtx(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	summary, err := h.uc.Summary(stdCtx, session.UserID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, transport.NewPage(summary, h.popFlash(stdCtx, session.ID)))
}
