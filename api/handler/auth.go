package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/pkg/httpcontext"
	"github.com/taskhive/backend/repository"
	authUC "github.com/taskhive/backend/usecase/auth"
)

// noticeTTL bounds the anonymous flash cookie used on the login and
// register pages, where no server-side session exists yet.
const noticeTTL = time.Minute

type AuthHandler struct {
	baseHandler
	uc         *authUC.UseCase
	secret     string
	cookieName string
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, flash repository.FlashRepository, logger *zap.Logger, secret, cookieName string) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, flash, logger),
		uc:          uc,
		secret:      secret,
		cookieName:  cookieName,
	}
}

// ShowRegister serves the registration page data.
func (h *AuthHandler) ShowRegister(ctx *fasthttp.RequestCtx) {
	if middleware.Resolve(ctx, h.uc, h.secret, h.cookieName) != nil {
		h.seeOther(ctx, "/")
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(map[string]interface{}{
		"page": "register",
	}, h.popNotice(ctx)))
}

// Register handles the registration form submission.
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	form := transport.ParseRegisterForm(ctx.PostArgs())

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.uc.Register(stdCtx, form.Username, form.Email, form.Password); err != nil {
		h.respondError(ctx, err)
		return
	}

	h.setNotice(ctx, "Registration successful, please log in")
	h.seeOther(ctx, "/login")
}

// ShowLogin serves the login page data. An already-authenticated
// visitor is sent straight to the task list.
func (h *AuthHandler) ShowLogin(ctx *fasthttp.RequestCtx) {
	if middleware.Resolve(ctx, h.uc, h.secret, h.cookieName) != nil {
		h.seeOther(ctx, "/")
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(map[string]interface{}{
		"page": "login",
		"next": string(ctx.QueryArgs().Peek("next")),
	}, h.popNotice(ctx)))
}

// Login handles the login form submission and establishes the session.
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	form := transport.ParseLoginForm(ctx.PostArgs())
	if form.Next == "" {
		form.Next = string(ctx.QueryArgs().Peek("next"))
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.Login(stdCtx, form.Username, form.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	token, err := middleware.SignSessionToken(h.secret, session.ID, session.ExpiresAt)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	middleware.SetSessionCookie(ctx, h.cookieName, token, session.ExpiresAt)
	h.pushFlash(stdCtx, session.ID, "Welcome back, "+session.Username)
	h.seeOther(ctx, safeNext(form.Next))
}

// Logout revokes the session and clears the cookie. Mounted behind the
// session guard, so a session is always present here.
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFromCtx(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, session.ID); err != nil {
		h.respondError(ctx, err)
		return
	}

	middleware.ClearSessionCookie(ctx, h.cookieName)
	h.setNotice(ctx, "You have been logged out")
	h.seeOther(ctx, "/login")
}

// setNotice stores a one-time message for anonymous pages in a
// short-lived cookie.
func (h *AuthHandler) setNotice(ctx *fasthttp.RequestCtx, message string) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(h.noticeCookie())
	c.SetValue(message)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetExpire(time.Now().Add(noticeTTL))
	ctx.Response.Header.SetCookie(c)
}

// popNotice reads and clears the anonymous flash cookie.
func (h *AuthHandler) popNotice(ctx *fasthttp.RequestCtx) []string {
	message := string(ctx.Request.Header.Cookie(h.noticeCookie()))
	if message == "" {
		return nil
	}

	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(h.noticeCookie())
	c.SetPath("/")
	c.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(c)

	return []string{message}
}

func (h *AuthHandler) noticeCookie() string {
	return h.cookieName + "_notice"
}

// safeNext only honors local redirect targets; anything else falls
// back to the task list.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}
