package middleware

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/domain"
)

// SessionKey is the fasthttp user-value key the guard stores the
// resolved session under.
const SessionKey = "session"

const resolveTimeout = 3 * time.Second

// SessionResolver loads a live session by id. Implemented by the auth
// use case.
type SessionResolver interface {
	ResolveSession(ctx context.Context, id string) (*domain.Session, error)
}

// SessionAuth guards task routes. The cookie carries a signed token
// whose only claim is the session id; identity always comes from the
// session store so logout revokes access immediately. Requests without
// a live session are redirected to the login page with the original
// URI preserved.
func SessionAuth(resolver SessionResolver, secret, cookieName string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			session := Resolve(ctx, resolver, secret, cookieName)
			if session == nil {
				ctx.Redirect("/login?next="+url.QueryEscape(string(ctx.RequestURI())), fasthttp.StatusFound)
				return
			}

			ctx.SetUserValue(SessionKey, session)
			next(ctx)
		}
	}
}

// Resolve loads the session referenced by the request cookie, or nil
// when the cookie is absent, tampered with, or the session is gone.
func Resolve(ctx *fasthttp.RequestCtx, resolver SessionResolver, secret, cookieName string) *domain.Session {
	cookie := string(ctx.Request.Header.Cookie(cookieName))
	if cookie == "" {
		return nil
	}

	sessionID := sessionIDFromToken(secret, cookie)
	if sessionID == "" {
		return nil
	}

	stdCtx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	session, err := resolver.ResolveSession(stdCtx, sessionID)
	if err != nil {
		return nil
	}
	return session
}

// SessionFromCtx returns the session stored by SessionAuth.
func SessionFromCtx(ctx *fasthttp.RequestCtx) *domain.Session {
	session, _ := ctx.UserValue(SessionKey).(*domain.Session)
	return session
}

// SignSessionToken wraps a session id in a signed token for the cookie.
func SignSessionToken(secret, sessionID string, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"exp": expiresAt.Unix(),
	})
	return token.SignedString([]byte(secret))
}

func sessionIDFromToken(secret, tokenString string) string {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sessionID, _ := claims["sid"].(string)
	return sessionID
}

// SetSessionCookie attaches the login cookie to the response.
func SetSessionCookie(ctx *fasthttp.RequestCtx, name, token string, expiresAt time.Time) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(name)
	c.SetValue(token)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetExpire(expiresAt)
	ctx.Response.Header.SetCookie(c)
}

// ClearSessionCookie expires the login cookie.
func ClearSessionCookie(ctx *fasthttp.RequestCtx, name string) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(name)
	c.SetValue("")
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(c)
}
