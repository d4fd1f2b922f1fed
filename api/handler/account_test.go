package handler_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/valyala/fasthttp"
)

func TestAccountSummary(t *testing.T) {
	app := newTestApp()

	doRequest(app, fasthttp.MethodPost, "/register", "username=carol&email=carol%40example.com&password=pw123", "")
	ctx := doRequest(app, fasthttp.MethodPost, "/login", "username=carol&password=pw123", "")
	cookie := responseCookie(ctx)
	if cookie == "" {
		t.Fatal("login did not set the session cookie")
	}

	doRequest(app, fasthttp.MethodPost, "/", "content=First+task", cookie)
	doRequest(app, fasthttp.MethodPost, "/", "content=Second+task", cookie)
	if ctx = doRequest(app, fasthttp.MethodGet, "/complete/task-1", "", cookie); ctx.Response.StatusCode() != fasthttp.StatusSeeOther {
		t.Fatalf("GET /complete status = %d", ctx.Response.StatusCode())
	}

	ctx = doRequest(app, fasthttp.MethodGet, "/account", "", cookie)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("GET /account status = %d, body %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}

	var envelope struct {
		Data struct {
			User struct {
				Username string `json:"username"`
				Email    string `json:"email"`
			} `json:"user"`
			Tasks struct {
				Open      int `json:"open"`
				Completed int `json:"completed"`
			} `json:"tasks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &envelope); err != nil {
		t.Fatalf("account body: %v", err)
	}
	if envelope.Data.User.Username != "carol" || envelope.Data.User.Email != "carol@example.com" {
		t.Errorf("user = %+v", envelope.Data.User)
	}
	if envelope.Data.Tasks.Open != 1 || envelope.Data.Tasks.Completed != 1 {
		t.Errorf("counts = %+v", envelope.Data.Tasks)
	}
	if body := string(ctx.Response.Body()); strings.Contains(body, "password") {
		t.Errorf("account payload must not carry password material: %s", body)
	}
}

func TestAccountRequiresSession(t *testing.T) {
	app := newTestApp()

	ctx := doRequest(app, fasthttp.MethodGet, "/account", "", "")
	if ctx.Response.StatusCode() != fasthttp.StatusFound {
		t.Fatalf("GET /account status = %d", ctx.Response.StatusCode())
	}
	if loc := location(ctx); !strings.Contains(loc, "/login?next=") {
		t.Errorf("location = %q", loc)
	}
}
