package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskhive/backend/api/handler"
	"github.com/taskhive/backend/internal/infrastructure/monitor"
)

func healthCheck(t *testing.T, pg, session monitor.Probe) *fasthttp.RequestCtx {
	t.Helper()
	mon := monitor.New(pg, session, time.Minute, nil)
	mon.Refresh()

	var req fasthttp.Request
	req.SetRequestURI("/health")
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)

	apiHandler.NewHealthHandler(mon, nil, nil).Check(&ctx)
	return &ctx
}

func TestHealthCheckHealthy(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }

	ctx := healthCheck(t, ok, ok)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d, body %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			Services map[string]bool `json:"services"`
		} `json:"data"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &envelope); err != nil {
		t.Fatalf("health body: %v", err)
	}
	if envelope.Status != "success" {
		t.Errorf("status = %q", envelope.Status)
	}
	if !envelope.Data.Services["postgresql"] || !envelope.Data.Services["session_store"] {
		t.Errorf("services = %v", envelope.Data.Services)
	}
}

func TestHealthCheckDegraded(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	ctx := healthCheck(t, ok, down)
	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}

	var envelope struct {
		Status string `json:"status"`
		Code   string `json:"code"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &envelope); err != nil {
		t.Fatalf("health body: %v", err)
	}
	if envelope.Status != "error" || envelope.Code != "DEGRADED" {
		t.Errorf("envelope = %+v", envelope)
	}
}
