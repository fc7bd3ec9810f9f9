package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRunAggregatesWorstStatus(t *testing.T) {
	c := NewChecker()
	c.Register("corpus", PingCheck(func(context.Context) error { return nil }, true))
	c.Register("cache", PingCheck(func(context.Context) error { return errors.New("refused") }, false))

	report := c.Run(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("status = %s, want degraded", report.Status)
	}
	if report.Components["cache"].Message != "refused" {
		t.Errorf("cache message = %q", report.Components["cache"].Message)
	}

	c.Register("store", PingCheck(func(context.Context) error { return errors.New("down") }, true))
	if got := c.Run(context.Background()).Status; got != StatusDown {
		t.Errorf("status = %s, want down", got)
	}
}

func TestReadyHandlerStatusCodes(t *testing.T) {
	c := NewChecker()
	c.Register("cache", PingCheck(func(context.Context) error { return errors.New("x") }, false))
	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("degraded ready = %d, want 200", rec.Code)
	}

	c.Register("corpus", PingCheck(func(context.Context) error { return errors.New("no generation") }, true))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("down ready = %d, want 503", rec.Code)
	}
}
