package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "github.com/wolfman30/clinic-admin-platform/internal/config"
)

func TestSetupMetricsExposesCollectors(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil || m.http == nil || m.auth == nil || m.staff == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.auth.ObserveLogin("success")
	m.staff.ObserveOperation("doctor", "create", "success")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"clinicadmin_auth_logins_total", "clinicadmin_staff_operations_total", "go_goroutines"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s to be exported", name)
		}
	}
}

func TestSetupMetricsIsRepeatable(t *testing.T) {
	setupMetrics()
	setupMetrics()
}

func TestNewServerTimeouts(t *testing.T) {
	srv := newServer(&appconfig.Config{Port: "9090"}, http.NotFoundHandler())
	if srv.Addr != ":9090" {
		t.Fatalf("unexpected addr %q", srv.Addr)
	}
	if srv.ReadTimeout != 15*time.Second || srv.WriteTimeout != 15*time.Second || srv.IdleTimeout != 60*time.Second {
		t.Fatalf("unexpected timeouts %v/%v/%v", srv.ReadTimeout, srv.WriteTimeout, srv.IdleTimeout)
	}
}
