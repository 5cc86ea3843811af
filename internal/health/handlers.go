package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/noah-isme/theater-billing/internal/common"
)

var shuttingDown atomic.Bool

// SetReady toggles readiness. The server flips it off when shutdown begins so
// load balancers drain traffic before the listener closes.
func SetReady(v bool) {
	shuttingDown.Store(!v)
}

// Checker probes the play catalog backend.
type Checker interface {
	PingCatalog(ctx context.Context, timeout time.Duration) error
}

// Report is the body of /health/ready.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler exposes liveness and readiness endpoints.
type Handler struct {
	Checker        Checker
	CatalogTimeout time.Duration
}

// Live reports that the process is serving.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	common.Text(w, http.StatusOK, "ok")
}

// Ready answers 200 only when the catalog answers and no shutdown is in progress.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if shuttingDown.Load() {
		common.JSON(w, http.StatusServiceUnavailable, Report{Status: "shutting_down"})
		return
	}
	if h.Checker == nil {
		common.JSON(w, http.StatusServiceUnavailable, Report{Status: "unavailable", Checks: map[string]string{"catalog": "not configured"}})
		return
	}
	if err := h.Checker.PingCatalog(r.Context(), h.catalogTimeout()); err != nil {
		common.JSON(w, http.StatusServiceUnavailable, Report{Status: "unavailable", Checks: map[string]string{"catalog": err.Error()}})
		return
	}
	common.JSON(w, http.StatusOK, Report{Status: "ok", Checks: map[string]string{"catalog": "ok"}})
}

func (h Handler) catalogTimeout() time.Duration {
	if h.CatalogTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.CatalogTimeout
}
