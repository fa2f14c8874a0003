package ledgerhttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quillbooks/quillbooks/internal/platform/httpx"
)

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	asOf, ok := h.dateParam(w, r, "as_of")
	if !ok {
		return
	}
	vm, err := h.reports.TrialBalance(r.Context(), id.TenantID, asOf)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vm)
}

func (h *Handler) incomeStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	from, ok := h.dateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := h.dateParam(w, r, "to")
	if !ok {
		return
	}
	if (from == nil) != (to == nil) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from and to must be provided together")
		return
	}
	vm, err := h.reports.IncomeStatement(r.Context(), id.TenantID, from, to)
	if err != nil {
		h.logger.Error("income statement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vm)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	asOf, ok := h.dateParam(w, r, "as_of")
	if !ok {
		return
	}
	vm, err := h.reports.BalanceSheet(r.Context(), id.TenantID, asOf)
	if err != nil {
		h.logger.Error("balance sheet", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vm)
}

func (h *Handler) statements(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	from, ok := h.dateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := h.dateParam(w, r, "to")
	if !ok {
		return
	}
	if (from == nil) != (to == nil) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from and to must be provided together")
		return
	}
	out, err := h.reports.Statements(r.Context(), id.TenantID, from, to)
	if err != nil {
		h.logger.Error("statements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// triggerReconcile queues a reconciliation of the caller's tenant. The
// repair query flag also rewrites drifted balances instead of only
// reporting them.
func (h *Handler) triggerReconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if h.reconcile == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "background jobs are not configured")
		return
	}
	repair := r.URL.Query().Get("repair") == "true"
	if err := h.reconcile(r.Context(), id.TenantID, repair); err != nil {
		h.logger.Error("enqueue reconcile", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+name+" date")
		return nil, false
	}
	return &date, true
}
