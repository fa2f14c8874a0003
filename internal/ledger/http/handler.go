// Package ledgerhttp wires the ledger HTTP endpoints.
package ledgerhttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/ledger/journals"
	"github.com/quillbooks/quillbooks/internal/ledger/periods"
	"github.com/quillbooks/quillbooks/internal/ledger/reports"
	"github.com/quillbooks/quillbooks/internal/platform/httpx"
	"github.com/quillbooks/quillbooks/internal/shared"
)

// ReconcileTrigger enqueues a background balance reconciliation run.
type ReconcileTrigger func(ctx context.Context, tenantID int64, repair bool) error

// Handler exposes the ledger modules over JSON.
type Handler struct {
	logger    *slog.Logger
	accounts  *accounts.Service
	periods   *periods.Service
	journals  *journals.Service
	reports   *reports.Service
	validate  *validator.Validate
	reconcile ReconcileTrigger
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, accountsSvc *accounts.Service, periodsSvc *periods.Service, journalsSvc *journals.Service, reportsSvc *reports.Service) *Handler {
	return &Handler{
		logger:   logger,
		accounts: accountsSvc,
		periods:  periodsSvc,
		journals: journalsSvc,
		reports:  reportsSvc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// WithReconcileTrigger enables the on-demand reconciliation endpoint. Without
// it the route responds 503.
func (h *Handler) WithReconcileTrigger(trigger ReconcileTrigger) {
	h.reconcile = trigger
}

// MountRoutes registers HTTP routes for the ledger module.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/ledger", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.listAccounts)
			r.Post("/", h.createAccount)
			r.Get("/tree", h.accountTree)
			r.Post("/seed", h.seedAccounts)
			r.Get("/{code}", h.getAccount)
			r.Patch("/{code}", h.updateAccount)
			r.Delete("/{code}", h.deleteAccount)
		})
		r.Route("/periods", func(r chi.Router) {
			r.Get("/", h.listPeriods)
			r.Post("/", h.createPeriod)
			r.Post("/{id}/close", h.closePeriod)
			r.Post("/{id}/reopen", h.reopenPeriod)
		})
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.listEntries)
			r.Post("/", h.createEntry)
			r.Get("/{id}", h.getEntry)
			r.Delete("/{id}", h.deleteEntry)
			r.Post("/{id}/post", h.postEntry)
			r.Post("/{id}/reverse", h.reverseEntry)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Get("/trial-balance", h.trialBalance)
			r.Get("/income-statement", h.incomeStatement)
			r.Get("/balance-sheet", h.balanceSheet)
			r.Get("/statements", h.statements)
			r.Post("/reconcile", h.triggerReconcile)
		})
	})
}

// identity pulls the authenticated caller off the context; the middleware
// guarantees it for mounted routes, so absence is a wiring bug.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (shared.Identity, bool) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "caller identity missing")
		return shared.Identity{}, false
	}
	return id, true
}
