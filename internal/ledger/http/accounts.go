package ledgerhttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/platform/httpx"
)

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	list, err := h.accounts.List(r.Context(), id.TenantID)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAccountResponse(a))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) accountTree(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	tree, err := h.accounts.Tree(r.Context(), id.TenantID)
	if err != nil {
		h.logger.Error("account tree", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": toTreeResponse(tree)})
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	account, err := h.accounts.Get(r.Context(), id.TenantID, chi.URLParam(r, "code"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	account, err := h.accounts.Create(r.Context(), accounts.CreateInput{
		TenantID:   id.TenantID,
		Code:       req.Code,
		Name:       req.Name,
		NameAlt:    req.NameAlt,
		Type:       accounts.AccountType(req.Type),
		Currency:   req.Currency,
		ParentCode: req.ParentCode,
	})
	if err != nil {
		h.logger.Warn("create account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req updateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	in := accounts.UpdateInput{
		TenantID: id.TenantID,
		Code:     chi.URLParam(r, "code"),
		NewCode:  req.Code,
		Name:     req.Name,
		NameAlt:  req.NameAlt,
		IsActive: req.IsActive,
	}
	if req.Type != nil {
		accType := accounts.AccountType(*req.Type)
		in.Type = &accType
	}
	account, err := h.accounts.Update(r.Context(), in)
	if err != nil {
		h.logger.Warn("update account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := h.accounts.Delete(r.Context(), id.TenantID, chi.URLParam(r, "code")); err != nil {
		h.logger.Warn("delete account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) seedAccounts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	created, err := h.accounts.Seed(r.Context(), id.TenantID)
	if err != nil {
		h.logger.Error("seed accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"created": created})
}
