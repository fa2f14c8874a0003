package ledgerhttp

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quillbooks/quillbooks/internal/ledger/journals"
	"github.com/quillbooks/quillbooks/internal/platform/httpx"
	"github.com/quillbooks/quillbooks/internal/shared"
)

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, perPage := shared.PageFromQuery(q)
	periodID, _ := strconv.ParseInt(q.Get("period_id"), 10, 64)
	filter := journals.ListFilter{
		PeriodID: periodID,
		Status:   journals.EntryStatus(q.Get("status")),
		Page:     page,
		PerPage:  perPage,
	}
	entries, total, err := h.journals.List(r.Context(), id.TenantID, filter)
	if err != nil {
		h.logger.Error("list entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	httpx.JSON(w, http.StatusOK, listResponse[entryResponse]{
		Data:       out,
		Pagination: shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	entryID, ok := h.entryID(w, r)
	if !ok {
		return
	}
	entry, err := h.journals.Get(r.Context(), id.TenantID, entryID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req createEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	in, err := req.toInput(id)
	if err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	entry, err := h.journals.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	entryID, ok := h.entryID(w, r)
	if !ok {
		return
	}
	if err := h.journals.Delete(r.Context(), id.TenantID, entryID, id.ActorID); err != nil {
		h.logger.Warn("delete entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) postEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	entryID, ok := h.entryID(w, r)
	if !ok {
		return
	}
	entry, err := h.journals.Post(r.Context(), id.TenantID, entryID, id.ActorID)
	if err != nil {
		h.logger.Warn("post entry", slog.Any("error", err), slog.Int64("entry_id", entryID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *Handler) reverseEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	entryID, ok := h.entryID(w, r)
	if !ok {
		return
	}
	var req reverseEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.RespondValidation(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	in := journals.ReverseInput{
		TenantID: id.TenantID,
		EntryID:  entryID,
		ActorID:  id.ActorID,
		Memo:     req.Memo,
	}
	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			httpx.RespondValidation(w, err)
			return
		}
		in.Date = &date
	}
	entry, err := h.journals.Reverse(r.Context(), in)
	if err != nil {
		h.logger.Warn("reverse entry", slog.Any("error", err), slog.Int64("entry_id", entryID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return 0, false
	}
	return id, true
}
