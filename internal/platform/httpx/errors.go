// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// RespondError maps ledger domain errors to HTTP responses using RFC7807.
// Validation problems come back 400/422, conflicts 409, state violations 409,
// dependency blocks 409, lookups 404. Anything unrecognised is an opaque 500:
// the caller should retry, not fix their input.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnbalancedEntry),
		errors.Is(err, shared.ErrTooFewLines),
		errors.Is(err, shared.ErrMalformedLine):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrDuplicateCode),
		errors.Is(err, shared.ErrPeriodOverlap),
		errors.Is(err, shared.ErrEntryAlreadyPosted),
		errors.Is(err, shared.ErrEntryReversed),
		errors.Is(err, shared.ErrPeriodAlreadyClosed),
		errors.Is(err, shared.ErrPeriodNotClosed):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrPeriodClosed),
		errors.Is(err, shared.ErrEntryNotDraft),
		errors.Is(err, shared.ErrEntryNotPosted),
		errors.Is(err, shared.ErrAccountImmutable),
		errors.Is(err, shared.ErrAccountInactive),
		errors.Is(err, shared.ErrAccountNotPostable),
		errors.Is(err, shared.ErrParentTypeMismatch):
		Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, shared.ErrReopenNotAllowed):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrAccountInUse),
		errors.Is(err, shared.ErrSystemAccount):
		Problem(w, http.StatusConflict, "Dependency", err.Error())
	case errors.Is(err, shared.ErrAccountNotFound),
		errors.Is(err, shared.ErrParentNotFound),
		errors.Is(err, shared.ErrPeriodNotFound),
		errors.Is(err, shared.ErrEntryNotFound),
		errors.Is(err, shared.ErrNoPeriodForDate):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// RespondValidation reports a request-shape problem (malformed JSON, missing
// fields) before any domain logic ran.
func RespondValidation(w http.ResponseWriter, err error) {
	Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
}
