// Package service implements the JSON HTTP API over the ledger and
// calculator. Handlers decode pre-validated form input, but the ledger
// re-validates every invariant independently regardless.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hisaab-app/hisaab/internal/auth"
	"github.com/hisaab-app/hisaab/internal/calculator"
	"github.com/hisaab-app/hisaab/internal/ledger"
)

// errForbidden marks operations the authenticated user may not perform.
var errForbidden = errors.New("forbidden")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: validation 400,
// unknown ids 404, cross-entity reference breaches 422, bad credentials
// 401, everything unexpected 500.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, calculator.ErrEmptySplit),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrEmailExists):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrReferentialIntegrity):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		status = http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		status = http.StatusForbidden
	default:
		slog.Error("internal error", "error", err)
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeJSON parses the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", ledger.ErrValidation, err)
	}
	return nil
}
