package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/grclab/riskflow/pkg/domain/types"
	"github.com/grclab/riskflow/pkg/usecase"
	"github.com/grclab/riskflow/pkg/utils/errutil"
)

// respondJSON writes the payload as a JSON response
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps use case sentinels onto HTTP status codes. Wrong-status
// and missing-record both surface as 404 by design.
func respondError(r *http.Request, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrRiskNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidState),
		errors.Is(err, usecase.ErrValidation):
		status = http.StatusBadRequest
	}
	errutil.HandleHTTP(r.Context(), w, err, status)
}

// decodeJSON parses the request body into dst
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return goerr.Wrap(usecase.ErrValidation, "malformed JSON body")
	}
	return nil
}

// riskIDParam parses the riskID path parameter
func riskIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "riskID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(usecase.ErrValidation, "invalid risk ID", goerr.V("value", raw))
	}
	return id, nil
}

// actorID extracts the upstream-authenticated actor from the request.
// Mutating handlers require it.
func actorID(r *http.Request) (types.UserID, error) {
	actor := types.UserID(r.Header.Get("X-Actor-ID"))
	if actor == "" {
		return "", goerr.Wrap(usecase.ErrValidation, "X-Actor-ID header is required")
	}
	return actor, nil
}
