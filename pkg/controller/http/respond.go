package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/usecase"
	"github.com/secmon-lab/briareus/pkg/utils/errutil"
)

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// handleError maps use case sentinels to HTTP statuses. Anything not
// recognized is an internal error and goes through errutil for logging
// and capture.
func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, usecase.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidTransition),
		errors.Is(err, usecase.ErrAlreadyAssigned),
		errors.Is(err, usecase.ErrAlreadyEscalated),
		errors.Is(err, usecase.ErrAlreadyDeprecated),
		errors.Is(err, usecase.ErrPlaybookActive),
		errors.Is(err, usecase.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		errutil.HandleHTTP(ctx, w, err, status)
		return
	}

	writeJSON(ctx, w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
		return false
	}
	return true
}
