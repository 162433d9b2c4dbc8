package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/user/storesync/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var upstreamErr *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrTenantNotFound):
		writeError(w, http.StatusNotFound, "tenant not found")
	case errors.Is(err, domain.ErrTenantInactive):
		writeError(w, http.StatusConflict, "tenant is inactive")
	case errors.Is(err, domain.ErrSyncInProgress):
		writeError(w, http.StatusConflict, "sync already in progress")
	case errors.As(err, &upstreamErr):
		writeError(w, http.StatusBadGateway, upstreamErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
