package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/faucetdb/modelgen/internal/model"
	"github.com/faucetdb/modelgen/internal/service"
)

// writeJSON serializes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, errorStatus(err), err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrServiceNotFound),
		errors.Is(err, service.ErrModelNotFound),
		errors.Is(err, service.ErrNoSnapshot):
		return http.StatusNotFound
	case errors.Is(err, service.ErrServiceInactive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// queryBool reports whether a query parameter is "true" or "1".
func queryBool(r *http.Request, key string) bool {
	val := r.URL.Query().Get(key)
	return val == "true" || val == "1"
}
