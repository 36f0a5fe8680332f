package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	errBadRequest  = "bad request"
	errNotFound    = "not found"
	errServerError = "internal server error"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
