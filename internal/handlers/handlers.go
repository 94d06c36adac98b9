// Package handlers implements the development stock API served by cmd/server.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	applog "rubberstock/internal/log"
)

const maxRequestBytes = 1 << 20

var database *gorm.DB

// Configure installs the database used by the resource handlers.
func Configure(db *gorm.DB) {
	database = db
}

func requireDatabase(w http.ResponseWriter, r *http.Request) bool {
	if database != nil {
		return true
	}
	applog.Debug(r.Context(), "api request without database", "path", r.URL.Path)
	writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
	return false
}

// nameParam returns the decoded {name} route segment. chi matches on the raw
// path when the request carried escaped slashes, so the segment may still be
// percent-encoded.
func nameParam(r *http.Request) string {
	value := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
	}
	return value
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}
