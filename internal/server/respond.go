// Package server provides the HTTP serving layer for the dashboard.
// This file implements the JSON response envelope shared by all endpoints.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/logger"
)

// APIResponse is the envelope for all JSON responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// writeJSON serializes payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err.Error())
	}
}

// respondSuccess writes a 200 envelope with data.
func respondSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// respondError writes an error envelope with the given status.
func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{Success: false, Error: msg})
}

// respondMessage writes a 200 envelope with an informational message.
func respondMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: msg})
}
