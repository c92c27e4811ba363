package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	// invalidBillCode is the stable client-facing code for every payload
	// or validation failure on the save path.
	invalidBillCode    = "ERRO1"
	invalidBillMessage = "Invalid bill format: Missing or incorrect attributes. Please review and resubmit."
)

// apiError is the error body returned to API clients.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Code: code, Message: message})
}

func writeInvalidBill(w http.ResponseWriter) {
	writeAPIError(w, http.StatusUnprocessableEntity, invalidBillCode, invalidBillMessage)
}
