package utils

import (
	"net/http"

	"github.com/goccy/go-json"
)

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Error     string      `json:"error"`
	Field     string      `json:"field,omitempty"`
	Completed interface{} `json:"completed,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message})
}

// WriteFieldError reports a rejected input together with the offending field.
func WriteFieldError(w http.ResponseWriter, status int, field, message string) {
	WriteJSON(w, status, ErrorBody{Error: message, Field: field})
}

// WriteNoContent answers 204 with no body.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
