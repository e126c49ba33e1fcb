package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return ErrorResponseWithPayload(w, statusCode, errorCode, message, "", nil)
}

// ErrorResponseWithPayload writes a JSON error response that also carries the
// endpoint's result field set to an empty value, so clients can read the same
// key on success and failure. An empty payloadKey omits it.
func ErrorResponseWithPayload(w http.ResponseWriter, statusCode int, errorCode, message, payloadKey string, payload any) error {
	body := map[string]any{
		"error":   errorCode,
		"message": message,
	}
	if payloadKey != "" {
		body[payloadKey] = payload
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(body)
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}
