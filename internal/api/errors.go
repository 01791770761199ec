package api

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the failure shape every endpoint emits:
// { "error": <code>, "message": <human text>, "details": <optional> }.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeErrorBody(w, status, ErrorBody{Error: code, Message: message})
}

func WriteErrorDetails(w http.ResponseWriter, status int, code, message, details string) {
	writeErrorBody(w, status, ErrorBody{Error: code, Message: message, Details: details})
}

func writeErrorBody(w http.ResponseWriter, status int, body ErrorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// MethodNotAllowed is installed as the router's 405 handler so rejected
// methods still answer with a JSON body.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
}
