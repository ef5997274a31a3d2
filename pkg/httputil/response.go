package httputil

import (
	"encoding/json"
	"net/http"
)

const (
	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html; charset=utf-8"
)

// ErrorResponse is the JSON error envelope of the API
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeHeader(w http.ResponseWriter, status int, contentType string) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
}

// WriteJSON encodes data as the response body
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	writeHeader(w, status, contentTypeJSON)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes err as a JSON error
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteErrorMessage(w, status, err.Error())
}

// WriteErrorMessage writes message as a JSON error
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteHTML writes an already rendered page
func WriteHTML(w http.ResponseWriter, status int, body []byte) error {
	writeHeader(w, status, contentTypeHTML)
	_, err := w.Write(body)
	return err
}
