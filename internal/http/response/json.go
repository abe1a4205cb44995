// Package response writes the JSON envelope every endpoint answers with:
//
//	{"success": true,  "data": {...}, "meta": {...}}
//	{"success": false, "error": "message", "code": "SOLD_OUT", "fields": {...}}
package response

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the response envelope.
type JSONResponse struct {
	Success bool                `json:"success"`
	Data    interface{}         `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Code    string              `json:"code,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Meta    interface{}         `json:"meta,omitempty"`
}

// Send writes payload with status.
func Send(w http.ResponseWriter, status int, payload JSONResponse) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// Success writes a success envelope. meta may be nil.
func Success(w http.ResponseWriter, status int, data interface{}, meta interface{}) error {
	return Send(w, status, JSONResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// Error writes a failure envelope. errData may be a message, an error or a
// field → messages map.
func Error(w http.ResponseWriter, status int, errData any) error {
	payload := JSONResponse{Success: false}

	switch e := errData.(type) {
	case string:
		payload.Error = e
	case error:
		payload.Error = e.Error()
	case map[string][]string:
		payload.Error = "Validation failed"
		payload.Fields = e
	default:
		payload.Error = "Unknown server error"
	}

	return Send(w, status, payload)
}
