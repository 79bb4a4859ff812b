// Package response holds the JSON envelope every endpoint answers with.
package response

import (
	"encoding/json"
	"net/http"

	"TaskWheelService/validation"
)

// A struct type that represents the body of every API response.
// Message has the following properties:
// - Success: Whether the request succeeded.
// - Message: A human readable summary, set on errors and on some successes.
// - Data: The payload of a successful request.
// - Errors: The per-field validation errors of a rejected request.
type Message struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message,omitempty"`
	Data    any                     `json:"data,omitempty"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

// OK builds a successful envelope around data.
func OK(message string, data any) Message {
	return Message{Success: true, Message: message, Data: data}
}

// Failed builds an error envelope.
func Failed(message string, errs ...validation.FieldError) Message {
	return Message{Success: false, Message: message, Errors: errs}
}

// Write encodes msg as the response body with the given status code.
//
// Returns:
// - error: An error if encoding the body fails.
func Write(res http.ResponseWriter, status int, msg Message) error {
	res.Header().Set("Content-Type", "application/json; charset=utf-8")
	res.WriteHeader(status)
	return json.NewEncoder(res).Encode(msg)
}
