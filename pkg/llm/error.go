// Package llm provides the Ollama wire representations of generation requests
// and their streamed responses.
package llm

import "fmt"

// ErrorResponse represents an error body returned by the LLM API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusError is a non-2xx reply from the generation endpoint. It is built on
// the client side from the HTTP status and the decoded error body.
type StatusError struct {
	StatusCode   int    // e.g. 401
	Status       string // e.g. "401 Unauthorized"
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		return fmt.Sprintf("unexpected status code %d", e.StatusCode)
	}
}
