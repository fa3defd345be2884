package tools

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/roelfdiedericks/hassmcp/internal/hass"
)

// Error kinds reported in tool error payloads.
const (
	ErrValidation = "validation_error"
	ErrNotFound   = "not_found"
	ErrUpstream   = "upstream_error"
	ErrInternal   = "internal_error"
)

// errorPayload is the error half of a tool result envelope.
type errorPayload struct {
	Kind        string   `json:"kind"`
	Message     string   `json:"message"`
	ErrorID     string   `json:"error_id,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// errorEnvelope is returned as the tool's JSON result when it fails.
// Agents read the suggestions, so failures stay inside the result
// instead of becoming protocol-level errors.
type errorEnvelope struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

// errorResult builds a JSON error envelope.
func errorResult(kind, message string, suggestions ...string) string {
	env := errorEnvelope{
		Error: errorPayload{
			Kind:        kind,
			Message:     message,
			Suggestions: suggestions,
		},
	}
	data, err := json.Marshal(env)
	if err != nil {
		// Envelope of plain strings; cannot fail in practice.
		return `{"success":false,"error":{"kind":"internal_error","message":"failed to encode error"}}`
	}
	return string(data)
}

// validationError reports bad tool input.
func validationError(message string, suggestions ...string) string {
	return errorResult(ErrValidation, message, suggestions...)
}

// upstreamError shapes a Home Assistant API failure. REST 404s become
// not_found with a lookup hint; everything else is reported as an
// upstream failure with the API's own message.
func upstreamError(err error, suggestions ...string) string {
	var herr *hass.Error
	if errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound {
		if len(suggestions) == 0 {
			suggestions = []string{"use ha_search_entities to find valid entity IDs"}
		}
		return errorResult(ErrNotFound, herr.Error(), suggestions...)
	}
	return errorResult(ErrUpstream, err.Error(), suggestions...)
}

// internalErrorResult is the generic envelope for recovered faults.
// The id is logged alongside the panic so operators can correlate;
// the caller only ever sees the id.
func internalErrorResult(id string) string {
	env := errorEnvelope{
		Error: errorPayload{
			Kind:    ErrInternal,
			Message: "internal error",
			ErrorID: id,
		},
	}
	data, _ := json.Marshal(env)
	return string(data)
}

func newErrorID() string {
	return uuid.NewString()
}
