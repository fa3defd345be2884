package tools

import (
	"fmt"
	"testing"

	"github.com/roelfdiedericks/hassmcp/internal/hass"
)

func TestErrorResultShape(t *testing.T) {
	resp := decodeResult(t, errorResult(ErrValidation, "limit must be positive", "pass limit >= 1"))
	if resp["success"] != false {
		t.Errorf("success = %v", resp["success"])
	}
	errObj := resp["error"].(map[string]any)
	if errObj["kind"] != ErrValidation {
		t.Errorf("kind = %v", errObj["kind"])
	}
	if errObj["message"] != "limit must be positive" {
		t.Errorf("message = %v", errObj["message"])
	}
	suggestions := errObj["suggestions"].([]any)
	if len(suggestions) != 1 || suggestions[0] != "pass limit >= 1" {
		t.Errorf("suggestions = %v", suggestions)
	}
}

func TestUpstreamError404BecomesNotFound(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &hass.Error{StatusCode: 404, Status: "404 Not Found", Message: "Entity not found."})
	resp := decodeResult(t, upstreamError(err))
	if errKind(resp) != ErrNotFound {
		t.Errorf("kind = %v, want %v", errKind(resp), ErrNotFound)
	}
	errObj := resp["error"].(map[string]any)
	if errObj["suggestions"] == nil {
		t.Error("not_found should carry a lookup suggestion")
	}
}

func TestUpstreamErrorOther(t *testing.T) {
	resp := decodeResult(t, upstreamError(&hass.Error{StatusCode: 503, Status: "503 Service Unavailable"}))
	if errKind(resp) != ErrUpstream {
		t.Errorf("kind = %v, want %v", errKind(resp), ErrUpstream)
	}
}

func TestInternalErrorResult(t *testing.T) {
	resp := decodeResult(t, internalErrorResult("abc-123"))
	if errKind(resp) != ErrInternal {
		t.Errorf("kind = %v", errKind(resp))
	}
	errObj := resp["error"].(map[string]any)
	if errObj["error_id"] != "abc-123" {
		t.Errorf("error_id = %v", errObj["error_id"])
	}
}
