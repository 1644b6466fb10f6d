package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteNotFound(w, "Document not found")

	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Document not found", resp.Error)
	assert.Zero(t, resp.RetryAfter)
	assert.NotContains(t, w.Body.String(), "retryAfter")
}

func TestWriteThrottled(t *testing.T) {
	w := httptest.NewRecorder()
	WriteThrottled(w, "Too many requests. Please try again later.", 42)

	assert.Equal(t, 429, w.Code)
	assert.Equal(t, "42", w.Header().Get("Retry-After"))

	var resp ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Too many requests. Please try again later.", resp.Error)
	assert.Equal(t, 42, resp.RetryAfter)
}
