// Package testutil provides shared helpers for HTTP-level tests that
// exercise a fully wired gin engine.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Request describes one HTTP call against a test engine.
type Request struct {
	Method  string
	Path    string
	Body    interface{}
	RawBody []byte
	Headers map[string]string
	Cookies []*http.Cookie
}

// Do runs a request through the handler and returns the recorder.
func Do(t *testing.T, handler http.Handler, req Request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch {
	case req.RawBody != nil:
		body = bytes.NewReader(req.RawBody)
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		require.NoError(t, err, "Failed to marshal request body")
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq := httptest.NewRequest(method, req.Path, body)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	for _, c := range req.Cookies {
		httpReq.AddCookie(c)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httpReq)
	return w
}

// JSONResponse parses the response body as a generic JSON object.
func JSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err, "Failed to parse JSON response")
	return result
}

// DataField returns the "data" object of a success envelope.
func DataField(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	resp := JSONResponse(t, w)
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "Expected data object in response")
	return data
}

// DataAs decodes the "data" field of a success envelope into T.
func DataAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Data T `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	require.NoError(t, err, "Failed to decode data field")
	return envelope.Data
}

// AssertSuccess asserts the body is a success envelope.
func AssertSuccess(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()

	resp := JSONResponse(t, w)
	assert.True(t, resp["success"].(bool), "Expected success to be true")
	assert.Nil(t, resp["error"], "Expected no error")
}

// AssertError asserts the body is an error envelope with the given code.
func AssertError(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()

	resp := JSONResponse(t, w)
	assert.False(t, resp["success"].(bool), "Expected success to be false")

	errMap, ok := resp["error"].(map[string]interface{})
	require.True(t, ok, "Expected error object in response")
	assert.Equal(t, expectedCode, errMap["code"], "Unexpected error code")
}

// ResponseCookie returns the named cookie set by the response, or nil.
func ResponseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
