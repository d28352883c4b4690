package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/balasai14/multi-face-reg/internal/auth"
	"github.com/balasai14/multi-face-reg/internal/constants"
	"github.com/balasai14/multi-face-reg/internal/database/mock"
	"github.com/balasai14/multi-face-reg/internal/descriptor"
	"github.com/balasai14/multi-face-reg/internal/extractor"
	"github.com/balasai14/multi-face-reg/internal/identity"
	"github.com/balasai14/multi-face-reg/internal/recognize"
)

// testEnv bundles the pieces handlers are wired with in production.
type testEnv struct {
	repo      *mock.IdentityRepository
	issuer    *auth.Issuer
	validator *descriptor.Validator
	service   *identity.Service
	index     *recognize.Index
	extractor *extractor.Client
}

// newTestEnv creates a service stack backed by the in-memory repository.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}

	repo := mock.NewIdentityRepository()
	validator := descriptor.NewValidator(constants.DefaultDescriptorDim, constants.DescriptorValueBound)
	matcher := descriptor.NewMatcher(constants.DefaultMatchThreshold)

	return &testEnv{
		repo:      repo,
		issuer:    issuer,
		validator: validator,
		service:   identity.NewService(repo, validator, matcher, issuer),
		index:     recognize.NewIndex(constants.DefaultMatchThreshold),
		extractor: extractor.NewClient(""),
	}
}

// descriptorJSON builds a JSON array of n copies of value.
func descriptorJSON(n int, value float64) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%g", value)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
