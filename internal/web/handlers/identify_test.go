package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/balasai14/multi-face-reg/internal/extractor"
	"github.com/balasai14/multi-face-reg/internal/web/middleware"
)

// enrollViaHandler enrolls an identity through the signup handler so the
// index stays in sync, as it does in production.
func enrollViaHandler(t *testing.T, env *testEnv, key, name string, value float64) {
	t.Helper()
	handler := NewAuthHandler(env.service, env.issuer, env.index)
	req := httptest.NewRequest("POST", "/api/v1/auth/signup", signupBody(key, name, descriptorJSON(128, value)))
	recorder := httptest.NewRecorder()
	handler.Signup(recorder, req)
	assertStatusCode(t, recorder, http.StatusCreated)
}

func TestIdentify_FindsNearest(t *testing.T) {
	env := newTestEnv(t)
	enrollViaHandler(t, env, "R100", "Alice", 0.1)
	enrollViaHandler(t, env, "R200", "Bob", 0.5)

	handler := NewIdentifyHandler(env.service, env.validator, env.index, env.extractor)

	body := bytes.NewBufferString(fmt.Sprintf(`{"descriptor": %s, "limit": 5}`, descriptorJSON(128, 0.1)))
	req := httptest.NewRequest("POST", "/api/v1/identify", body)
	recorder := httptest.NewRecorder()

	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response IdentifyResponse
	parseJSONResponse(t, recorder, &response)
	if len(response.Candidates) != 1 {
		t.Fatalf("expected 1 candidate within threshold, got %d", len(response.Candidates))
	}
	if response.Candidates[0].IdentityKey != "R100" {
		t.Errorf("expected R100, got %s", response.Candidates[0].IdentityKey)
	}
}

func TestIdentify_NoEnrollments(t *testing.T) {
	env := newTestEnv(t)
	handler := NewIdentifyHandler(env.service, env.validator, env.index, env.extractor)

	body := bytes.NewBufferString(fmt.Sprintf(`{"descriptor": %s}`, descriptorJSON(128, 0.1)))
	req := httptest.NewRequest("POST", "/api/v1/identify", body)
	recorder := httptest.NewRecorder()

	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response IdentifyResponse
	parseJSONResponse(t, recorder, &response)
	if len(response.Candidates) != 0 {
		t.Errorf("expected empty candidates, got %d", len(response.Candidates))
	}
}

func TestIdentify_InvalidDescriptor(t *testing.T) {
	env := newTestEnv(t)
	handler := NewIdentifyHandler(env.service, env.validator, env.index, env.extractor)

	body := bytes.NewBufferString(fmt.Sprintf(`{"descriptor": %s}`, descriptorJSON(64, 0.1)))
	req := httptest.NewRequest("POST", "/api/v1/identify", body)
	recorder := httptest.NewRecorder()

	handler.Identify(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

// readyExtractor spins up a fake extraction service that answers /load and
// returns the given descriptor for /extract.
func readyExtractor(t *testing.T, value float64) *extractor.Client {
	t.Helper()

	descriptor := make([]float64, 128)
	for i := range descriptor {
		descriptor[i] = value
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/load":
			w.WriteHeader(http.StatusOK)
		case "/extract":
			json.NewEncoder(w).Encode(map[string]any{"descriptor": descriptor})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client := extractor.NewClient(server.URL)
	if err := client.Load(context.Background()); err != nil {
		t.Fatalf("extractor Load error: %v", err)
	}
	return client
}

func TestIdentifyImage_FindsNearest(t *testing.T) {
	env := newTestEnv(t)
	enrollViaHandler(t, env, "R100", "Alice", 0.1)

	handler := NewIdentifyHandler(env.service, env.validator, env.index, readyExtractor(t, 0.1))

	req := httptest.NewRequest("POST", "/api/v1/identify/image", bytes.NewBufferString("image-bytes"))
	recorder := httptest.NewRecorder()

	handler.IdentifyImage(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response IdentifyResponse
	parseJSONResponse(t, recorder, &response)
	if len(response.Candidates) != 1 || response.Candidates[0].IdentityKey != "R100" {
		t.Errorf("expected R100 from image identification, got %+v", response.Candidates)
	}
}

func TestIdentifyImage_NotReady(t *testing.T) {
	env := newTestEnv(t)
	handler := NewIdentifyHandler(env.service, env.validator, env.index, env.extractor)

	req := httptest.NewRequest("POST", "/api/v1/identify/image", bytes.NewBufferString("image-bytes"))
	recorder := httptest.NewRecorder()

	handler.IdentifyImage(recorder, req)

	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
}

func TestIdentifyImage_EmptyBody(t *testing.T) {
	env := newTestEnv(t)
	handler := NewIdentifyHandler(env.service, env.validator, env.index, env.extractor)

	req := httptest.NewRequest("POST", "/api/v1/identify/image", nil)
	recorder := httptest.NewRecorder()

	handler.IdentifyImage(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestGetIdentity(t *testing.T) {
	env := newTestEnv(t)
	enrollViaHandler(t, env, "R100", "Alice", 0.1)

	handler := NewIdentifyHandler(env.service, env.validator, env.index, env.extractor)

	req := httptest.NewRequest("GET", "/api/v1/identities/R100", nil)
	req = req.WithContext(middleware.SetSubjectInContext(req.Context(), "R100"))
	req = requestWithChiParams(req, map[string]string{"key": "R100"})
	recorder := httptest.NewRecorder()

	handler.GetIdentity(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response map[string]any
	parseJSONResponse(t, recorder, &response)
	if response["displayName"] != "Alice" {
		t.Errorf("expected displayName Alice, got %v", response["displayName"])
	}
	if _, leaked := response["descriptor"]; leaked {
		t.Error("profile response must not include the stored descriptor")
	}
}

func TestGetIdentity_NotFound(t *testing.T) {
	env := newTestEnv(t)
	handler := NewIdentifyHandler(env.service, env.validator, env.index, env.extractor)

	req := httptest.NewRequest("GET", "/api/v1/identities/R999", nil)
	req = requestWithChiParams(req, map[string]string{"key": "R999"})
	recorder := httptest.NewRecorder()

	handler.GetIdentity(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestSearchIdentities(t *testing.T) {
	env := newTestEnv(t)
	enrollViaHandler(t, env, "R100", "Jan Novák", 0.1)

	handler := NewIdentifyHandler(env.service, env.validator, env.index, env.extractor)

	req := httptest.NewRequest("GET", "/api/v1/identities?name=jan-novak", nil)
	recorder := httptest.NewRecorder()

	handler.SearchIdentities(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response map[string][]map[string]any
	parseJSONResponse(t, recorder, &response)
	if len(response["identities"]) != 1 {
		t.Fatalf("expected 1 match, got %d", len(response["identities"]))
	}

	// Missing query parameter is a client error.
	req = httptest.NewRequest("GET", "/api/v1/identities", nil)
	recorder = httptest.NewRecorder()
	handler.SearchIdentities(recorder, req)
	assertStatusCode(t, recorder, http.StatusBadRequest)
}
