package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	server "github.com/grclab/riskflow/pkg/controller/http"
	"github.com/grclab/riskflow/pkg/repository/memory"
	"github.com/grclab/riskflow/pkg/usecase"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	srv, err := server.New(usecase.New(memory.New()))
	gt.NoError(t, err).Required()
	return srv
}

func doJSON(t *testing.T, srv *server.Server, method, path, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if actor != "" {
		req.Header.Set("X-Actor-ID", actor)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestIntakeAndValidateOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/orgs/acme/risks", "reporter-1", map[string]any{
		"title":       "Publicly exposed admin console",
		"description": "Management UI reachable from the internet",
		"source":      "pentest",
	})
	gt.V(t, rec.Code).Equal(http.StatusCreated)

	var created struct {
		ID      int64  `json:"id"`
		HumanID string `json:"human_id"`
		Status  string `json:"status"`
	}
	gt.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	gt.V(t, created.HumanID).Equal("RISK-001")
	gt.V(t, created.Status).Equal("identified")

	rec = doJSON(t, srv, http.MethodPost, "/api/risks/1/validate", "sme-1", map[string]any{
		"decision": "approve",
	})
	gt.V(t, rec.Code).Equal(http.StatusOK)

	rec = doJSON(t, srv, http.MethodGet, "/api/risks/1/state", "", nil)
	gt.V(t, rec.Code).Equal(http.StatusOK)

	var state struct {
		Stage   string   `json:"stage"`
		Actions []string `json:"actions"`
	}
	gt.NoError(t, json.NewDecoder(rec.Body).Decode(&state))
	gt.V(t, state.Stage).Equal("awaiting_assessor")
	gt.A(t, state.Actions).Length(1)
	gt.V(t, state.Actions[0]).Equal("assign_assessor")
}

func TestMutationRequiresActorHeader(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/orgs/acme/risks", "", map[string]any{
		"title": "No actor supplied",
	})
	gt.V(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestUnknownRiskReturns404(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/risks/999", "", nil)
	gt.V(t, rec.Code).Equal(http.StatusNotFound)

	rec = doJSON(t, srv, http.MethodPost, "/api/risks/999/validate", "sme-1", map[string]any{
		"decision": "approve",
	})
	gt.V(t, rec.Code).Equal(http.StatusNotFound)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	gt.V(t, rec.Code).Equal(http.StatusOK)
}
