package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mid "github.com/OFFIS-RIT/enricher/internal/server/middleware"
	"github.com/OFFIS-RIT/enricher/pkg/common"
	"github.com/OFFIS-RIT/enricher/pkg/enrich"

	"github.com/golang-jwt/jwt/v5"
)

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, doc common.Document) ([]common.ExtractionDocument, error) {
	if doc.ID == "bad" {
		return nil, errors.New("extraction failure: extractor returned status 500")
	}
	return []common.ExtractionDocument{{
		ID: doc.ID,
		Entities: []common.Entity{{
			StartOffset: 0,
			EndOffset:   8,
			EntityType:  "DIAGNOSIS",
			LinkedConcepts: []common.LinkedConcept{
				{SourceTag: "UMLS", ConceptID: strPtr("C0011849")},
			},
		}},
	}}, nil
}

func strPtr(s string) *string {
	return &s
}

func newTestApp(t *testing.T) *mid.App {
	t.Helper()
	p, err := enrich.NewProcessor(enrich.NewProcessorParams{Extractor: stubExtractor{}})
	if err != nil {
		t.Fatalf("NewProcessor() unexpected error: %v", err)
	}
	return &mid.App{Processor: p, AuthDisabled: true}
}

func doRequest(t *testing.T, app *mid.App, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	e := NewEcho(app, "1M")
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestApp(t), http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("GET /health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestEnrich_Batch(t *testing.T) {
	body := `{"values": [
		{"recordId": "1", "data": {"text": "diabetes"}},
		null,
		{"data": {"text": "no id"}},
		{"recordId": "bad", "data": {"text": "whatever"}}
	]}`
	rec := doRequest(t, newTestApp(t), http.MethodPost, "/api/enrich", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/enrich = %d %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Values []struct {
			RecordID string                   `json:"recordId"`
			Data     *common.EnrichmentResult `json:"data"`
			Errors   []common.Message         `json:"errors"`
		} `json:"values"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Values) != 2 {
		t.Fatalf("expected 2 values, got %d: %s", len(out.Values), rec.Body.String())
	}

	first := out.Values[0]
	if first.RecordID != "1" || first.Data == nil || first.Errors != nil {
		t.Fatalf("unexpected first record %+v", first)
	}
	if len(first.Data.Concepts) != 1 || first.Data.Concepts[0] != "UMLS C0011849 (diabetes)" {
		t.Fatalf("unexpected concepts %q", first.Data.Concepts)
	}
	if first.Data.Relations == nil {
		t.Fatalf("relations serialized as null: %s", rec.Body.String())
	}

	second := out.Values[1]
	if second.RecordID != "bad" || second.Data != nil || len(second.Errors) != 1 {
		t.Fatalf("unexpected second record %+v", second)
	}
	if second.Errors[0].Message != "extraction failure: extractor returned status 500" {
		t.Fatalf("unexpected error message %q", second.Errors[0].Message)
	}
}

func TestEnrich_MalformedBatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"NoValues", `{"items": []}`},
		{"NullValues", `{"values": null}`},
		{"NullBody", `null`},
		{"EmptyBody", ``},
		{"InvalidJSON", `{"values": [`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, newTestApp(t), http.MethodPost, "/api/enrich", tc.body, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("POST /api/enrich = %d %s, want 400", rec.Code, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), `"values"`) {
				t.Fatalf("malformed batch returned a partial batch: %s", rec.Body.String())
			}
		})
	}
}

func TestEnrich_EmptyValues(t *testing.T) {
	rec := doRequest(t, newTestApp(t), http.MethodPost, "/api/enrich", `{"values": []}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/enrich = %d %s", rec.Code, rec.Body.String())
	}
	if strings.TrimSpace(rec.Body.String()) != `{"values":[]}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestEnrich_Auth(t *testing.T) {
	secret := []byte("test-secret")
	sign := func(claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		return token
	}

	app := newTestApp(t)
	app.AuthDisabled = false
	app.MasterAPIKey = "master-key"
	app.KeyFunc = func(*jwt.Token) (any, error) { return secret, nil }

	body := `{"values": [{"recordId": "1", "data": {"text": "diabetes"}}]}`

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"NoToken", "", http.StatusUnauthorized},
		{"WrongKey", "nope", http.StatusUnauthorized},
		{"MasterKey", "master-key", http.StatusOK},
		{"JWTWithPermission", sign(jwt.MapClaims{"sub": "u1", "permissions": []string{"enrich.run"}}), http.StatusOK},
		{"JWTAdminWithoutPermissions", sign(jwt.MapClaims{"sub": "u2", "role": "admin"}), http.StatusOK},
		{"JWTWithoutPermission", sign(jwt.MapClaims{"sub": "u3"}), http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, app, http.MethodPost, "/api/enrich", body, tc.token)
			if rec.Code != tc.want {
				t.Fatalf("POST /api/enrich = %d %s, want %d", rec.Code, rec.Body.String(), tc.want)
			}
		})
	}
}

func TestEnrich_MasterKeyOnly(t *testing.T) {
	app := newTestApp(t)
	app.AuthDisabled = false
	app.MasterAPIKey = "master-key"

	body := `{"values": []}`
	if rec := doRequest(t, app, http.MethodPost, "/api/enrich", body, "some.jwt.token"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a JWKS, got %d", rec.Code)
	}
	if rec := doRequest(t, app, http.MethodPost, "/api/enrich", body, "master-key"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with the master key, got %d", rec.Code)
	}
}

func TestEnrich_UnconfiguredAuthRejects(t *testing.T) {
	app := newTestApp(t)
	app.AuthDisabled = false

	rec := doRequest(t, app, http.MethodPost, "/api/enrich", `{"values": []}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without any auth configured, got %d", rec.Code)
	}
	rec = doRequest(t, app, http.MethodPost, "/api/enrich", `{"values": []}`, "anything")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bearer token without JWKS or master key, got %d", rec.Code)
	}
}
