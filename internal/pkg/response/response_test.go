package response_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/osintdesk/console-api/internal/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("malformed envelope: %v", err)
	}
	return resp
}

func TestListMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	response.WithMeta(rec, []string{"a", "b"}, response.Meta{Count: 2, Limit: 50, Offset: 100})

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decode(t, rec)
	if !resp.Success {
		t.Fatal("expected success envelope")
	}
	if resp.Meta == nil {
		t.Fatal("expected listing metadata")
	}
	if resp.Meta.Count != 2 || resp.Meta.Limit != 50 || resp.Meta.Offset != 100 {
		t.Fatalf("unexpected meta: %+v", resp.Meta)
	}
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Conflict(rec, "Insufficient credit balance")

	if rec.Code != 409 {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	resp := decode(t, rec)
	if resp.Success {
		t.Fatal("error responses must not claim success")
	}
	if resp.Error == nil || resp.Error.Code != "CONFLICT" {
		t.Fatalf("unexpected error info: %+v", resp.Error)
	}
	if resp.Meta != nil {
		t.Fatal("error responses carry no meta")
	}
}

func TestValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	response.ValidationError(rec, map[string]string{"credits": "must be positive"})

	if rec.Code != 422 {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	resp := decode(t, rec)
	if resp.Error == nil || resp.Error.Details["credits"] != "must be positive" {
		t.Fatalf("expected field detail, got %+v", resp.Error)
	}
}
