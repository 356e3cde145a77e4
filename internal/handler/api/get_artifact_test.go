package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lessonloop/ingest-ms-go/internal/api_context"
	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/usecase/artifact"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

type mockGetter struct {
	out    artifact.GetArtifactOutput
	getErr error

	called bool
	gotID  uuid.UUID
}

func (m *mockGetter) GetArtifact(ctx context.Context, in artifact.GetArtifactInput) (artifact.GetArtifactOutput, error) {
	m.called = true
	m.gotID = in.ID
	if m.getErr != nil {
		return artifact.GetArtifactOutput{}, m.getErr
	}
	return m.out, nil
}

func TestGetArtifactHandler_MissingID(t *testing.T) {
	h := GetArtifactHandler(&mockGetter{})
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/artifacts/x", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetArtifactHandler_NotFound(t *testing.T) {
	svc := &mockGetter{getErr: artifact.ErrArtifactNotFound}
	h := GetArtifactHandler(svc)

	id, _ := uuid.Parse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	req := httptest.NewRequest(http.MethodGet, "/artifacts/"+id.String(), nil)
	req = req.WithContext(context.WithValue(req.Context(), api_context.ArtifactIDKey, id))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestGetArtifactHandler_OK(t *testing.T) {
	svc := &mockGetter{out: artifact.GetArtifactOutput{
		Status: model.StatusProcessed,
		URL:    "https://example.com/download/a.mp3",
	}}
	h := GetArtifactHandler(svc)

	id, _ := uuid.Parse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	req := httptest.NewRequest(http.MethodGet, "/artifacts/"+id.String(), nil)
	req = req.WithContext(context.WithValue(req.Context(), api_context.ArtifactIDKey, id))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if svc.gotID != id {
		t.Errorf("expected the handler to pass id %s, got %s", id, svc.gotID)
	}
	if !strings.Contains(rr.Body.String(), "https://example.com/download/a.mp3") {
		t.Errorf("expected the download URL in the body, got %q", rr.Body.String())
	}
}
