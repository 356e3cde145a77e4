package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
)

func TestGetArtifact_NotFound(t *testing.T) {
	svc := NewArtifactGetter(&mockRepo{}, &mockStorage{}, &mockCache{}, "artifacts")

	_, err := svc.GetArtifact(context.Background(), GetArtifactInput{ID: mustUUID("11111111-2222-3333-4444-555555555555")})
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestGetArtifact_DeletedIsNotFound(t *testing.T) {
	a := audioArtifact()
	a.Status = model.StatusDeleted
	svc := NewArtifactGetter(&mockRepo{artifactRecord: a}, &mockStorage{}, &mockCache{}, "artifacts")

	_, err := svc.GetArtifact(context.Background(), GetArtifactInput{ID: a.ID})
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestGetArtifact_CacheHit(t *testing.T) {
	cached := GetArtifactOutput{
		Status:     model.StatusProcessed,
		URL:        "https://example.com/cached",
		ValidUntil: time.Now().Add(30 * time.Minute),
	}
	data, err := json.Marshal(cached)
	if err != nil {
		t.Fatal(err)
	}
	repo := &mockRepo{}
	svc := NewArtifactGetter(repo, &mockStorage{}, &mockCache{data: data}, "artifacts")

	out, err := svc.GetArtifact(context.Background(), GetArtifactInput{ID: mustUUID("11111111-2222-3333-4444-555555555555")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.URL != "https://example.com/cached" {
		t.Errorf("expected the cached URL, got %q", out.URL)
	}
	if repo.getCalled {
		t.Error("expected no repository hit on a fresh cache entry")
	}
}

func TestGetArtifact_StaleCacheEntryIgnored(t *testing.T) {
	stale := GetArtifactOutput{
		Status:     model.StatusProcessed,
		URL:        "https://example.com/stale",
		ValidUntil: time.Now().Add(-time.Minute),
	}
	data, err := json.Marshal(stale)
	if err != nil {
		t.Fatal(err)
	}
	a := audioArtifact()
	a.SizeBytes = 42
	repo := &mockRepo{artifactRecord: a}
	svc := NewArtifactGetter(repo, &mockStorage{}, &mockCache{data: data}, "artifacts")

	out, err := svc.GetArtifact(context.Background(), GetArtifactInput{ID: a.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.URL == "https://example.com/stale" {
		t.Error("expected the stale cache entry to be ignored")
	}
	if !repo.getCalled {
		t.Error("expected a repository hit for a stale cache entry")
	}
}

func TestGetArtifact_ProcessedGetsDownloadLink(t *testing.T) {
	a := audioArtifact()
	a.SizeBytes = 42
	strg := &mockStorage{}
	cache := &mockCache{}
	svc := NewArtifactGetter(&mockRepo{artifactRecord: a}, strg, cache, "artifacts")

	out, err := svc.GetArtifact(context.Background(), GetArtifactInput{ID: a.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strg.presignCalled || strg.presignTTL != DownloadURLTTL {
		t.Error("expected a presigned link with the configured TTL")
	}
	if out.URL == "" {
		t.Error("expected a download URL")
	}
	if out.Metadata.SizeBytes != 42 || out.Metadata.MimeType != "audio/mpeg" {
		t.Errorf("unexpected metadata output: %+v", out.Metadata)
	}
	if !cache.setCalled {
		t.Error("expected the response to be cached")
	}
	if !cache.validUntil.After(time.Now()) {
		t.Error("expected a future cache expiry")
	}
}

func TestGetArtifact_PendingHasNoLink(t *testing.T) {
	a := audioArtifact()
	a.Status = model.StatusProcessing
	strg := &mockStorage{}
	cache := &mockCache{}
	svc := NewArtifactGetter(&mockRepo{artifactRecord: a}, strg, cache, "artifacts")

	out, err := svc.GetArtifact(context.Background(), GetArtifactInput{ID: a.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != model.StatusProcessing {
		t.Errorf("expected status processing, got %q", out.Status)
	}
	if out.URL != "" || strg.presignCalled {
		t.Error("expected no download link before processing completes")
	}
	if cache.setCalled {
		t.Error("expected no caching before processing completes")
	}
}

func TestGetArtifact_FailedExposesMessage(t *testing.T) {
	a := audioArtifact()
	a.Status = model.StatusFailed
	msg := "transcode failed: exit status 1"
	a.FailureMessage = &msg
	svc := NewArtifactGetter(&mockRepo{artifactRecord: a}, &mockStorage{}, &mockCache{}, "artifacts")

	out, err := svc.GetArtifact(context.Background(), GetArtifactInput{ID: a.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.FailureMessage == nil || *out.FailureMessage != msg {
		t.Errorf("expected the failure message, got %v", out.FailureMessage)
	}
}
