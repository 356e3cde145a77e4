package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lessonloop/ingest-ms-go/internal/port"
)

func TestDeleteArtifact_AlreadyGoneIsIdempotent(t *testing.T) {
	repo := &mockRepo{}
	svc := NewArtifactDeleter(repo, &mockStorage{}, &mockCache{}, "artifacts")

	if err := svc.DeleteArtifact(context.Background(), DeleteArtifactInput{ID: mustUUID("11111111-2222-3333-4444-555555555555")}); err != nil {
		t.Fatalf("expected deleting a missing artifact to be a no-op, got %v", err)
	}
	if repo.deleteCalled {
		t.Error("expected no repository delete for a missing artifact")
	}
}

func TestDeleteArtifact_GetByIDError(t *testing.T) {
	repo := &mockRepo{getErr: errors.New("db fail")}
	svc := NewArtifactDeleter(repo, &mockStorage{}, &mockCache{}, "artifacts")

	if err := svc.DeleteArtifact(context.Background(), DeleteArtifactInput{ID: mustUUID("11111111-2222-3333-4444-555555555555")}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestDeleteArtifact_RemoveError(t *testing.T) {
	a := audioArtifact()
	strg := &mockStorage{removeErr: errors.New("remove fail")}
	svc := NewArtifactDeleter(&mockRepo{artifactRecord: a}, strg, &mockCache{}, "artifacts")

	if err := svc.DeleteArtifact(context.Background(), DeleteArtifactInput{ID: a.ID}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestDeleteArtifact_MissingObjectIgnored(t *testing.T) {
	a := audioArtifact()
	repo := &mockRepo{artifactRecord: a}
	strg := &mockStorage{removeErr: port.ErrObjectNotFound}
	svc := NewArtifactDeleter(repo, strg, &mockCache{}, "artifacts")

	if err := svc.DeleteArtifact(context.Background(), DeleteArtifactInput{ID: a.ID}); err != nil {
		t.Fatalf("expected a missing object to be ignored, got %v", err)
	}
	if !repo.deleteCalled {
		t.Error("expected the record to be deleted anyway")
	}
}

func TestDeleteArtifact_Success(t *testing.T) {
	a := audioArtifact()
	staged := filepath.Join(t.TempDir(), "staged.mp3")
	if err := os.WriteFile(staged, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	a.LocalPath = &staged

	repo := &mockRepo{artifactRecord: a}
	strg := &mockStorage{}
	cache := &mockCache{}
	svc := NewArtifactDeleter(repo, strg, cache, "artifacts")

	if err := svc.DeleteArtifact(context.Background(), DeleteArtifactInput{ID: a.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strg.removeCalled {
		t.Error("expected RemoveFile to be called")
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Error("expected staged file to be removed")
	}
	if !repo.deleteCalled {
		t.Error("expected repo.Delete to be called")
	}
	if !cache.deleteCalled {
		t.Error("expected cache delete to be called")
	}
}
