package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

func agedVideo(key string) model.Artifact {
	k := key
	return model.Artifact{
		ID:        uuid.NewUUID(),
		Kind:      model.KindVideo,
		Status:    model.StatusProcessed,
		ObjectKey: &k,
	}
}

func TestPurgeOriginals_ListError(t *testing.T) {
	repo := &mockRepo{listErr: errors.New("db fail")}
	svc := NewOriginalsPurger(repo, &mockStorage{}, "artifacts", 7*24*time.Hour)

	if _, err := svc.PurgeOriginals(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestPurgeOriginals_Empty(t *testing.T) {
	svc := NewOriginalsPurger(&mockRepo{}, &mockStorage{}, "artifacts", 7*24*time.Hour)

	report, err := svc.PurgeOriginals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Processed != 0 || len(report.Errors) != 0 {
		t.Errorf("expected an empty report, got %+v", report)
	}
}

func TestPurgeOriginals_Success(t *testing.T) {
	staged := filepath.Join(t.TempDir(), "old.mp4")
	if err := os.WriteFile(staged, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := agedVideo("old.mp4")
	a.LocalPath = &staged

	repo := &mockRepo{videosBefore: []model.Artifact{a}}
	strg := &mockStorage{}
	svc := NewOriginalsPurger(repo, strg, "artifacts", 7*24*time.Hour)

	report, err := svc.PurgeOriginals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Processed != 1 || len(report.Errors) != 0 {
		t.Fatalf("expected 1 purged, got %+v", report)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Error("expected staged file to be removed")
	}
	if len(strg.removedKeys) != 1 || strg.removedKeys[0] != "old.mp4" {
		t.Errorf("expected object removal, got %v", strg.removedKeys)
	}
	if len(repo.transitionedTo) != 1 || repo.transitionedTo[0] != model.StatusDeleted {
		t.Errorf("expected transition to deleted, got %v", repo.transitionedTo)
	}
	// local path goes first, pointers second
	if len(repo.updated) != 2 {
		t.Fatalf("expected two updates, got %d", len(repo.updated))
	}
	final := repo.updated[len(repo.updated)-1]
	if final.LocalPath != nil || final.ObjectKey != nil || final.RemoteURL != nil {
		t.Error("expected all file pointers to be cleared")
	}
}

func TestPurgeOriginals_PartialFailure(t *testing.T) {
	bad := agedVideo("bad.mp4")
	good := agedVideo("good.mp4")
	repo := &mockRepo{videosBefore: []model.Artifact{bad, good}}
	strg := &mockStorage{removeErr: map[string]error{"bad.mp4": errors.New("remove fail")}}
	svc := NewOriginalsPurger(repo, strg, "artifacts", 7*24*time.Hour)

	report, err := svc.PurgeOriginals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Processed != 1 {
		t.Errorf("expected the second item to still be purged, got %+v", report)
	}
	if len(report.Errors) != 1 || report.Errors[0].Item != bad.ID.String() {
		t.Errorf("expected one accumulated error for the bad item, got %+v", report.Errors)
	}
}
