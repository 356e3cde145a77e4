package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

func agedAudio(key string) model.Artifact {
	k := key
	return model.Artifact{
		ID:           uuid.NewUUID(),
		Kind:         model.KindAudio,
		Status:       model.StatusProcessed,
		StorageClass: model.StorageClassStandard,
		ObjectKey:    &k,
	}
}

func TestArchiveCold_ListError(t *testing.T) {
	repo := &mockRepo{listErr: errors.New("db fail")}
	svc := NewColdArchiver(repo, &mockStorage{}, "artifacts", 30*24*time.Hour)

	if _, err := svc.ArchiveCold(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestArchiveCold_Success(t *testing.T) {
	a := agedAudio("cold.mp3")
	repo := &mockRepo{audiosBefore: []model.Artifact{a}}
	strg := &mockStorage{}
	svc := NewColdArchiver(repo, strg, "artifacts", 30*24*time.Hour)

	report, err := svc.ArchiveCold(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Processed != 1 || len(report.Errors) != 0 {
		t.Fatalf("expected 1 archived, got %+v", report)
	}
	if strg.classSet["cold.mp3"] != model.StorageClassArchive {
		t.Errorf("expected archive class on the object, got %v", strg.classSet)
	}
	if len(repo.updated) != 1 || repo.updated[0].StorageClass != model.StorageClassArchive {
		t.Error("expected the record to carry the new storage class")
	}
}

func TestArchiveCold_PartialFailure(t *testing.T) {
	bad := agedAudio("bad.mp3")
	good := agedAudio("good.mp3")
	repo := &mockRepo{audiosBefore: []model.Artifact{bad, good}}
	strg := &mockStorage{setClassErr: map[string]error{"bad.mp3": errors.New("copy fail")}}
	svc := NewColdArchiver(repo, strg, "artifacts", 30*24*time.Hour)

	report, err := svc.ArchiveCold(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Processed != 1 {
		t.Errorf("expected the second item to still be archived, got %+v", report)
	}
	if len(report.Errors) != 1 || report.Errors[0].Item != bad.ID.String() {
		t.Errorf("expected one accumulated error for the bad item, got %+v", report.Errors)
	}
}
