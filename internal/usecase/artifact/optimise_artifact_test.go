package artifact

import (
	"context"
	"errors"
	"testing"

	"github.com/lessonloop/ingest-ms-go/internal/model"
)

func TestOptimiseArtifact_NotAnAudio(t *testing.T) {
	a := &model.Artifact{ID: mustUUID("11111111-2222-3333-4444-555555555555"), Kind: model.KindVideo, Status: model.StatusProcessed}
	svc := NewOptimiser(&mockRepo{artifactRecord: a}, &mockStorage{}, &mockExtractor{}, &mockCache{}, "artifacts", t.TempDir())

	_, err := svc.OptimiseArtifact(context.Background(), OptimiseArtifactInput{ID: a.ID})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestOptimiseArtifact_NotProcessed(t *testing.T) {
	a := audioArtifact()
	a.Status = model.StatusUploaded
	svc := NewOptimiser(&mockRepo{artifactRecord: a}, &mockStorage{}, &mockExtractor{}, &mockCache{}, "artifacts", t.TempDir())

	_, err := svc.OptimiseArtifact(context.Background(), OptimiseArtifactInput{ID: a.ID})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestOptimiseArtifact_AlreadyOptimised(t *testing.T) {
	a := audioArtifact()
	a.Optimised = true
	a.SizeBytes = 500
	a.Metadata.OriginalSizeBytes = 1000
	a.Metadata.CompressionRatio = 0.5
	strg := &mockStorage{}
	svc := NewOptimiser(&mockRepo{artifactRecord: a}, strg, &mockExtractor{}, &mockCache{}, "artifacts", t.TempDir())

	report, err := svc.OptimiseArtifact(context.Background(), OptimiseArtifactInput{ID: a.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OriginalSizeBytes != 1000 || report.OptimisedSizeBytes != 500 || report.CompressionRatio != 0.5 {
		t.Errorf("unexpected report: %+v", report)
	}
	if strg.saveCalled {
		t.Error("expected no re-encode for an already optimised artifact")
	}
}

func TestOptimiseArtifact_ExtractorFailure(t *testing.T) {
	a := audioArtifact()
	a.SizeBytes = 1000
	svc := NewOptimiser(&mockRepo{artifactRecord: a}, &mockStorage{}, &mockExtractor{extractErr: errors.New("exit status 1")}, &mockCache{}, "artifacts", t.TempDir())

	_, err := svc.OptimiseArtifact(context.Background(), OptimiseArtifactInput{ID: a.ID})
	if !errors.Is(err, ErrTranscodeFailure) {
		t.Fatalf("expected ErrTranscodeFailure, got %v", err)
	}
}

func TestOptimiseArtifact_Success(t *testing.T) {
	a := audioArtifact()
	a.SizeBytes = 1000
	repo := &mockRepo{artifactRecord: a}
	strg := &mockStorage{}
	ext := &mockExtractor{output: []byte("tiny audio")}
	cache := &mockCache{}
	svc := NewOptimiser(repo, strg, ext, cache, "artifacts", t.TempDir())

	report, err := svc.OptimiseArtifact(context.Background(), OptimiseArtifactInput{ID: a.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ext.policy != OptimiseAudioPolicy {
		t.Errorf("expected the optimise policy, got %+v", ext.policy)
	}
	if report.OriginalSizeBytes != 1000 {
		t.Errorf("expected original size 1000, got %d", report.OriginalSizeBytes)
	}
	if report.OptimisedSizeBytes != int64(len("tiny audio")) {
		t.Errorf("expected optimised size %d, got %d", len("tiny audio"), report.OptimisedSizeBytes)
	}
	want := float64(len("tiny audio")) / 1000.0
	if report.CompressionRatio != want {
		t.Errorf("expected ratio %v, got %v", want, report.CompressionRatio)
	}

	if !strg.copyCalled || strg.copiedSrc != "derived.mp3.tmp" || strg.copiedDest != "derived.mp3" {
		t.Errorf("expected temp key copy onto the authoritative key, got %q -> %q", strg.copiedSrc, strg.copiedDest)
	}
	if len(strg.removedKeys) != 1 || strg.removedKeys[0] != "derived.mp3.tmp" {
		t.Errorf("expected temp key removal, got %v", strg.removedKeys)
	}

	if !a.Optimised {
		t.Error("expected artifact to be marked optimised")
	}
	if a.Metadata.OriginalSizeBytes != 1000 {
		t.Errorf("expected original size in metadata, got %d", a.Metadata.OriginalSizeBytes)
	}
	if repo.updated == nil {
		t.Error("expected repo.Update to be called")
	}
	if !cache.deleteCalled {
		t.Error("expected cache delete to be called")
	}
}
