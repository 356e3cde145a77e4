package backup

import (
	"context"
	"errors"
	"testing"
)

func TestListBackups_ListError(t *testing.T) {
	strg := &mockStorage{listErr: errors.New("bucket gone")}
	svc := NewBackupLister(strg, "backups")

	if _, err := svc.ListBackups(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestListBackups_NewestFirst(t *testing.T) {
	files := agedBackups(1, 2, 3)
	strg := &mockStorage{files: files}
	svc := NewBackupLister(strg, "backups")

	backups, err := svc.ListBackups(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].LastModified.After(backups[i-1].LastModified) {
			t.Fatal("expected backups sorted newest first")
		}
	}
	if backups[0].Key != files[0].Key || backups[0].SizeBytes != 100 {
		t.Errorf("unexpected first entry: %+v", backups[0])
	}
}
