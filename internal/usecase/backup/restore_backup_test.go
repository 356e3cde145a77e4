package backup

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func gzipped(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRestoreBackup_LockHeld(t *testing.T) {
	strg := &mockStorage{objects: map[string][]byte{"b.sql.gz": gzipped(t, "-- dump")}}
	svc := NewBackupRestorer(&mockDumper{}, strg, NewBackupValidator(strg, "backups"), &mockAudit{}, &mockLocker{held: true}, "backups", "lessonloop")

	_, err := svc.RestoreBackup(context.Background(), "b.sql.gz")
	if !errors.Is(err, ErrBackupInProgress) {
		t.Fatalf("expected ErrBackupInProgress, got %v", err)
	}
}

func TestRestoreBackup_CorruptArchive(t *testing.T) {
	strg := &mockStorage{objects: map[string][]byte{"bad.sql.gz": []byte("not gzip")}}
	dumper := &mockDumper{}
	svc := NewBackupRestorer(dumper, strg, NewBackupValidator(strg, "backups"), &mockAudit{}, &mockLocker{}, "backups", "lessonloop")

	_, err := svc.RestoreBackup(context.Background(), "bad.sql.gz")
	if !errors.Is(err, ErrBackupCorrupt) {
		t.Fatalf("expected ErrBackupCorrupt, got %v", err)
	}
	if dumper.restoreCalled {
		t.Error("expected no restore attempt on a corrupt archive")
	}
	if dumper.dumpCalled {
		t.Error("expected no safety backup on a corrupt archive")
	}
}

func TestRestoreBackup_SafetyBackupFailureAborts(t *testing.T) {
	strg := &mockStorage{objects: map[string][]byte{"b.sql.gz": gzipped(t, "-- dump")}}
	dumper := &mockDumper{dumpErr: errors.New("mysqldump: exit status 2")}
	svc := NewBackupRestorer(dumper, strg, NewBackupValidator(strg, "backups"), &mockAudit{}, &mockLocker{}, "backups", "lessonloop")

	if _, err := svc.RestoreBackup(context.Background(), "b.sql.gz"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if dumper.restoreCalled {
		t.Error("expected no destructive restore without a safety backup")
	}
}

func TestRestoreBackup_Success(t *testing.T) {
	strg := &mockStorage{objects: map[string][]byte{"b.sql.gz": gzipped(t, "-- dump\nINSERT 1;\n")}}
	dumper := &mockDumper{}
	aud := &mockAudit{}
	lock := &mockLocker{}
	svc := NewBackupRestorer(dumper, strg, NewBackupValidator(strg, "backups"), aud, lock, "backups", "lessonloop")

	safetyKey, err := svc.RestoreBackup(context.Background(), "b.sql.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(safetyKey, "safety-lessonloop-") {
		t.Errorf("unexpected safety key %q", safetyKey)
	}
	if _, ok := strg.objects[safetyKey]; !ok {
		t.Error("expected the safety backup to be stored")
	}
	if !dumper.restoreCalled {
		t.Fatal("expected the restore to run")
	}
	if string(dumper.restored) != "-- dump\nINSERT 1;\n" {
		t.Errorf("restored content mismatch: %q", dumper.restored)
	}
	if aud.restoredKey != "b.sql.gz" || aud.safetyKey != safetyKey {
		t.Errorf("expected an audit event, got %+v", aud)
	}
	if !lock.unlockCalled {
		t.Error("expected the lock to be released")
	}
}
