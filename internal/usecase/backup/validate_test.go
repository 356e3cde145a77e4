package backup

import (
	"context"
	"errors"
	"testing"
)

func TestValidateBackup_NotFound(t *testing.T) {
	svc := NewBackupValidator(&mockStorage{}, "backups")

	_, err := svc.ValidateBackup(context.Background(), "missing.sql.gz")
	if !errors.Is(err, ErrBackupNotFound) {
		t.Fatalf("expected ErrBackupNotFound, got %v", err)
	}
}

func TestValidateBackup_ZeroLength(t *testing.T) {
	strg := &mockStorage{objects: map[string][]byte{"empty.sql.gz": {}}}
	svc := NewBackupValidator(strg, "backups")

	valid, err := svc.ValidateBackup(context.Background(), "empty.sql.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid {
		t.Error("expected a zero-length archive to be invalid")
	}
}

func TestValidateBackup_WrongMagic(t *testing.T) {
	strg := &mockStorage{objects: map[string][]byte{"plain.sql.gz": []byte("-- not gzip at all")}}
	svc := NewBackupValidator(strg, "backups")

	valid, err := svc.ValidateBackup(context.Background(), "plain.sql.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid {
		t.Error("expected a non-gzip archive to be invalid")
	}
}

func TestValidateBackup_SingleByte(t *testing.T) {
	strg := &mockStorage{objects: map[string][]byte{"tiny.sql.gz": {0x1f}}}
	svc := NewBackupValidator(strg, "backups")

	valid, err := svc.ValidateBackup(context.Background(), "tiny.sql.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid {
		t.Error("expected a truncated header to be invalid")
	}
}

func TestValidateBackup_Valid(t *testing.T) {
	strg := &mockStorage{objects: map[string][]byte{"good.sql.gz": {0x1f, 0x8b, 0x08, 0x00}}}
	svc := NewBackupValidator(strg, "backups")

	valid, err := svc.ValidateBackup(context.Background(), "good.sql.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected a gzip-headed archive to be valid")
	}
}
