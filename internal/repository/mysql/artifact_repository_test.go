package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

var testID = mustID("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

func mustID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func newMockRepo(t *testing.T) (*ArtifactRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	return NewArtifactRepository(sqlDB), mock, func() { _ = sqlDB.Close() }
}

func TestArtifactRepository_Update_NeverWritesStatus(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	// in-memory snapshot is stale: the row has already moved to `processed`
	// via a concurrent Transition. Update must not be able to write the old
	// status back.
	objectKey := "abc.mp4"
	a := &model.Artifact{
		ID:              testID,
		OwnerID:         testID,
		StorageFilename: objectKey,
		MimeType:        "video/mp4",
		SizeBytes:       1024,
		ObjectKey:       &objectKey,
		Kind:            model.KindVideo,
		Status:          model.StatusUploaded, // stale
		StorageClass:    model.StorageClassStandard,
	}

	mock.ExpectExec(regexp.QuoteMeta(`
      UPDATE artifacts
      SET
        original_filename = ?,
        storage_filename  = ?,
        mime_type         = ?,
        size_bytes        = ?,
        local_path        = ?,
        object_key        = ?,
        remote_url        = ?,
        kind              = ?,
        storage_class     = ?,
        optimised         = ?,
        metadata          = ?
      WHERE id = ?
    `)).
		WithArgs(
			a.OriginalFilename,
			a.StorageFilename,
			a.MimeType,
			a.SizeBytes,
			a.LocalPath,
			a.ObjectKey,
			a.RemoteURL,
			a.Kind,
			a.StorageClass,
			a.Optimised,
			sqlmock.AnyArg(), // metadata JSON
			a.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), a); err != nil {
		t.Errorf("Update() returned unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestArtifactRepository_Transition_Success(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM artifacts WHERE id = ? FOR UPDATE`)).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(model.StatusUploaded)))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE artifacts SET status = ?, failure_message = ? WHERE id = ?`)).
		WithArgs(model.StatusProcessing, nil, testID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Transition(context.Background(), testID, model.StatusProcessing, nil); err != nil {
		t.Errorf("Transition() returned unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestArtifactRepository_Transition_SameStatusNoOp(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM artifacts WHERE id = ? FOR UPDATE`)).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(model.StatusProcessed)))
	mock.ExpectCommit() // no UPDATE in between

	if err := repo.Transition(context.Background(), testID, model.StatusProcessed, nil); err != nil {
		t.Errorf("Transition() returned unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestArtifactRepository_Transition_InvalidTransition(t *testing.T) {
	repo, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM artifacts WHERE id = ? FOR UPDATE`)).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(model.StatusProcessed)))
	mock.ExpectRollback()

	err := repo.Transition(context.Background(), testID, model.StatusUploaded, nil)
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
