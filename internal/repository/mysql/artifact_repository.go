package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

type ArtifactRepository struct {
	db *sql.DB
}

// compile-time check: *ArtifactRepository must satisfy port.ArtifactRepository
var _ port.ArtifactRepository = (*ArtifactRepository)(nil)

func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

const artifactColumns = `
  id, owner_id, original_filename, storage_filename, mime_type, size_bytes,
  local_path, object_key, remote_url, kind, status, storage_class, optimised,
  failure_message, metadata, created_at, updated_at
`

func (r *ArtifactRepository) Create(ctx context.Context, a *model.Artifact) error {
	log.Printf("creating database record for artifact #%s, at status %q...", a.ID, a.Status)

	const query = `
      INSERT INTO artifacts
        (id, owner_id, original_filename, storage_filename, mime_type, size_bytes,
         local_path, object_key, remote_url, kind, status, storage_class, optimised,
         failure_message, metadata)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.OwnerID, a.OriginalFilename, a.StorageFilename,
		a.MimeType, a.SizeBytes, a.LocalPath, a.ObjectKey, a.RemoteURL,
		a.Kind, a.Status, a.StorageClass, a.Optimised,
		a.FailureMessage, a.Metadata,
	)
	return err
}

func (r *ArtifactRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifacts WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *ArtifactRepository) GetChildByParentID(ctx context.Context, parentID uuid.UUID) (*model.Artifact, error) {
	// the parent link lives inside the metadata JSON document
	query := `
      SELECT ` + artifactColumns + `
      FROM artifacts
      WHERE JSON_UNQUOTE(JSON_EXTRACT(metadata, '$.parent_artifact_id')) = ?
        AND status != ?
      LIMIT 1
    `
	return r.scanOne(r.db.QueryRowContext(ctx, query, parentID.String(), model.StatusDeleted))
}

// Update persists every mutable column except status and failure_message:
// those move only through Transition, which locks the row and checks the
// state machine. A caller holding a stale snapshot can therefore never write
// an old status back over a concurrent transition.
func (r *ArtifactRepository) Update(ctx context.Context, a *model.Artifact) error {
	log.Printf("updating database record for artifact #%s...", a.ID)

	const query = `
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
    `
	_, err := r.db.ExecContext(ctx, query,
		a.OriginalFilename, a.StorageFilename, a.MimeType, a.SizeBytes,
		a.LocalPath, a.ObjectKey, a.RemoteURL, a.Kind,
		a.StorageClass, a.Optimised, a.Metadata,
		a.ID, // WHERE clause
	)
	return err
}

// Transition moves an artifact to newStatus inside one transaction with the
// row locked, so two concurrent deliveries can never both act on a stale
// status. Re-asserting the current status is a no-op.
func (r *ArtifactRepository) Transition(ctx context.Context, id uuid.UUID, newStatus model.ArtifactStatus, failureMessage *string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var current model.ArtifactStatus
	row := tx.QueryRowContext(ctx, `SELECT status FROM artifacts WHERE id = ? FOR UPDATE`, id)
	if err := row.Scan(&current); err != nil {
		return err
	}

	if current == newStatus {
		return tx.Commit() // idempotent redelivery
	}
	if !current.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: %s → %s", model.ErrInvalidTransition, current, newStatus)
	}

	log.Printf("transitioning artifact #%s from %q to %q...", id, current, newStatus)
	if _, err := tx.ExecContext(ctx,
		`UPDATE artifacts SET status = ?, failure_message = ? WHERE id = ?`,
		newStatus, failureMessage, id,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// MergeMetadata overlays patch onto the stored metadata under a row lock so
// a concurrent probe cannot clobber fields it did not set.
func (r *ArtifactRepository) MergeMetadata(ctx context.Context, id uuid.UUID, patch model.Metadata) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var current model.Metadata
	row := tx.QueryRowContext(ctx, `SELECT metadata FROM artifacts WHERE id = ? FOR UPDATE`, id)
	if err := row.Scan(&current); err != nil {
		return err
	}

	current.Merge(patch)
	if _, err := tx.ExecContext(ctx, `UPDATE artifacts SET metadata = ? WHERE id = ?`, current, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ArtifactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	log.Printf("deleting database record for artifact #%s...", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, id)
	return err
}

func (r *ArtifactRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, f port.ArtifactFilter) ([]model.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifacts WHERE owner_id = ?`
	args := []any{ownerID}
	if f.Kind != nil {
		query += ` AND kind = ?`
		args = append(args, *f.Kind)
	}
	if f.Status != nil {
		query += ` AND status = ?`
		args = append(args, *f.Status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	return r.scanMany(ctx, query, args...)
}

func (r *ArtifactRepository) ListProcessedVideosBefore(ctx context.Context, before time.Time) ([]model.Artifact, error) {
	query := `
      SELECT ` + artifactColumns + `
      FROM artifacts
      WHERE kind = ? AND status = ? AND created_at < ?
    `
	return r.scanMany(ctx, query, model.KindVideo, model.StatusProcessed, before)
}

func (r *ArtifactRepository) ListArchivableAudioBefore(ctx context.Context, before time.Time) ([]model.Artifact, error) {
	query := `
      SELECT ` + artifactColumns + `
      FROM artifacts
      WHERE kind = ? AND status = ? AND storage_class != ? AND created_at < ?
    `
	return r.scanMany(ctx, query, model.KindAudio, model.StatusProcessed, model.StorageClassArchive, before)
}

func (r *ArtifactRepository) ListUnoptimisedAudioBefore(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	const query = `
      SELECT id
      FROM artifacts
      WHERE kind = ? AND status = ? AND optimised = FALSE AND created_at < ?
    `
	rows, err := r.db.QueryContext(ctx, query, model.KindAudio, model.StatusProcessed, before)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ArtifactRepository) scanOne(row *sql.Row) (*model.Artifact, error) {
	var a model.Artifact
	if err := row.Scan(
		&a.ID, &a.OwnerID, &a.OriginalFilename, &a.StorageFilename,
		&a.MimeType, &a.SizeBytes, &a.LocalPath, &a.ObjectKey, &a.RemoteURL,
		&a.Kind, &a.Status, &a.StorageClass, &a.Optimised,
		&a.FailureMessage, &a.Metadata, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArtifactRepository) scanMany(ctx context.Context, query string, args ...any) ([]model.Artifact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Artifact
	for rows.Next() {
		var a model.Artifact
		if err := rows.Scan(
			&a.ID, &a.OwnerID, &a.OriginalFilename, &a.StorageFilename,
			&a.MimeType, &a.SizeBytes, &a.LocalPath, &a.ObjectKey, &a.RemoteURL,
			&a.Kind, &a.Status, &a.StorageClass, &a.Optimised,
			&a.FailureMessage, &a.Metadata, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
