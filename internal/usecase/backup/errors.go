package backup

import "errors"

var (
	// ErrBackupNotFound is returned when the named backup key is absent
	// from the backups bucket.
	ErrBackupNotFound = errors.New("backup: not found")
	// ErrBackupCorrupt is returned when an archive fails the pre-restore
	// sanity check.
	ErrBackupCorrupt = errors.New("backup: archive is corrupt")
	// ErrBackupInProgress is returned when another backup or restore holds
	// the serialization lock.
	ErrBackupInProgress = errors.New("backup: another backup or restore is in progress")
)
