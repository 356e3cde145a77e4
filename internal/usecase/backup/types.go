package backup

import (
	"fmt"
	"time"
)

// BackupInfo describes one archive in the backups bucket.
type BackupInfo struct {
	Key          string    `json:"key"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// CleanupError records one backup the retention sweep could not delete.
type CleanupError struct {
	Key string
	Err error
}

func (e CleanupError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e CleanupError) Unwrap() error { return e.Err }

// CleanupReport summarises one retention sweep.
type CleanupReport struct {
	Deleted int            `json:"deleted"`
	Errors  []CleanupError `json:"errors,omitempty"`
}
