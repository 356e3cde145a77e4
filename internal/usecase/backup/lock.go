package backup

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Locker serializes backup and restore runs against one datastore. A restore
// racing another restore, or a backup racing the safety backup of a restore,
// would corrupt the fallback chain, so whoever cannot take the lock fails
// fast instead of queueing.
type Locker interface {
	TryLock() (bool, error)
	Unlock() error
}

type fileLocker struct {
	lock *flock.Flock
}

// NewFileLocker builds a Locker backed by an advisory file lock.
func NewFileLocker(path string) Locker {
	return &fileLocker{lock: flock.New(path)}
}

func (l *fileLocker) TryLock() (bool, error) {
	ok, err := l.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire backup lock: %w", err)
	}
	return ok, nil
}

func (l *fileLocker) Unlock() error {
	return l.lock.Unlock()
}
