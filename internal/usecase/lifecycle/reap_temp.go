package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/logger"
)

// TempReaper clears aged leftovers out of the local staging area.
type TempReaper interface {
	ReapTemp(ctx context.Context) (SweepReport, error)
}

type tempReaperSrv struct {
	stagingDir string
	maxAge     time.Duration
}

// NewTempReaper constructs a TempReaper implementation.
func NewTempReaper(stagingDir string, maxAge time.Duration) TempReaper {
	return &tempReaperSrv{stagingDir: stagingDir, maxAge: maxAge}
}

// ReapTemp removes every file in the staging directory older than the
// horizon. Pure disk hygiene: it never consults the registry, and anything
// younger than the horizon is left alone so in-flight jobs keep their
// staged sources.
func (s *tempReaperSrv) ReapTemp(ctx context.Context) (SweepReport, error) {
	entries, err := os.ReadDir(s.stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return SweepReport{}, nil
		}
		return SweepReport{}, fmt.Errorf("failed reading staging dir %q: %w", s.stagingDir, err)
	}

	cutoff := time.Now().Add(-s.maxAge)
	var report SweepReport
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			report.addError(entry.Name(), err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.stagingDir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warnf(ctx, "failed reaping temp file %q: %v", path, err)
			report.addError(entry.Name(), err)
			continue
		}
		logger.Infof(ctx, "reaped aged temp file %q", path)
		report.Processed++
	}
	return report, nil
}
