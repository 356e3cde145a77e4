package worker

import (
	"context"
	"log"

	"github.com/lessonloop/ingest-ms-go/internal/usecase/lifecycle"
)

// Sweep handlers are deliberately tolerant: a sweep returns an error only
// when it could not run at all. Per-item failures are already accumulated in
// the report and logged by the use case, so the task still acks.

func PurgeOriginalsHandler(ctx context.Context, svc lifecycle.OriginalsPurger) error {
	report, err := svc.PurgeOriginals(ctx)
	if err != nil {
		log.Printf("❌  Purge sweep failed: %v", err)
		return err
	}
	log.Printf("✅  Purge sweep done: %d purged, %d errors", report.Processed, len(report.Errors))
	return nil
}

func ArchiveColdHandler(ctx context.Context, svc lifecycle.ColdArchiver) error {
	report, err := svc.ArchiveCold(ctx)
	if err != nil {
		log.Printf("❌  Archive sweep failed: %v", err)
		return err
	}
	log.Printf("✅  Archive sweep done: %d archived, %d errors", report.Processed, len(report.Errors))
	return nil
}

func ReapTempHandler(ctx context.Context, svc lifecycle.TempReaper) error {
	report, err := svc.ReapTemp(ctx)
	if err != nil {
		log.Printf("❌  Temp reap failed: %v", err)
		return err
	}
	log.Printf("✅  Temp reap done: %d reaped, %d errors", report.Processed, len(report.Errors))
	return nil
}

func OptimiseBacklogHandler(ctx context.Context, svc lifecycle.BacklogOptimiser) error {
	report, err := svc.OptimiseBacklog(ctx)
	if err != nil {
		log.Printf("❌  Optimise backlog sweep failed: %v", err)
		return err
	}
	log.Printf("✅  Optimise backlog sweep done: %d enqueued, %d errors", report.Processed, len(report.Errors))
	return nil
}
