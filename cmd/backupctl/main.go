package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lessonloop/ingest-ms-go/internal/audit"
	"github.com/lessonloop/ingest-ms-go/internal/config"
	"github.com/lessonloop/ingest-ms-go/internal/dump"
	"github.com/lessonloop/ingest-ms-go/internal/logger"
	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/storage"
	backupSvc "github.com/lessonloop/ingest-ms-go/internal/usecase/backup"
)

// deps bundles everything the subcommands share. Built lazily so that
// `backupctl --help` works without any configuration at all.
type deps struct {
	cfg    *config.Settings
	strg   port.Storage
	dumper *dump.MySQLDumper
	lock   backupSvc.Locker
	audit  port.AuditLogger
}

func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger.Init()

	strg, err := storage.NewStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		return nil, fmt.Errorf("could not initialize MinIO client: %w", err)
	}
	if err := strg.InitBucket(cfg.BackupsBucket, false); err != nil {
		return nil, fmt.Errorf("could not initialize bucket %q: %w", cfg.BackupsBucket, err)
	}

	dumper, err := dump.NewMySQLDumper(cfg.MySQLDSN, cfg.MysqldumpBin, cfg.MysqlBin)
	if err != nil {
		return nil, err
	}

	return &deps{
		cfg:    cfg,
		strg:   strg,
		dumper: dumper,
		lock:   backupSvc.NewFileLocker(cfg.BackupLockPath),
		audit:  audit.NewLogger(),
	}, nil
}

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Dump the registry database and upload it as a compressed backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			svc := backupSvc.NewBackupCreator(d.dumper, d.strg, d.audit, d.lock, d.cfg.BackupsBucket, d.cfg.DatabaseName)
			key, err := svc.CreateBackup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅  Backup created: %s\n", key)
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <key>",
		Short: "Restore the registry database from a stored backup",
		Long: `Restore validates the archive, takes a safety backup of the current
database state, and only then replays the dump. The safety backup key is
printed so the operator can roll back a bad restore.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			validator := backupSvc.NewBackupValidator(d.strg, d.cfg.BackupsBucket)
			svc := backupSvc.NewBackupRestorer(d.dumper, d.strg, validator, d.audit, d.lock, d.cfg.BackupsBucket, d.cfg.DatabaseName)
			safetyKey, err := svc.RestoreBackup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅  Restored %s (safety backup: %s)\n", args[0], safetyKey)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			svc := backupSvc.NewBackupLister(d.strg, d.cfg.BackupsBucket)
			backups, err := svc.ListBackups(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tSIZE\tLAST MODIFIED")
			for _, b := range backups {
				fmt.Fprintf(w, "%s\t%d\t%s\n", b.Key, b.SizeBytes, b.LastModified.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}

func newCleanupCmd() *cobra.Command {
	var retentionDays int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete backups older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			if retentionDays == 0 {
				retentionDays = d.cfg.BackupRetentionDays
			}
			svc := backupSvc.NewBackupCleaner(d.strg, d.audit, d.cfg.BackupsBucket, d.cfg.BackupKeepMin)
			report, err := svc.CleanupOldBackups(cmd.Context(), retentionDays)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅  Deleted %d backups, %d errors\n", report.Deleted, len(report.Errors))
			for _, e := range report.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "❌  %s: %v\n", e.Key, e.Err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "override the configured retention window")

	return cmd
}

func main() {
	root := &cobra.Command{
		Use:           "backupctl",
		Short:         "Manage registry database backups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCreateCmd(), newRestoreCmd(), newListCmd(), newCleanupCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Errorf(context.Background(), "❌  %v", err)
		os.Exit(1)
	}
}
