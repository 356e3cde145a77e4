package dump

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lessonloop/ingest-ms-go/internal/port"
)

// MySQLDumper drives mysqldump/mysql child processes against the registry
// database. Both directions stream, so dumps never buffer fully in memory.
type MySQLDumper struct {
	dumpBin    string
	restoreBin string

	host     string
	port     string
	user     string
	password string
	dbName   string
}

// compile-time check: *MySQLDumper must satisfy port.Dumper
var _ port.Dumper = (*MySQLDumper)(nil)

// NewMySQLDumper derives connection parameters from the registry DSN.
func NewMySQLDumper(dsn, dumpBin, restoreBin string) (*MySQLDumper, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("dump: invalid DSN: %w", err)
	}

	host, portNum := parsed.Addr, "3306"
	if i := strings.LastIndex(parsed.Addr, ":"); i > 0 {
		host, portNum = parsed.Addr[:i], parsed.Addr[i+1:]
	}

	return &MySQLDumper{
		dumpBin:    dumpBin,
		restoreBin: restoreBin,
		host:       host,
		port:       portNum,
		user:       parsed.User,
		password:   parsed.Passwd,
		dbName:     parsed.DBName,
	}, nil
}

// DatabaseName returns the name of the dumped database.
func (d *MySQLDumper) DatabaseName() string { return d.dbName }

func (d *MySQLDumper) Dump(ctx context.Context, w io.Writer) error {
	args := []string{
		"--single-transaction",
		"--quick",
		"--routines",
		"--add-drop-table",
		"-h", d.host,
		"-P", d.port,
		"-u", d.user,
		d.dbName,
	}
	cmd := exec.CommandContext(ctx, d.dumpBin, args...) //nolint:gosec
	cmd.Env = append(cmd.Environ(), "MYSQL_PWD="+d.password)
	cmd.Stdout = w

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mysqldump: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (d *MySQLDumper) Restore(ctx context.Context, r io.Reader) error {
	args := []string{
		"-h", d.host,
		"-P", d.port,
		"-u", d.user,
		d.dbName,
	}
	cmd := exec.CommandContext(ctx, d.restoreBin, args...) //nolint:gosec
	cmd.Env = append(cmd.Environ(), "MYSQL_PWD="+d.password)
	cmd.Stdin = r

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mysql restore: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
