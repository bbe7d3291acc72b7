package backup

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/pkg/apperror"
	"github.com/khoahotran/talent-match/pkg/logger"
)

const Folder = "backups/database"

// DumpFunc produces a database dump for dsn.
type DumpFunc func(ctx context.Context, dsn string) ([]byte, error)

// PGDump shells out to pg_dump in custom format.
func PGDump(ctx context.Context, dsn string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pg_dump", "--dbname="+dsn, "--format=c")

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pg_dump failed: %w (stderr: %s)", err, stderr.String())
	}
	return out.Bytes(), nil
}

// BackupUseCase dumps the database into the private object store, next
// to the resumes.
type BackupUseCase struct {
	dsn     string
	storage service.ResumeStorage
	dump    DumpFunc
	logger  logger.Logger
	now     func() time.Time
}

func NewBackupUseCase(dsn string, storage service.ResumeStorage, dump DumpFunc, log logger.Logger) *BackupUseCase {
	if dump == nil {
		dump = PGDump
	}
	return &BackupUseCase{
		dsn:     dsn,
		storage: storage,
		dump:    dump,
		logger:  log,
		now:     time.Now,
	}
}

type BackupOutput struct {
	Path string
	Size int64
}

func (uc *BackupUseCase) Execute(ctx context.Context) (*BackupOutput, error) {
	uc.logger.Info("Starting database backup...")

	data, err := uc.dump(ctx, uc.dsn)
	if err != nil {
		uc.logger.Error("Database dump failed", err)
		return nil, apperror.NewInternal("database dump failed", err)
	}

	timestamp := uc.now().UTC().Format("2006-01-02_15-04-05")
	path := fmt.Sprintf("%s/backup-%s.dump", Folder, timestamp)

	if err := uc.storage.Upload(ctx, path, bytes.NewReader(data), int64(len(data)), "application/octet-stream"); err != nil {
		uc.logger.Error("Failed to upload backup", err, zap.String("path", path))
		return nil, apperror.NewUnavailable("object storage", err)
	}

	uc.logger.Info("Database backup completed and uploaded successfully",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return &BackupOutput{Path: path, Size: int64(len(data))}, nil
}
