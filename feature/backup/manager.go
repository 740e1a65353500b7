package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"collection-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const timestampLayout = "20060102T150405Z"

// Manager creates backups of spreadsheets before they are overwritten.
type Manager struct {
	cfg        Config
	client     storage.Client
	storageCfg storage.Config
	logger     *zap.Logger
	now        func() time.Time
}

// NewManager creates a backup manager. client may be nil, in which case
// retained backups are only kept on the local filesystem.
func NewManager(cfg Config, client storage.Client, storageCfg storage.Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:        cfg,
		client:     client,
		storageCfg: storageCfg,
		logger:     logger,
		now:        time.Now,
	}
}

// BackupPath returns the name of a backup of target taken at ts:
// "<name>.backup-<UTC timestamp><ext>".
func BackupPath(dir, target string, ts time.Time) string {
	base := filepath.Base(target)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s.backup-%s%s", stem, ts.UTC().Format(timestampLayout), ext))
}

// Guard holds the backup of one target for the duration of a destructive write.
type Guard struct {
	m        *Manager
	target   string
	backup   string
	retain   bool
	released bool
}

// Acquire copies target to a backup before it is overwritten. A retained
// backup is kept after success (and mirrored to object storage when a client
// is configured); a transient one is removed once the write succeeds. When
// target does not exist there is nothing to protect and the guard is empty.
func (m *Manager) Acquire(ctx context.Context, target string, retain bool) (*Guard, error) {
	g := &Guard{m: m, target: target, retain: retain}

	info, err := os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return g, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", target, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", target)
	}

	dir := filepath.Dir(target)
	if retain && m.cfg.Dir != "" {
		dir = m.cfg.Dir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create backup directory: %w", err)
		}
	}

	backup, err := m.copyUnique(target, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to back up %s: %w", target, err)
	}
	g.backup = backup

	if retain && m.client != nil {
		if err := m.mirror(ctx, backup); err != nil {
			_ = osRemove(backup)
			return nil, err
		}
	}

	m.logger.Info("Backup created",
		zap.String("target", target),
		zap.String("backup", backup),
		zap.Bool("retained", retain),
	)
	return g, nil
}

// copyUnique copies target into dir under a timestamped name, bumping a
// counter when a backup with the same second already exists.
func (m *Manager) copyUnique(target, dir string) (string, error) {
	path := BackupPath(dir, target, m.now())
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		err := copyFile(target, path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, os.ErrExist) || i > 100 {
			return "", err
		}
		path = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
}

// mirror uploads a retained backup to the configured bucket.
func (m *Manager) mirror(ctx context.Context, path string) error {
	bucket := m.storageCfg.Bucket

	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.storageCfg.Region}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	key := storage.ObjectKey(m.storageCfg.Prefix, filepath.Base(path))
	if _, err := m.client.PutObject(ctx, bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType: contentType(path),
	}); err != nil {
		return fmt.Errorf("failed to upload backup %s: %w", key, err)
	}

	stat, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to verify backup %s: %w", key, err)
	}
	if stat.Size != info.Size() {
		_ = m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
		return fmt.Errorf("backup %s uploaded %d of %d bytes", key, stat.Size, info.Size())
	}

	m.logger.Info("Backup mirrored", zap.String("bucket", bucket), zap.String("key", key))
	return nil
}

func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// Path returns the backup file, or "" when the target did not exist.
func (g *Guard) Path() string {
	return g.backup
}

// Retained reports whether the backup outlives a successful write.
func (g *Guard) Retained() bool {
	return g.retain && g.backup != ""
}

// Release ends the guard. After a successful write a transient backup is
// removed and retained backups are pruned; after a failure the target is
// restored from the backup.
func (g *Guard) Release(success bool) error {
	if g.released {
		return nil
	}
	g.released = true

	if g.backup == "" {
		return nil
	}

	if !success {
		if err := g.restore(); err != nil {
			return err
		}
		if !g.retain {
			return osRemove(g.backup)
		}
		return nil
	}

	if !g.retain {
		if err := osRemove(g.backup); err != nil {
			return fmt.Errorf("failed to remove transient backup: %w", err)
		}
		return nil
	}
	return g.m.prune(g.target, filepath.Dir(g.backup))
}

// restore copies the backup back over the target.
func (g *Guard) restore() error {
	src, err := os.Open(g.backup)
	if err != nil {
		return fmt.Errorf("failed to open backup %s: %w", g.backup, err)
	}
	defer src.Close()

	err = WriteAtomic(g.target, func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to restore %s from %s: %w", g.target, g.backup, err)
	}
	g.m.logger.Warn("Target restored from backup", zap.String("target", g.target), zap.String("backup", g.backup))
	return nil
}

// prune removes the oldest retained backups of target beyond cfg.Keep.
// Files matching the pattern but not the backup naming are left alone.
func (m *Manager) prune(target, dir string) error {
	if m.cfg.Keep <= 0 {
		return nil
	}

	base := filepath.Base(target)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext) + ".backup-"
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*"+ext))
	if err != nil {
		return err
	}

	backups := make([]backupName, 0, len(matches))
	for _, path := range matches {
		if b, ok := parseBackupName(path, prefix, ext); ok {
			backups = append(backups, b)
		}
	}
	if len(backups) <= m.cfg.Keep {
		return nil
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].stamp.Equal(backups[j].stamp) {
			return backups[i].stamp.Before(backups[j].stamp)
		}
		return backups[i].seq < backups[j].seq
	})
	for _, old := range backups[:len(backups)-m.cfg.Keep] {
		if err := osRemove(old.path); err != nil {
			return fmt.Errorf("failed to prune backup %s: %w", old.path, err)
		}
		m.logger.Debug("Backup pruned", zap.String("backup", old.path))
	}
	return nil
}

// backupName is a retained backup ordered by its timestamp, then by the
// counter copyUnique appends within the same second.
type backupName struct {
	path  string
	stamp time.Time
	seq   int
}

func parseBackupName(path, prefix, ext string) (backupName, bool) {
	rest := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), prefix), ext)
	stamp, counter, bumped := strings.Cut(rest, "-")

	ts, err := time.Parse(timestampLayout, stamp)
	if err != nil {
		return backupName{}, false
	}
	seq := 0
	if bumped {
		seq, err = strconv.Atoi(counter)
		if err != nil || seq <= 0 {
			return backupName{}, false
		}
	}
	return backupName{path: path, stamp: ts, seq: seq}, true
}
