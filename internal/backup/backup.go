// Package backup keeps timestamped snapshots of local stores (SQLite databases
// and plan workbooks) next to the store file.
package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/logger"
)

const (
	// MaxSnapshots is how many snapshots are kept per store.
	MaxSnapshots = 14
	DirName      = "backups"

	stampFormat = "20060102-150405"
)

// Snapshot is one backup file.
type Snapshot struct {
	Path      string
	Timestamp time.Time
	Size      int64
	// seq orders snapshots taken within the same second.
	seq int
}

// Manager snapshots a single store file into <store dir>/backups.
type Manager struct {
	storePath string
	dir       string
	prefix    string
	ext       string
	workbook  bool
	Now       func() time.Time
}

// NewManager returns a manager for storePath. Only .db/.sqlite and .xlsx stores
// can be snapshotted.
func NewManager(storePath string) (*Manager, error) {
	ext := strings.ToLower(filepath.Ext(storePath))
	switch ext {
	case ".xlsx", ".db", ".sqlite", ".sqlite3":
	default:
		return nil, errs.Unavailable("snapshots need a local .db or .xlsx store, got %q", storePath)
	}
	base := strings.TrimSuffix(filepath.Base(storePath), filepath.Ext(storePath))
	return &Manager{
		storePath: storePath,
		dir:       filepath.Join(filepath.Dir(storePath), DirName),
		prefix:    base + "-",
		ext:       ext,
		workbook:  ext == ".xlsx",
		Now:       time.Now,
	}, nil
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a new snapshot and prunes the oldest beyond MaxSnapshots.
func (m *Manager) Create() (string, error) {
	path, err := m.create()
	if err != nil {
		return "", err
	}
	if err := m.prune(); err != nil {
		logger.Warn("Failed to prune old snapshots", "dir", m.dir, "error", err)
	}
	return path, nil
}

func (m *Manager) create() (string, error) {
	if _, err := os.Stat(m.storePath); os.IsNotExist(err) {
		return "", errs.Unavailable("store does not exist: %s", m.storePath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	stamp := m.Now().UTC().Format(stampFormat)
	path := filepath.Join(m.dir, m.prefix+stamp+m.ext)
	for n := 1; fileExists(path); n++ {
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique snapshot name")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s%s-%d%s", m.prefix, stamp, n, m.ext))
	}

	if err := m.verify(m.storePath); err != nil {
		return "", fmt.Errorf("store appears to be corrupted: %w", err)
	}
	if m.workbook {
		if err := copyFile(m.storePath, path); err != nil {
			return "", fmt.Errorf("failed to copy workbook: %w", err)
		}
	} else if err := vacuumInto(m.storePath, path); err != nil {
		return "", err
	}
	logger.Info("Snapshot created", "store", m.storePath, "path", path)
	return path, nil
}

func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()
	if _, err := db.Exec("VACUUM INTO ?", dst); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		db.Close()
		return copyFile(src, dst)
	}
	return nil
}

// List returns snapshots newest first. Files that do not match the naming scheme are ignored.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, m.prefix) || !strings.HasSuffix(name, m.ext) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, m.prefix), m.ext)
		seq := 0
		if len(stamp) > len(stampFormat) && stamp[len(stampFormat)] == '-' {
			n, err := strconv.Atoi(stamp[len(stampFormat)+1:])
			if err != nil {
				continue
			}
			stamp, seq = stamp[:len(stampFormat)], n
		}
		ts, err := time.Parse(stampFormat, stamp)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Snapshot{Path: filepath.Join(m.dir, name), Timestamp: ts, Size: info.Size(), seq: seq})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].seq > out[j].seq
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (m *Manager) prune() error {
	snaps, err := m.List()
	if err != nil {
		return err
	}
	for i := MaxSnapshots; i < len(snaps); i++ {
		if err := os.Remove(snaps[i].Path); err != nil {
			return fmt.Errorf("failed to remove old snapshot %s: %w", snaps[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the store file with snapshot. The current store is snapshotted
// first without pruning. The caller must have closed the store.
func (m *Manager) Restore(snapshot string) error {
	if !fileExists(snapshot) {
		return errs.Validation("snapshot does not exist: %s", snapshot)
	}
	if err := m.verify(snapshot); err != nil {
		return errs.Validation("snapshot is corrupted or invalid: %v", err)
	}

	if fileExists(m.storePath) {
		current, err := m.create()
		if err != nil {
			return fmt.Errorf("failed to snapshot current store before restore: %w", err)
		}
		logger.Info("Snapshot of current store taken before restore", "path", current)
	}

	tmp := m.storePath + ".restore.tmp"
	if err := copyFile(snapshot, tmp); err != nil {
		return fmt.Errorf("failed to copy snapshot: %w", err)
	}
	if err := os.Rename(tmp, m.storePath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return fmt.Errorf("failed to restore store: %w", err)
	}
	return nil
}

func (m *Manager) verify(path string) error {
	if m.workbook {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return err
		}
		return f.Close()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
