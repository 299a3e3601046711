package system

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/komaplan/internal/backup"
	"github.com/julianstephens/komaplan/internal/cli"
)

func snapshotManager(ctx *cli.Context) (*backup.Manager, error) {
	mgr, err := backup.NewManager(ctx.Store.GetConfigPath())
	if err != nil {
		return nil, err
	}
	mgr.Now = ctx.Session.Now
	return mgr, nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := snapshotManager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Create()
	if err != nil {
		return err
	}
	ctx.Printf("✓ Snapshot created: %s\n", path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := snapshotManager(ctx)
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		ctx.Printf("No snapshots in %s\n", mgr.Dir())
		return nil
	}
	ctx.Printf("Snapshots in %s:\n", mgr.Dir())
	for _, s := range snaps {
		ctx.Printf("  %s  %s  %d KB\n", s.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(s.Path), (s.Size+1023)/1024)
	}
	return nil
}

// BackupRestoreCmd replaces the store with a snapshot, newest when none is named.
type BackupRestoreCmd struct {
	Snapshot string `arg:"" optional:"" help:"Snapshot file name or path (defaults to the newest)."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := snapshotManager(ctx)
	if err != nil {
		return err
	}

	path := c.Snapshot
	if path == "" {
		snaps, err := mgr.List()
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			return fmt.Errorf("no snapshots in %s", mgr.Dir())
		}
		path = snaps[0].Path
	} else if filepath.Base(path) == path {
		path = filepath.Join(mgr.Dir(), path)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	if err := mgr.Restore(path); err != nil {
		return err
	}
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("restored store failed to load: %w", err)
	}
	ctx.Session.InvalidateSettings()
	ctx.Printf("✓ Restored %s from %s\n", ctx.Store.GetConfigPath(), filepath.Base(path))
	return nil
}
