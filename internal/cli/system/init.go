package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/komaplan/internal/backup"
	"github.com/julianstephens/komaplan/internal/cli"
	"github.com/julianstephens/komaplan/internal/logger"
)

type InitCmd struct {
	Force    bool `help:"Delete an existing local store before initializing."`
	NoBackup bool `help:"Do not snapshot the store before --force deletes it." name:"no-backup"`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		path := ctx.Store.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			if !c.NoBackup {
				if mgr, err := backup.NewManager(path); err == nil {
					snap, err := mgr.Create()
					if err != nil {
						return fmt.Errorf("failed to snapshot existing store: %w", err)
					}
					ctx.Printf("Saved snapshot of existing store: %s\n", snap)
				} else {
					logger.Debug("Store cannot be snapshotted", "path", path, "error", err)
				}
			}
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing store: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing store: %w", err)
			}
			ctx.Printf("Deleted existing store at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing store: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Session.InvalidateSettings()
	ctx.Printf("Initialized komaplan storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
