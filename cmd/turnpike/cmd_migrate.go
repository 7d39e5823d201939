package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/cadenzr/turnpike/src/config"
	"github.com/cadenzr/turnpike/src/storage"
)

// MigrateCmd manages the database schema.
type MigrateCmd struct {
	Up MigrateUpCmd `cmd:"" help:"Run pending migrations"`
}

// MigrateUpCmd applies all pending migrations.
type MigrateUpCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

func (c *MigrateUpCmd) Run(kctx *kong.Context, cli *CLI) error {
	dbPath := c.DBPath
	if dbPath == "" {
		cfg, err := loadConfig(cli)
		if err != nil {
			return err
		}
		dbPath = config.DatabasePath(cfg)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	fmt.Printf("Database ready: %s\n", dbPath)
	return nil
}
