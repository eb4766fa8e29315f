package main

import (
	"fmt"

	"github.com/SscSPs/finance_assistant/pkg/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StorageDriver != config.StoragePostgres {
			return fmt.Errorf("migrate requires STORAGE_DRIVER=%s", config.StoragePostgres)
		}
		return runMigrations(cfg)
	},
}
