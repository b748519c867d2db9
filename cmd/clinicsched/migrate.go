package main

import (
	"github.com/spf13/cobra"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = rt.log.Sync() }()

			sqlDB, err := rt.db.DB()
			if err == nil {
				defer sqlDB.Close()
			}
			return database.Migrate(rt.db, rt.log)
		},
	}
}
