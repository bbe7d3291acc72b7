package main

import (
	"github.com/spf13/cobra"

	"github.com/khoahotran/talent-match/migrations"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		if migrateDown {
			if err := migrations.Down(cfg.DB.DSN); err != nil {
				return err
			}
			log.Info("Migrations rolled back")
			return nil
		}
		if err := migrations.Up(cfg.DB.DSN); err != nil {
			return err
		}
		log.Info("Migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back every migration")
}
