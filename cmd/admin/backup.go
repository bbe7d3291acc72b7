package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khoahotran/talent-match/adapters/storage"
	backupUC "github.com/khoahotran/talent-match/internal/application/usecase/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Dump the database with pg_dump and upload it to object storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := storage.NewMinIOAdapter(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		out, err := backupUC.NewBackupUseCase(cfg.DB.DSN, store, backupUC.PGDump, log).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%d bytes)\n", out.Path, out.Size)
		return nil
	},
}
