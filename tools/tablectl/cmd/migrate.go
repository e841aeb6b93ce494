package cmd

import (
	"context"
	"fmt"

	"github.com/sajid-karim/tablebook/libs/config"
	"github.com/sajid-karim/tablebook/libs/db"
	"github.com/sajid-karim/tablebook/tools/tablectl/internal/migrate"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations (DATABASE_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, err := config.RequiredString("DATABASE_URL")
			if err != nil {
				return err
			}
			ctx := context.Background()
			pool, err := db.Open(ctx, dbURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := migrate.Up(ctx, pool); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}
