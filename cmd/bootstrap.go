package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/hr-directory/internal/user"
	userPostgres "github.com/frahmantamala/hr-directory/internal/user/postgres"
	"github.com/frahmantamala/hr-directory/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	superuserName     string
	superuserEmail    string
	superuserPassword string
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the HR role groups and, optionally, a superuser",
	Long: `Create the HR_ReadOnly, HR_ReadWrite and HR_FullAccess groups if they
are missing. With --superuser, also create that superuser account unless the
username already exists. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		lg := logger.LoggerWrapper()

		dbs, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer dbs.Close()

		svc := user.NewService(userPostgres.NewRepository(dbs.SQLX), cfg.Security.BCryptCost, lg)

		created, err := svc.EnsureRoleGroups(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("role groups ready (%d created)\n", created)

		if superuserName == "" {
			return nil
		}
		ok, err := svc.EnsureSuperuser(ctx, superuserName, superuserEmail, superuserPassword)
		if err != nil {
			return err
		}
		if ok {
			fmt.Println("created superuser:", superuserName)
		} else {
			fmt.Println("superuser already exists:", superuserName)
		}
		return nil
	},
}

func init() {
	bootstrapCmd.Flags().StringVar(&superuserName, "superuser", "", "username of a superuser to create")
	bootstrapCmd.Flags().StringVar(&superuserEmail, "email", "", "superuser email, required with --superuser")
	bootstrapCmd.Flags().StringVar(&superuserPassword, "password", "", "superuser password")
}
