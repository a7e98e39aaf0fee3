// Command payfisc-admin runs the PayFisc administration console and its
// maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/payfisc/payfisc-admin/internal/config"
	"github.com/payfisc/payfisc-admin/internal/db"
	"github.com/payfisc/payfisc-admin/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "payfisc-admin",
		Short:         "Console d'administration PayFisc",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newOperatorCmd(),
		newAskCmd(),
	)
	return root
}

// env is what every command starts from.
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cfg.App.Dev)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log}, nil
}

func (e *env) openDB() (*gorm.DB, error) {
	conn, err := db.Open(e.cfg.Database, e.log, e.cfg.App.Dev)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Crée ou met à jour les tables locales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.log.Sync() //nolint:errcheck
			if _, err := e.openDB(); err != nil {
				return err
			}
			e.log.Info("migrations completed")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Crée les profils intégrés et l'administrateur initial",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.log.Sync() //nolint:errcheck
			conn, err := e.openDB()
			if err != nil {
				return err
			}
			created, err := db.Seed(conn, e.cfg.App.AdminEmail, e.cfg.App.AdminPassword)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Administrateur créé: %s\n", e.cfg.App.AdminEmail)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profils à jour")
			return nil
		},
	}
}
