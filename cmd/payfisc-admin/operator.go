package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/internal/db"
)

func newOperatorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operator",
		Short: "Gestion des opérateurs de la console",
	}
	cmd.AddCommand(newOperatorCreateCmd())
	return cmd
}

func newOperatorCreateCmd() *cobra.Command {
	var (
		email, name, password, profile string
		site                           int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crée un opérateur",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch profile {
			case gate.ProfileAdministrateur, gate.ProfileAgent, gate.ProfileConsultation:
			default:
				return fmt.Errorf("profil inconnu %q", profile)
			}
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.log.Sync() //nolint:errcheck
			conn, err := e.openDB()
			if err != nil {
				return err
			}
			if err := db.SeedProfiles(conn); err != nil {
				return err
			}
			op, err := db.CreateOperator(conn, email, name, password, profile, site)
			if errors.Is(err, db.ErrOperatorExists) {
				return fmt.Errorf("l'opérateur %s existe déjà", email)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opérateur %d créé (%s, profil %s, site %d)\n", op.ID, op.Email, profile, op.SiteID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "adresse e-mail (obligatoire)")
	cmd.Flags().StringVar(&name, "name", "", "nom affiché")
	cmd.Flags().StringVar(&password, "password", "", "mot de passe (obligatoire)")
	cmd.Flags().StringVar(&profile, "profile", gate.ProfileAgent, "administrateur, agent ou consultation")
	cmd.Flags().IntVar(&site, "site", 0, "site de rattachement, 0 pour national")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
