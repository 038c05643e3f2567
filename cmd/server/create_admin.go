package main

import (
	"context"

	"github.com/climate-dashboard-api/internal/database"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/repository"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/spf13/cobra"
)

// createAdminCommand bootstraps an administrator. Self-registration only
// ever creates viewers.
func createAdminCommand(a *app) *cobra.Command {
	var req models.RegisterRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(func(db *database.DB) error {
				// Sessions are not touched, so no session store is needed
				repos := repository.New(db, nil, a.cfg.Auth.SessionTTL)
				services := service.NewServices(repos, a.cfg, a.log, service.Deps{})

				account, err := services.Auth.CreateAdmin(context.Background(), &req)
				if err != nil {
					return err
				}
				a.log.Info().
					Str("account_id", account.ID).
					Str("username", account.Username).
					Msg("Administrator created")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "login name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Organization, "organization", "", "organization")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
