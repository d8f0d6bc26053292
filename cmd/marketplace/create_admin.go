package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/core/ports"
	"github.com/freshproduce/marketplace/internal/core/service"
	mongostore "github.com/freshproduce/marketplace/internal/infrastructure/db/mongo"
	"github.com/freshproduce/marketplace/internal/pkg/config"
	"github.com/freshproduce/marketplace/internal/pkg/validation"
	"github.com/freshproduce/marketplace/pkg/logger"
)

var adminFlags struct {
	name     string
	email    string
	password string
}

// createAdminCmd bootstraps the first administrator.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account directly in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return createAdmin(cmd.Context(), cmd.OutOrStdout(), ports.UserInput{
			Name:     adminFlags.name,
			Email:    adminFlags.email,
			Password: adminFlags.password,
		})
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.name, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminFlags.password, "password", "", "password (at least 6 characters)")
	for _, name := range []string{"name", "email", "password"} {
		_ = createAdminCmd.MarkFlagRequired(name)
	}
}

func createAdmin(ctx context.Context, out io.Writer, input ports.UserInput) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: "warn", Pretty: true, Service: "marketplace"})

	client, db, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	creds, err := service.NewCredentialService(cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)
	if err != nil {
		return err
	}

	admins := service.NewUserService(domain.RoleAdmin, mongostore.NewUserRepository(db), creds, validation.New(), log)
	admin, err := admins.Create(ctx, input)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			return err
		}
		return fmt.Errorf("create admin: %s", domain.MessageOf(err))
	}

	fmt.Fprintf(out, "admin %s created (%s)\n", admin.ID, admin.Email)
	return nil
}
