// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/identity"
	identitypg "github.com/taskhive/taskhive/internal/identity/postgres"
	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/pkg/errutil"
)

// Default timeout for the create-admin command.
const defaultCreateAdminTimeout = 30 * time.Second

// createAdminConfig holds flag values for the create-admin command.
type createAdminConfig struct {
	fullName    string
	email       string
	password    string
	phoneNumber string
	timeout     time.Duration
}

// NewCreateAdminCmd creates the create-admin subcommand.
// Admin accounts can otherwise only be created by an existing admin, so
// the first one has to be bootstrapped directly against the store.
func NewCreateAdminCmd() *cobra.Command {
	cfg := &createAdminConfig{}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Bootstrap an admin account",
		Long: `Creates an admin account directly in the database, bypassing the
admin-only registration rule. This command is idempotent - it reports
success if the email is already registered.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateAdmin(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.fullName, "full-name", "", "admin full name")
	cmd.Flags().StringVar(&cfg.email, "email", "", "admin email address")
	cmd.Flags().StringVar(&cfg.password, "password", "", "admin password")
	cmd.Flags().StringVar(&cfg.phoneNumber, "phone", "", "admin phone number")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultCreateAdminTimeout, "timeout for database operations")

	_ = cmd.MarkFlagRequired("full-name") //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("email")     //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("password")  //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("phone")     //nolint:errcheck // flag exists

	return cmd
}

func runCreateAdmin(cmd *cobra.Command, cfg *createAdminConfig) error {
	appCfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if appCfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("%s environment variable is required", config.EnvDatabaseURL)
	}

	if err := identity.ValidatePassword(cfg.password); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, appCfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	hasher := identity.NewBcryptHasher(appCfg.HashCost)
	hash, err := hasher.Hash(cfg.password)
	if err != nil {
		return err
	}

	account, err := identity.NewAccount(
		cfg.fullName, cfg.email, hash, cfg.phoneNumber,
		identity.RoleAdmin, identity.StatusActive,
	)
	if err != nil {
		return err
	}

	repo := identitypg.NewAccountRepository(pool)
	if err := repo.Create(ctx, account); err != nil {
		if errutil.Code(err) == "EMAIL_TAKEN" {
			cmd.Printf("Admin account %s already exists, nothing to do\n", account.Email)
			return nil
		}
		return err
	}

	cmd.Printf("Created admin account %s (%s)\n", account.Email, account.ID)
	return nil
}
