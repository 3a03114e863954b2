package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"axis.io/contentops/internal/auth"
	"axis.io/contentops/internal/config"
	"axis.io/contentops/internal/core"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install a brand fixture (the built-in pilot brand by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := loadFixture(seedFile)
		if err != nil {
			return err
		}

		ctx := context.Background()
		b, err := openBackend(ctx, config.AppConfig)
		if err != nil {
			return err
		}
		defer b.Close()

		ws, err := newWorkspace(ctx, b, core.OfflineGenerator{}, nil)
		if err != nil {
			return err
		}
		ws.Seed(fixture)
		ws.Wait()

		for _, fb := range fixture.Brands {
			logger.Info().Str("brand_id", fb.ID).Str("name", fb.Name).Msg("Seeded brand")
		}
		return nil
	},
}

func loadFixture(path string) (core.Fixture, error) {
	if path == "" {
		return core.DefaultFixture()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Fixture{}, fmt.Errorf("failed to read fixture: %w", err)
	}
	return core.ParseFixture(data)
}

var (
	userID       string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user that can log in to the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userID == "" || userPassword == "" {
			return errors.New("--id and --password are required")
		}
		b, err := openBackend(context.Background(), config.AppConfig)
		if err != nil {
			return err
		}
		defer b.Close()

		existing, err := b.users.GetUserByExternalID(userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("user %q already exists", userID)
		}
		hash, err := auth.HashPassword(userPassword)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user, err := b.users.CreateUser(userID, hash)
		if err != nil {
			return err
		}
		logger.Info().Int64("id", user.ID).Str("user", user.ExternalUserID).Msg("Created user")
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for a user id",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userID == "" {
			return errors.New("--id is required")
		}
		if config.AppConfig.JWTSecret == "" {
			return errors.New("JWT_SECRET environment variable is required")
		}
		token, err := auth.IssueToken(userID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML fixture to install")

	userAddCmd.Flags().StringVar(&userID, "id", "", "external user id")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "password")
	userCmd.AddCommand(userAddCmd)

	tokenCmd.Flags().StringVar(&userID, "id", "", "external user id")
}
