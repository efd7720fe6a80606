package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/bootstrap"
	"github.com/yigit/portfoliohub/internal/config"
	"github.com/yigit/portfoliohub/internal/pkg/validation"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long:  "Signs an access token with the configured JWT secret. Identity is managed outside this service, so this is the way to obtain tokens for local testing.",
	RunE:  runToken,
}

var (
	tokenUser string
	tokenRole string
)

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "User id; for students this is the student id (required)")
	tokenCmd.Flags().StringVarP(&tokenRole, "role", "r", string(models.RoleStudent), "Role: STUDENT, FACULTY or ADMIN")

	if err := tokenCmd.MarkFlagRequired("user"); err != nil {
		panic(fmt.Sprintf("failed to mark user flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	role := models.RoleType(tokenRole)
	if !role.IsValid() {
		return fmt.Errorf("unknown role %q", tokenRole)
	}
	if err := validation.StudentID(tokenUser); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	token, expiresAt, err := bootstrap.NewJWTService(cfg).GenerateToken(tokenUser, role)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
