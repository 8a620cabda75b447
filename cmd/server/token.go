package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/prudhvinik1/electoralsync/internal/config"
	"github.com/prudhvinik1/electoralsync/internal/services"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var subject string

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for the sync endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is required")
			}

			token, expiresAt, err := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry).GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&subject, "subject", "", "Operator identity recorded in the token")
	_ = tokenCmd.MarkFlagRequired("subject")

	return tokenCmd
}
