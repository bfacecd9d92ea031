package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goatkit/incidentquery/internal/auth"
)

var (
	tokenSubject string
	tokenRole    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed bearer token for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.IsProduction() {
			return fmt.Errorf("token minting is disabled in production")
		}

		sub, err := uuid.Parse(tokenSubject)
		if err != nil {
			return fmt.Errorf("invalid --sub: %w", err)
		}
		role, err := auth.ParseRole(tokenRole)
		if err != nil {
			return err
		}

		token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).GenerateToken(sub, role)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "sub", "", "subject id (uuid)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "", "role: user, manager or company")
	_ = tokenCmd.MarkFlagRequired("sub")
	_ = tokenCmd.MarkFlagRequired("role")
}
