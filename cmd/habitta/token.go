package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/neomorfeo/habitta/internal/adapter/auth"
	"github.com/neomorfeo/habitta/internal/config"
	"github.com/neomorfeo/habitta/internal/domain"
)

func tokenCmd() *cobra.Command {
	var userID, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user",
		Example: `  habitta token --user 0b6f3c1e-2a41-4c7e-9d35-6f1a2b3c4d03 --role owner
  curl -H "Authorization: Bearer $(habitta token --user ...)" localhost:8080/api/applications/my`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			tokens, err := auth.NewTokens(cfg.Auth)
			if err != nil {
				return err
			}

			signed, err := tokens.Mint(domain.Actor{ID: userID, Role: domain.Role(role)}, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id carried as the token subject")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleUser), "platform role (admin, owner, user)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
