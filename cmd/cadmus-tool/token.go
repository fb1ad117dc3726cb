package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelodel80/cadmus-api/internal/models"
	"github.com/angelodel80/cadmus-api/internal/tokens"
)

var (
	tokenTTL   time.Duration
	tokenEmail string
	tokenRoles []string
)

var tokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "Issue an access token signed with JWT_SECRET",
	Long: `Token prints an HS256 access token the API accepts when JWT_SECRET
is configured. Useful for scripts and local testing without Keycloak.

Example:
  cadmus-tool token zeus --roles admin --ttl 2h`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := tokens.GenerateAccessToken(cfg, &models.User{
			UserName: args[0],
			Email:    tokenEmail,
			Roles:    tokenRoles,
		}, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().StringSliceVar(&tokenRoles, "roles", nil, "roles claim")
}
