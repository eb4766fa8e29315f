package main

import (
	"fmt"
	"time"

	"github.com/SscSPs/finance_assistant/internal/middleware"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a ledger owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl <= 0 {
			ttl = cfg.JWTExpiryDuration
		}
		token, err := middleware.IssueToken(cfg.JWTSecret, cfg.JWTIssuer, user, ttl, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "user id to put in the token subject")
	tokenCmd.Flags().Duration("ttl", 0, "token lifetime (default JWT_EXPIRY_DURATION)")
	_ = tokenCmd.MarkFlagRequired("user")
}
