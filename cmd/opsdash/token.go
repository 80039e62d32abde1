package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/opsdash/auth"
	"github.com/jonwraymond/opsdash/config"
)

func newTokenCmd() *cobra.Command {
	var (
		principal string
		roles     []string
		ttl       string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token signed with the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("no jwt secret configured (set OPSDASH_JWT_SECRET)")
			}
			d, err := config.ParseDuration(ttl)
			if err != nil {
				return err
			}
			if len(roles) == 0 {
				roles = []string{cfg.Auth.AdminRole}
			}
			signer := auth.NewJWTAuthenticator(auth.JWTConfig{
				Secret: []byte(cfg.Auth.JWTSecret),
				Issuer: cfg.Auth.JWTIssuer,
			})
			tok, err := signer.Sign(principal, roles, d.Std())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "operator", "token subject")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "granted roles (default: the admin role)")
	cmd.Flags().StringVar(&ttl, "ttl", "1h", "token lifetime, e.g. 30m or 1d")
	return cmd
}
