package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrEthical07/bossanova"
	"github.com/MrEthical07/bossanova/jwt"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Create and verify session tokens",
	}
	cmd.PersistentFlags().StringVar(&key, "key", "", "signing key; defaults to JWT_SECRET or BOSSANOVA_JWT_SECRET")

	manager := func() (*jwt.Manager, error) {
		signingKey := []byte(key)
		if len(signingKey) == 0 {
			signingKey = a.cfg.Token.SigningKey()
		}
		if len(signingKey) == 0 {
			return nil, bossanova.ErrSigningKeyMissing
		}
		return jwt.NewManager(jwt.Config{SigningKey: signingKey})
	}

	cmd.AddCommand(newTokenCreateCmd(manager), newTokenVerifyCmd(manager))
	return cmd
}

func newTokenCreateCmd(manager func() (*jwt.Manager, error)) *cobra.Command {
	var (
		claimArgs []string
		ttl       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Sign a token from name=value claims",
		Example: `  bossanova token create --claim uid=42 --claim role=admin --ttl 24h
  bossanova token create --claim 'groups=["a","b"]'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}

			claims, err := parseClaims(claimArgs)
			if err != nil {
				return err
			}
			if ttl > 0 {
				claims.Set(jwt.ClaimExpiresAt, time.Now().Add(ttl).Unix())
			}

			token, err := m.CreateToken(claims)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&claimArgs, "claim", "c", nil, "claim as name=value; JSON values keep their type, anything else is a string")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "set exp to now plus ttl; zero leaves the token without expiry")
	return cmd
}

func newTokenVerifyCmd(manager func() (*jwt.Manager, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [token|-]",
		Short: "Verify a token and print its claims",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manager()
			if err != nil {
				return err
			}

			var token string
			if len(args) == 1 && args[0] != "-" {
				token = args[0]
			} else {
				token, err = readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			claims, err := m.ExtractToken(strings.TrimSpace(token))
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		},
	}
}

func parseClaims(args []string) (jwt.Claims, error) {
	claims := jwt.Claims{}
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid claim %q: want name=value", arg)
		}
		claims.Set(name, claimValue(raw))
	}
	return claims, nil
}

func claimValue(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return raw
	}
	if _, err := dec.Token(); err != io.EOF {
		return raw
	}
	return v
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadBytes('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return "", fmt.Errorf("no token given")
	}
	return string(line), nil
}
