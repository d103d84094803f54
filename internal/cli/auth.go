package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/tictactoe-go/internal/api/apierr"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Account management commands",
	}

	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthMeCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func credentialFlags(cmd *cobra.Command, c *credentials) {
	cmd.Flags().StringVarP(&c.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&c.Password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
}

func authenticate(path string, c credentials) error {
	var result AuthResult
	if err := client.Post(path, c, &result); err != nil {
		return err
	}

	if err := cfg.SaveToken(result.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}

func newAuthRegisterCmd() *cobra.Command {
	var c credentials

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and save the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate("/api/v1/auth/register", c)
		},
	}
	credentialFlags(cmd, &c)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var c credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate("/api/v1/auth/login", c)
		},
	}
	credentialFlags(cmd, &c)

	return cmd
}

func newAuthMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return errors.New("not logged in")
			}

			var result User
			if err := client.Get("/api/v1/auth/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return errors.New("not logged in")
			}

			// A token the server already forgot is still cleared locally
			err := client.Post("/api/v1/auth/logout", nil, nil)
			if err != nil && !HasCode(err, apierr.CodeUnauthorized) {
				return err
			}
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Logged out")
			return nil
		},
	}
}
