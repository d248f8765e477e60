package main

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with the admin password",
	Long: `Exchange the admin password for a token and cache it locally.

Without --password the password is prompted for with masked input.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the cached admin token",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "admin password")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := loginPassword
	if password == "" {
		prompt := promptui.Prompt{
			Label: "Admin password",
			Mask:  '*',
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("password is required")
				}
				return nil
			},
		}
		var err error
		password, err = prompt.Run()
		if err != nil {
			return fmt.Errorf("password prompt: %w", err)
		}
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	token, err := s.admin.Login(ctx, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	s.store.SetAdminToken(ctx, token)

	fprintf(cmd.OutOrStdout(), "Logged in.\n")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	s.store.SetAdminToken(cmd.Context(), "")
	fprintf(cmd.OutOrStdout(), "Logged out.\n")
	return nil
}
