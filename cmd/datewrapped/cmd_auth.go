package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	googleToken  string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFrom(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if err := app.session.SignUp(cmd.Context(), authEmail, password); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), app.styles.Success.Render("signed up as "+app.session.Email()))
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFrom(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if err := app.session.SignIn(cmd.Context(), authEmail, password); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), app.styles.Success.Render("signed in as "+app.session.Email()))
		return nil
	},
}

var loginGoogleCmd = &cobra.Command{
	Use:   "login-google",
	Short: "Sign in with a Google ID token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if googleToken == "" {
			return fmt.Errorf("--id-token is required")
		}
		if err := app.session.SignInWithGoogle(cmd.Context(), googleToken); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), app.styles.Success.Render("signed in as "+app.session.Email()))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.session.SignOut(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := app.authorized()
		if err != nil {
			return err
		}
		user, err := api.Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", app.styles.Bold.Render(user.Email), app.styles.Muted.Render(fmt.Sprintf("#%d", user.ID)), user.Provider)
		return nil
	},
}

// passwordFrom returns --password or the first line of r.
func passwordFrom(r io.Reader) (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("password is required, pass --password or pipe it on stdin")
	}
	return line, nil
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Password (read from stdin when empty)")
		_ = c.MarkFlagRequired("email")
	}
	loginGoogleCmd.Flags().StringVar(&googleToken, "id-token", "", "Google ID token")
}
