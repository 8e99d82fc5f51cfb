package cli

import (
	"bufio"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	authToken   string
	authAccount string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the remote session",
	Long: `Sign in to the remote store with a bearer token issued by your identity
provider. Remote workspaces and migration need a session.

The ANNOTATE_TOKEN environment variable, when set, takes precedence over the
stored session.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a bearer token",
	Long: `Store a bearer token for the remote store. Without --token the token is
read from the terminal without echo.`,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().StringVar(&authToken, "token", "", "bearer token")
	authLoginCmd.Flags().StringVar(&authAccount, "account", "", "account email or username")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	token := authToken
	if token == "" {
		cmd.Print("Token: ")
		token = readPassword(cmd.InOrStdin(), bufio.NewReader(cmd.InOrStdin()))
		cmd.Println()
	}
	if token == "" {
		return errors.New("a token is required")
	}

	if err := authService.Login(cmd.Context(), token, authAccount); err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}

	if authAccount != "" {
		cmd.Printf("Signed in as %s\n", authAccount)
	} else {
		cmd.Println("Signed in")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	if err := authService.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}

	cmd.Println("Signed out")
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}
	ctx := cmd.Context()

	creds, err := authService.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	switch {
	case creds.IsAuthenticated():
		account := creds.AccountIdentifier
		if account == "" {
			account = "(unknown account)"
		}
		cmd.Printf("Signed in as %s\n", account)
		if !creds.Expiry.IsZero() {
			cmd.Printf("  Expires: %s\n", creds.Expiry.Local().Format(time.RFC1123))
		}
	case creds != nil && creds.IsExpired():
		cmd.Println(outputStyles.Warning.Render("Session expired. Run 'annotate auth login'."))
	case authService.IsAuthenticated(ctx):
		cmd.Println("Signed in with ANNOTATE_TOKEN")
	default:
		cmd.Println("Not signed in")
	}
	return nil
}
