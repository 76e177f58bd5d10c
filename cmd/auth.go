package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Microsoft 365 authentication",
	Long: `Manage Microsoft 365 authentication for teamtime.

The auth command group provides subcommands to sign in, sign out and
inspect the current authentication state.

Examples:
  teamtime auth login     # Sign in via the browser (or refresh silently)
  teamtime auth status    # Show the cached sign-in state
  teamtime auth logout    # Clear the token cache`,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the cached sign-in",
	Long: `Clear the cached OAuth tokens and session.

The next command that needs Microsoft 365 access will require an
interactive browser sign-in. Logging out when no session is cached is
not an error.`,
	RunE: runAuthLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	setupLogging()

	manager, err := newAuthManager()
	if err != nil {
		return err
	}

	manager.SignOut()
	fmt.Println("Signed out.")
	return nil
}
