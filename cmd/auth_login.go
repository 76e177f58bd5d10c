package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Login-specific flags
var loginForce bool

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Microsoft 365",
	Long: `Sign in to Microsoft 365.

When a usable token cache exists the sign-in completes silently.
Otherwise a browser window opens for the OAuth authorization code flow;
the sign-in must complete within five minutes. Use --force to discard
the cached sign-in and go straight to the browser, for example to
switch accounts.

The signed-in account must belong to the required tenant and user
domain. Accounts that fail these checks are signed out immediately.`,
	RunE: runAuthLogin,
}

func init() {
	authLoginCmd.Flags().BoolVar(&loginForce, "force", false, "Discard the cached sign-in and authenticate interactively")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	setupLogging()

	manager, err := newAuthManager()
	if err != nil {
		return err
	}

	if loginForce {
		manager.SignOut()
	}

	session, err := authenticateAndAdmit(cmd.Context(), manager)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s (tenant %s)\n", session.Username, session.TenantID)
	return nil
}
