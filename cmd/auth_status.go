package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the cached sign-in state",
	Long: `Show the cached sign-in state without touching the network.

This inspects the on-disk token cache only. A reported sign-in may still
require a silent refresh (or, if the refresh token has been revoked, a
new interactive sign-in) on the next use.`,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	setupLogging()

	manager, err := newAuthManager()
	if err != nil {
		return err
	}

	session, expiry := manager.CachedSession()
	if session == nil {
		fmt.Println("Not signed in.")
		fmt.Println("\nTo sign in, run:")
		fmt.Println("  teamtime auth login")
		return nil
	}

	fmt.Printf("Account:  %s\n", session.Username)
	fmt.Printf("Tenant:   %s\n", session.TenantID)
	if !expiry.IsZero() {
		fmt.Printf("Token:    %s\n", formatExpiry(expiry))
	}
	return nil
}

// formatExpiry renders a token expiry relative to now.
func formatExpiry(expiry time.Time) string {
	remaining := time.Until(expiry)
	if remaining <= 0 {
		return fmt.Sprintf("expired %s ago (silent refresh on next use)", (-remaining).Round(time.Second))
	}
	return fmt.Sprintf("valid for %s", remaining.Round(time.Second))
}
