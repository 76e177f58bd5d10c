package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"teamtime/internal/msauth"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthFailed indicates the OAuth flow failed or timed out.
	ExitCodeAuthFailed = 2
	// ExitCodeAdmissionDenied indicates the signed-in identity is outside the
	// required tenant or domain.
	ExitCodeAdmissionDenied = 3
)

// rootCmd represents the base command for the teamtime application.
var rootCmd = &cobra.Command{
	Use:   "teamtime",
	Short: "Microsoft 365 calendar, mail and Teams tools over MCP",
	Long: `teamtime signs in to Microsoft 365 and exposes calendar scheduling,
mail and Teams messaging as MCP tools over stdio, for use from AI
assistants like Claude or Cursor.

Sign-in uses the browser-based OAuth authorization code flow. Tokens are
cached on disk and refreshed silently, so the browser is only needed when
no usable cache exists.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// admissionDeniedError marks identities rejected by the tenant or domain
// gate, so Execute can map them to a distinct exit code.
type admissionDeniedError struct {
	Username string
	TenantID string
}

func (e *admissionDeniedError) Error() string {
	return fmt.Sprintf("account %s (tenant %s) is not permitted to use this application", e.Username, e.TenantID)
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "teamtime version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the exit code based on the error type. This
// provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var denied *admissionDeniedError
	if errors.As(err, &denied) {
		return ExitCodeAdmissionDenied
	}

	var timeout *msauth.InteractiveTimeoutError
	if errors.As(err, &timeout) {
		return ExitCodeAuthFailed
	}

	var acquisition *msauth.AcquisitionError
	if errors.As(err, &acquisition) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
