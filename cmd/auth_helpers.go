package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"teamtime/internal/msauth"
)

// Global flags shared by serve and the auth subcommands.
var (
	cacheDir string
	debugLog bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Token cache directory (default is $HOME/.config/teamtime)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")
}

// setupLogging routes structured logs to stderr. stdout is reserved for the
// MCP stdio transport, so nothing else may write there.
func setupLogging() {
	level := slog.LevelInfo
	if debugLog {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// newAuthManager builds a token lifecycle manager from the global flags.
func newAuthManager() (*msauth.Manager, error) {
	m, err := msauth.NewManager(msauth.Config{CacheDir: cacheDir})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize authentication: %w", err)
	}
	return m, nil
}

// authenticateAndAdmit runs the full sign-in sequence: token acquisition
// (silent or interactive) followed by the tenant and domain admission
// checks. A rejected identity is signed out before the error is returned,
// so the cached credential cannot be replayed on the next run.
func authenticateAndAdmit(ctx context.Context, m *msauth.Manager) (*msauth.Session, error) {
	if err := m.Authenticate(ctx); err != nil {
		return nil, err
	}

	session := m.Session()
	if !m.ValidateTenant() || !m.ValidateUser() {
		denied := &admissionDeniedError{}
		if session != nil {
			denied.Username = session.Username
			denied.TenantID = session.TenantID
		}
		m.SignOut()
		return nil, denied
	}

	return session, nil
}
