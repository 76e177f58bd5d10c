package msauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// Admission policy. Only identities from this directory tenant whose
// username carries this domain suffix may drive the server. Both values are
// compiled in; they are not runtime-configurable.
const (
	RequiredTenantID   = "e4f2a790-5c38-4c96-b6a4-7f92c0a1d9ce"
	RequiredUserDomain = "@contoso.com"
)

// defaultClientID is the public-client application registration used for
// the authorization-code flow.
const defaultClientID = "9a8e79cb-1b34-4f6a-9d8c-52b1f27a3e10"

// GraphScopes is the fixed scope set requested on every acquisition.
// Silent and interactive acquisition must request the identical set;
// otherwise a silent acquisition can succeed with a stale, insufficient
// grant.
var GraphScopes = []string{
	"openid",
	"profile",
	"offline_access",
	"https://graph.microsoft.com/User.Read",
	"https://graph.microsoft.com/Calendars.ReadWrite",
	"https://graph.microsoft.com/Mail.Send",
	"https://graph.microsoft.com/Chat.ReadWrite",
	"https://graph.microsoft.com/ChannelMessage.Send",
	"https://graph.microsoft.com/Team.ReadBasic.All",
	"https://graph.microsoft.com/OnlineMeetings.ReadWrite",
}

// AuthState represents the manager's position in the acquisition state
// machine.
type AuthState int

const (
	// StateCold means no cache hydration has been attempted yet.
	StateCold AuthState = iota

	// StateCacheHit means a cached account was found and a silent
	// acquisition is being attempted.
	StateCacheHit

	// StateNeedsInteractive means no usable cached credential exists and an
	// interactive login is required.
	StateNeedsInteractive

	// StateAuthenticated means a session is live.
	StateAuthenticated

	// StateFailed means the last Authenticate call failed terminally.
	// The caller must retry the whole flow.
	StateFailed

	// StateSignedOut means the session was explicitly destroyed.
	StateSignedOut
)

// String returns the string representation of the auth state.
func (s AuthState) String() string {
	switch s {
	case StateCold:
		return "cold"
	case StateCacheHit:
		return "cache_hit"
	case StateNeedsInteractive:
		return "needs_interactive"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	case StateSignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// cacheBlob is the serialized credential material persisted by the
// CacheStore. On disk it must always reflect the last successful in-memory
// state; it is rewritten after every acquisition that changes the token.
type cacheBlob struct {
	Account *Session      `json:"account"`
	Token   *oauth2.Token `json:"token"`
	SavedAt time.Time     `json:"saved_at"`
}

// Config configures the Manager. The zero value selects production
// defaults; the override fields exist for tests.
type Config struct {
	// ClientID is the OAuth public-client application ID.
	ClientID string

	// TenantID selects the identity-platform authority.
	// Defaults to RequiredTenantID.
	TenantID string

	// Endpoint overrides the provider endpoints. Defaults to the Azure AD
	// v2.0 endpoints for TenantID.
	Endpoint oauth2.Endpoint

	// CacheDir overrides the token cache directory.
	CacheDir string

	// CallbackPort overrides the local redirect port.
	CallbackPort int

	// InteractiveTimeout bounds the wait for the authorization callback.
	// Defaults to DefaultInteractiveTimeout.
	InteractiveTimeout time.Duration

	// RequiredTenant / RequiredDomain override the admission policy.
	RequiredTenant string
	RequiredDomain string

	// OpenBrowser opens the authorization URL. Defaults to OpenBrowser.
	OpenBrowser func(url string) error

	// HTTPClient is used for token-endpoint requests.
	HTTPClient *http.Client
}

// Manager owns the authentication state machine and the current session.
// API callers never see the session itself; they obtain short-lived access
// tokens through AccessToken.
type Manager struct {
	mu    sync.Mutex
	cfg   Config
	store *CacheStore
	oauth *oauth2.Config

	state       AuthState
	session     *Session
	token       *oauth2.Token
	loginActive bool
}

// NewManager creates a manager with the given configuration.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = defaultClientID
	}
	if cfg.TenantID == "" {
		cfg.TenantID = RequiredTenantID
	}
	if cfg.Endpoint.AuthURL == "" {
		cfg.Endpoint = microsoft.AzureADEndpoint(cfg.TenantID)
	}
	if cfg.CallbackPort == 0 {
		cfg.CallbackPort = DefaultCallbackPort
	}
	if cfg.InteractiveTimeout == 0 {
		cfg.InteractiveTimeout = DefaultInteractiveTimeout
	}
	if cfg.RequiredTenant == "" {
		cfg.RequiredTenant = RequiredTenantID
	}
	if cfg.RequiredDomain == "" {
		cfg.RequiredDomain = RequiredUserDomain
	}
	if cfg.OpenBrowser == nil {
		cfg.OpenBrowser = OpenBrowser
	}

	store, err := NewCacheStore(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	return &Manager{
		cfg:   cfg,
		store: store,
		oauth: &oauth2.Config{
			ClientID:    cfg.ClientID,
			Endpoint:    cfg.Endpoint,
			RedirectURL: fmt.Sprintf("http://localhost:%d%s", cfg.CallbackPort, CallbackPath),
			Scopes:      GraphScopes,
		},
		state: StateCold,
	}, nil
}

// Authenticate drives the state machine to an authenticated session using
// the cheapest available path: cache hydration, then silent acquisition,
// then the interactive authorization-code flow.
//
// On interactive failure the state machine is terminal for this attempt;
// the caller retries by calling Authenticate again.
func (m *Manager) Authenticate(ctx context.Context) error {
	m.mu.Lock()
	if m.loginActive {
		m.mu.Unlock()
		return ErrLoginInProgress
	}
	m.loginActive = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loginActive = false
		m.mu.Unlock()
	}()

	if blob := m.hydrate(); blob != nil {
		m.setState(StateCacheHit)
		err := m.acquireSilent(ctx, blob)
		if err == nil {
			return nil
		}
		slog.Debug("silent acquisition failed, falling back to interactive login",
			"account", blob.Account.Username,
			"error", err.Error(),
		)
	}

	m.setState(StateNeedsInteractive)
	if err := m.acquireInteractive(ctx); err != nil {
		m.setState(StateFailed)
		return err
	}
	return nil
}

// hydrate loads and deserializes the cache blob. Absence is the expected
// first-run outcome; read faults and corruption degrade to "no usable
// cache" and are never fatal.
func (m *Manager) hydrate() *cacheBlob {
	data, err := m.store.Load()
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			slog.Debug("no token cache found, interactive login required")
		} else {
			slog.Warn("failed to read token cache, treating as empty", "error", err.Error())
		}
		return nil
	}

	var blob cacheBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		slog.Warn("token cache is corrupt, treating as empty", "error", err.Error())
		return nil
	}
	if blob.Account == nil || blob.Token == nil || blob.Token.RefreshToken == "" {
		slog.Warn("token cache has no refreshable account, treating as empty")
		return nil
	}

	return &blob
}

// acquireSilent refreshes the cached credential without user interaction.
func (m *Manager) acquireSilent(ctx context.Context, blob *cacheBlob) error {
	tok, err := m.tokenSource(ctx, blob.Token).Token()
	if err != nil {
		return &AcquisitionError{Mode: "silent", Err: err}
	}

	session := blob.Account
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
		if fresh, err := sessionFromIDToken(raw); err == nil {
			session = fresh
		}
	}

	m.completeAcquisition(session, tok)
	slog.Debug("silent acquisition succeeded", "account", session.Username)
	return nil
}

// acquireInteractive runs one full authorization-code flow: bind the local
// redirect listener, open the browser, await exactly one callback, exchange
// the code. The listener is stopped on every exit path.
func (m *Manager) acquireInteractive(ctx context.Context) error {
	srv := NewCallbackServer(m.cfg.CallbackPort)
	if _, err := srv.Start(ctx); err != nil {
		return &AcquisitionError{Mode: "interactive", Err: err}
	}
	defer srv.Stop()

	state, err := generateState()
	if err != nil {
		return &AcquisitionError{Mode: "interactive", Err: err}
	}

	authURL := m.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))

	slog.Info("opening browser for interactive sign-in", "url", authURL)
	if err := m.cfg.OpenBrowser(authURL); err != nil {
		// The user can still follow the logged URL manually.
		slog.Warn("failed to open browser", "error", err.Error())
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.cfg.InteractiveTimeout)
	defer cancel()

	result, err := srv.WaitForCallback(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return &InteractiveTimeoutError{Timeout: m.cfg.InteractiveTimeout}
		}
		return &AcquisitionError{Mode: "interactive", Err: err}
	}

	if result.State != state {
		slog.Warn("authorization state mismatch, rejecting callback")
		return &AcquisitionError{Mode: "interactive", Err: errors.New("state mismatch in authorization response")}
	}
	if result.IsError() {
		return &AcquisitionError{
			Mode: "interactive",
			Err:  fmt.Errorf("authorization failed: %s: %s", result.Error, result.ErrorDescription),
		}
	}
	if result.Code == "" {
		return &AcquisitionError{Mode: "interactive", Err: errors.New("callback carried no authorization code")}
	}

	// The exchange reuses the exact redirect target the code was requested
	// with; the provider rejects any mismatch.
	tok, err := m.oauth.Exchange(m.httpContext(ctx), result.Code)
	if err != nil {
		return &AcquisitionError{Mode: "interactive", Err: err}
	}

	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return &AcquisitionError{Mode: "interactive", Err: errors.New("token response missing id_token")}
	}
	session, err := sessionFromIDToken(raw)
	if err != nil {
		return &AcquisitionError{Mode: "interactive", Err: err}
	}

	m.completeAcquisition(session, tok)
	slog.Info("interactive sign-in complete", "account", session.Username, "tenant", session.TenantID)
	return nil
}

// completeAcquisition installs the new session and persists the cache blob.
func (m *Manager) completeAcquisition(session *Session, tok *oauth2.Token) {
	m.mu.Lock()
	m.session = session
	m.token = tok
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.persist(session, tok)
}

// AccessToken returns a currently valid access token for the live session.
// Every call performs a silent refresh attempt: the cached token is reused
// while valid and refreshed through the stored refresh token otherwise.
// A refresh failure is surfaced as an AcquisitionError; the manager never
// re-triggers interactive login on this path.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.state != StateAuthenticated || m.session == nil {
		m.mu.Unlock()
		return "", &AcquisitionError{Mode: "silent", Err: ErrNoSession}
	}
	current := m.token
	session := m.session
	m.mu.Unlock()

	tok, err := m.tokenSource(ctx, current).Token()
	if err != nil {
		return "", &AcquisitionError{Mode: "silent", Err: err}
	}

	if tok.AccessToken != current.AccessToken {
		m.mu.Lock()
		m.token = tok
		m.mu.Unlock()
		m.persist(session, tok)
	}

	return tok.AccessToken, nil
}

// ValidateTenant reports whether the live session belongs to the required
// tenant. Fails closed: no session means false, never an error.
func (m *Manager) ValidateTenant() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && m.session.TenantID == m.cfg.RequiredTenant
}

// ValidateUser reports whether the live session's username carries the
// required domain suffix. Fails closed like ValidateTenant, and is
// independent of tenant validity.
func (m *Manager) ValidateUser() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && strings.HasSuffix(strings.ToLower(m.session.Username), m.cfg.RequiredDomain)
}

// SignOut destroys the session and deletes the persisted cache blob.
// Teardown faults are logged and swallowed; sign-out always completes from
// the caller's perspective. Idempotent.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.session = nil
	m.token = nil
	m.state = StateSignedOut
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		slog.Warn("failed to clear token cache on sign-out", "error", err.Error())
	}
	slog.Info("signed out")
}

// Session returns a copy of the live session, or nil when none exists.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}

// CachedSession inspects the token cache without touching the network or
// mutating manager state. It returns the stored session and the cached
// token's expiry, or nil when the cache is absent or unusable. Intended for
// status reporting only; a non-nil result says nothing about whether the
// refresh token is still accepted by the provider.
func (m *Manager) CachedSession() (*Session, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob := m.hydrate()
	if blob == nil {
		return nil, time.Time{}
	}
	copied := *blob.Account
	return &copied, blob.Token.Expiry
}

// State returns the manager's current state.
func (m *Manager) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s AuthState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// persist writes the serialized blob after a cache-changing acquisition.
// A failed save degrades to "re-authenticate next run" and is only logged.
func (m *Manager) persist(session *Session, tok *oauth2.Token) {
	data, err := json.Marshal(cacheBlob{
		Account: session,
		Token:   tok,
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to serialize token cache", "error", err.Error())
		return
	}
	if err := m.store.Save(data); err != nil {
		slog.Warn("failed to persist token cache", "error", err.Error())
	}
}

// tokenSource builds a refreshing token source for the stored token, bound
// to the same client registration and grant as the interactive path.
func (m *Manager) tokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return m.oauth.TokenSource(m.httpContext(ctx), tok)
}

// httpContext injects the configured HTTP client for oauth2 transport use.
func (m *Manager) httpContext(ctx context.Context) context.Context {
	if m.cfg.HTTPClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, m.cfg.HTTPClient)
	}
	return ctx
}

// generateState produces the random state parameter linking the
// authorization response back to this request.
func generateState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
