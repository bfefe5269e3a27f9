package custody

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gwskins/GWSkins_Go/internal/domain"
	"github.com/gwskins/GWSkins_Go/internal/event"
	"github.com/gwskins/GWSkins_Go/internal/steam"
)

// State is the custody session lifecycle state.
type State string

const (
	StateSignedOut      State = "signed_out"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateExpired        State = "expired"
)

// Credentials is the agent account configuration.
type Credentials struct {
	Username       string
	Password       string
	SharedSecret   string
	IdentitySecret string
}

// Channel is an authenticated handle to the external platform. Holders may
// use it for the lifetime of the underlying session; session-class errors
// mean the session died mid-use and a fresh channel must be obtained.
type Channel struct {
	platform steam.Platform
	session  *steam.Session
}

// ListInventory enumerates the agent's tradable inventory.
func (c *Channel) ListInventory(ctx context.Context) ([]steam.AssetRef, error) {
	return c.platform.ListInventory(ctx, c.session)
}

// SubmitTradeOffer proposes a one-directional transfer.
func (c *Channel) SubmitTradeOffer(ctx context.Context, dest steam.Destination, assets []steam.AssetRef, message string) (string, error) {
	return c.platform.SubmitTradeOffer(ctx, c.session, dest, assets, message)
}

// DeclineOffer declines an incoming offer.
func (c *Channel) DeclineOffer(ctx context.Context, proposalID string) error {
	return c.platform.DeclineOffer(ctx, c.session, proposalID)
}

// Manager owns the process-wide custody session. It is the only component
// that transitions session state; everyone else reads through
// EnsureAuthenticated.
type Manager struct {
	platform steam.Platform
	creds    Credentials
	interval time.Duration
	bus      event.Bus

	mu      sync.RWMutex
	state   State
	session *steam.Session
	fatal   bool // credentials rejected; no further attempts

	// authMu single-flights authentication so concurrent callers do not
	// stampede the login endpoint.
	authMu sync.Mutex

	invMu       sync.RWMutex
	inventory   []steam.AssetRef
	refreshedAt time.Time

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewManager creates a custody session manager. The session starts signed out;
// Start triggers the first authentication.
func NewManager(platform steam.Platform, creds Credentials, interval time.Duration, bus event.Bus) *Manager {
	if interval <= 0 {
		interval = DefaultConfirmationInterval
	}
	return &Manager{
		platform: platform,
		creds:    creds,
		interval: interval,
		bus:      bus,
		state:    StateSignedOut,
		shutdown: make(chan struct{}),
	}
}

// State returns the current session state for health checks.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) setState(ctx context.Context, s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()

	slog.Info("Custody session state changed", "state", string(s))
	if m.bus != nil {
		if err := m.bus.Publish(ctx, event.NewSessionStateEvent(string(s))); err != nil {
			slog.Warn("Failed to publish session state event", "error", err)
		}
	}
}

// Start authenticates and launches the background loops: the confirmation
// poller and the session-invalidation watcher.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if _, err := m.EnsureAuthenticated(ctx); err != nil {
			slog.Error(LogMsgAuthFailed, "error", err)
		}
	}()

	m.wg.Add(1)
	go m.confirmationLoop(ctx)

	m.wg.Add(1)
	go m.watchInvalidation(ctx)
}

// Stop tears the manager down, waiting for background loops.
func (m *Manager) Stop() {
	close(m.shutdown)
	m.wg.Wait()
	slog.Info(LogMsgManagerStopped)
}

// EnsureAuthenticated returns an authenticated channel, performing login if
// needed. Fails with domain.ErrSessionUnavailable when the session cannot be
// established, wrapping steam.ErrBadCredentials on hard credential failure.
func (m *Manager) EnsureAuthenticated(ctx context.Context) (*Channel, error) {
	m.mu.RLock()
	if m.state == StateAuthenticated && m.session != nil {
		ch := &Channel{platform: m.platform, session: m.session}
		m.mu.RUnlock()
		return ch, nil
	}
	fatal := m.fatal
	m.mu.RUnlock()

	if fatal {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionUnavailable, steam.ErrBadCredentials)
	}

	m.authMu.Lock()
	defer m.authMu.Unlock()

	// Another caller may have finished authenticating while we waited.
	m.mu.RLock()
	if m.state == StateAuthenticated && m.session != nil {
		ch := &Channel{platform: m.platform, session: m.session}
		m.mu.RUnlock()
		return ch, nil
	}
	m.mu.RUnlock()

	return m.authenticate(ctx)
}

// authenticate performs one login attempt. Caller holds authMu.
func (m *Manager) authenticate(ctx context.Context) (*Channel, error) {
	m.setState(ctx, StateAuthenticating)
	slog.Info(LogMsgAuthenticating, "username", m.creds.Username)

	code, err := steam.GenerateAuthCode(m.creds.SharedSecret, time.Now())
	if err != nil {
		m.markFatal(ctx)
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionUnavailable, err)
	}

	session, err := m.platform.Authenticate(ctx, steam.Credentials{
		Username:    m.creds.Username,
		Password:    m.creds.Password,
		OneTimeCode: code,
	})
	if err != nil {
		if errors.Is(err, steam.ErrBadCredentials) {
			// Hard credential failure is fatal and surfaced to operations
			// rather than retried indefinitely.
			slog.Error(LogMsgCredentialsRejected, "username", m.creds.Username)
			m.markFatal(ctx)
		} else {
			// Transient failure; the next attempt may succeed. SignedOut
			// means credentials are gone for good, so report Expired.
			m.setState(ctx, StateExpired)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionUnavailable, err)
	}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()
	m.setState(ctx, StateAuthenticated)
	slog.Info(LogMsgAuthenticated, "agent_steam_id", session.SteamID)

	// Warm the inventory snapshot; a failure here is not fatal, the
	// dispatcher refreshes on demand.
	if err := m.RefreshInventory(ctx); err != nil {
		slog.Warn("Failed to warm agent inventory snapshot", "error", err)
	}

	return &Channel{platform: m.platform, session: session}, nil
}

func (m *Manager) markFatal(ctx context.Context) {
	m.mu.Lock()
	m.fatal = true
	m.session = nil
	m.mu.Unlock()
	m.setState(ctx, StateSignedOut)
}

// watchInvalidation consumes session-invalidated events and immediately
// re-authenticates with backoff.
func (m *Manager) watchInvalidation(ctx context.Context) {
	defer m.wg.Done()

	events := m.platform.Subscribe()
	for {
		select {
		case <-m.shutdown:
			return
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if evt.Type != steam.EventSessionInvalidated {
				continue
			}
			slog.Warn(LogMsgSessionInvalidated)

			m.mu.Lock()
			m.session = nil
			m.mu.Unlock()
			m.setState(ctx, StateExpired)

			m.reloginWithBackoff(ctx)
		}
	}
}

// reloginWithBackoff retries authentication until it succeeds, the failure
// is fatal, or the manager shuts down.
func (m *Manager) reloginWithBackoff(ctx context.Context) {
	delay := ReloginInitialDelay
	for {
		m.authMu.Lock()
		_, err := m.authenticate(ctx)
		m.authMu.Unlock()
		if err == nil {
			return
		}
		if errors.Is(err, steam.ErrBadCredentials) || m.isFatal() {
			return
		}

		slog.Warn(LogMsgAuthFailed, "error", err, "retry_in", delay)
		select {
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * ReloginMultiplier)
			if delay > ReloginMaxDelay {
				delay = ReloginMaxDelay
			}
		case <-m.shutdown:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) isFatal() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fatal
}

// confirmationLoop approves pending agent confirmations on a fixed interval.
// The agent only ever proposes outgoing no-cost transfers, so blanket
// approval of its own confirmations is sound.
func (m *Manager) confirmationLoop(ctx context.Context) {
	defer m.wg.Done()

	if m.creds.IdentitySecret == "" {
		slog.Warn("No identity secret configured; confirmation poller disabled")
		return
	}

	slog.Info(LogMsgPollerStarted, "interval", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.shutdown:
			slog.Info(LogMsgPollerStopped)
			return
		case <-ctx.Done():
			slog.Info(LogMsgPollerStopped)
			return
		case <-ticker.C:
			m.mu.RLock()
			session := m.session
			authenticated := m.state == StateAuthenticated
			m.mu.RUnlock()
			if !authenticated || session == nil {
				continue
			}
			if err := m.platform.AcceptConfirmations(ctx, session, m.creds.IdentitySecret); err != nil {
				// The platform frequently has nothing pending; only log
				slog.Debug(LogMsgConfirmationsFailed, "error", err)
			}
		}
	}
}

// Snapshot returns the cached agent inventory. The cache is advisory, not
// authoritative; callers needing freshness call RefreshInventory.
func (m *Manager) Snapshot() []steam.AssetRef {
	m.invMu.RLock()
	defer m.invMu.RUnlock()
	out := make([]steam.AssetRef, len(m.inventory))
	copy(out, m.inventory)
	return out
}

// RefreshInventory reloads the agent inventory snapshot from the platform.
func (m *Manager) RefreshInventory(ctx context.Context) error {
	m.mu.RLock()
	session := m.session
	m.mu.RUnlock()
	if session == nil {
		return domain.ErrSessionUnavailable
	}

	assets, err := m.platform.ListInventory(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to list agent inventory: %w", err)
	}

	m.invMu.Lock()
	m.inventory = assets
	m.refreshedAt = time.Now()
	m.invMu.Unlock()

	slog.Debug(LogMsgInventoryRefreshed, "assets", len(assets))
	return nil
}
