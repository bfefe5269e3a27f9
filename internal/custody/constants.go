package custody

import "time"

// Default tuning values
const (
	// DefaultConfirmationInterval is how often pending confirmations are
	// approved (the platform batches them; 30s matches its own cadence)
	DefaultConfirmationInterval = 30 * time.Second

	// ReloginInitialDelay is the initial backoff after a failed login
	ReloginInitialDelay = 2 * time.Second

	// ReloginMaxDelay caps the login backoff
	ReloginMaxDelay = 1 * time.Minute

	// ReloginMultiplier is the backoff multiplier between login attempts
	ReloginMultiplier = 2.0
)

// Log messages
const (
	LogMsgAuthenticating      = "Authenticating custodial agent"
	LogMsgAuthenticated       = "Custodial agent authenticated"
	LogMsgAuthFailed          = "Custodial agent authentication failed"
	LogMsgCredentialsRejected = "Custodial agent credentials rejected; operator attention required"
	LogMsgSessionInvalidated  = "Custody session invalidated, re-authenticating"
	LogMsgPollerStarted       = "Confirmation poller started"
	LogMsgPollerStopped       = "Confirmation poller stopped"
	LogMsgConfirmationsFailed = "Failed to approve pending confirmations"
	LogMsgInventoryRefreshed  = "Agent inventory snapshot refreshed"
	LogMsgManagerStopped      = "Custody session manager stopped"
)
