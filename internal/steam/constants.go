package steam

import "time"

// Default configuration values
const (
	// DefaultReconnectDelay is the initial delay before reconnecting the
	// event stream
	DefaultReconnectDelay = 1 * time.Second

	// MaxReconnectDelay is the maximum delay between reconnection attempts
	MaxReconnectDelay = 30 * time.Second

	// ReconnectMultiplier is the multiplier for exponential backoff
	ReconnectMultiplier = 2.0

	// RequestTimeout is the timeout for individual API requests
	RequestTimeout = 15 * time.Second

	// SubscriberBuffer is the channel buffer per event subscriber
	SubscriberBuffer = 64

	// DefaultAppID and DefaultContextID select the game inventory the agent
	// trades from
	DefaultAppID     = 730
	DefaultContextID = "2"
)

// Log messages
const (
	LogMsgStreamConnecting   = "Connecting to platform event stream"
	LogMsgStreamConnected    = "Connected to platform event stream"
	LogMsgStreamReconnecting = "Reconnecting to platform event stream"
	LogMsgStreamStopped      = "Platform event stream stopped"
	LogMsgStreamReadError    = "Error reading from platform event stream"
	LogMsgEventDropped       = "Dropped platform event for slow subscriber"
)
