package database

import "time"

// DefaultMinConnections is the number of pooled connections kept warm
const DefaultMinConnections = 2

// PingTimeout bounds the startup connectivity check
const PingTimeout = 5 * time.Second

// Error messages
const (
	ErrMsgBadConnString = "invalid database connection string"
	ErrMsgPoolCreate    = "failed to create ledger connection pool"
	ErrMsgPingFailed    = "failed to reach ledger database"
)

// Log messages
const (
	LogMsgLedgerConnected   = "Connected to ledger database"
	LogMsgMigrationsApplied = "Database migrations applied"
)
