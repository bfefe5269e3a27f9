package domain

import "time"

// User is a marketplace account, keyed by the external platform identity.
// Users are created on first successful login and never deleted. The balance
// is mutated only by the settlement service.
type User struct {
	ID        string    `json:"id"`
	SteamID   string    `json:"steam_id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Balance   Money     `json:"balance"`
	TradeURL  string    `json:"trade_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
