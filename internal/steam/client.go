package steam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is the HTTP + WebSocket implementation of Platform. REST calls
// carry the session token; asynchronous outcomes arrive on the event stream.
type Client struct {
	apiURL   string
	eventURL string
	http     *http.Client

	mu       sync.RWMutex
	conn     *websocket.Conn
	shutdown chan struct{}
	wg       sync.WaitGroup

	subMu       sync.RWMutex
	subscribers []chan Event
}

// NewClient creates a new platform client
func NewClient(apiURL, eventURL string) *Client {
	return &Client{
		apiURL:   apiURL,
		eventURL: eventURL,
		http:     &http.Client{Timeout: RequestTimeout},
		shutdown: make(chan struct{}),
	}
}

type loginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	TwoFactor string `json:"two_factor_code"`
}

type loginResponse struct {
	Token   string `json:"token"`
	SteamID string `json:"steam_id"`
}

// Authenticate logs the agent on and returns the web session
func (c *Client) Authenticate(ctx context.Context, creds Credentials) (*Session, error) {
	var resp loginResponse
	err := c.post(ctx, nil, "/ISteamUserAuth/AuthenticateUser/v1/", loginRequest{
		Username:  creds.Username,
		Password:  creds.Password,
		TwoFactor: creds.OneTimeCode,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrBadCredentials
	}
	return &Session{Token: resp.Token, SteamID: resp.SteamID}, nil
}

type inventoryResponse struct {
	Assets []AssetRef `json:"assets"`
}

// ListInventory enumerates the agent's tradable inventory
func (c *Client) ListInventory(ctx context.Context, session *Session) ([]AssetRef, error) {
	var resp inventoryResponse
	path := fmt.Sprintf("/IEconService/GetInventory/v1/?appid=%d&contextid=%s", DefaultAppID, DefaultContextID)
	if err := c.get(ctx, session, path, &resp); err != nil {
		return nil, err
	}
	tradable := make([]AssetRef, 0, len(resp.Assets))
	for _, a := range resp.Assets {
		if a.Tradable {
			tradable = append(tradable, a)
		}
	}
	return tradable, nil
}

type tradeOfferRequest struct {
	PartnerSteamID string     `json:"partner_steam_id"`
	TradeURL       string     `json:"trade_url"`
	ItemsToGive    []AssetRef `json:"items_to_give"`
	ItemsToReceive []AssetRef `json:"items_to_receive"`
	Message        string     `json:"message"`
}

type tradeOfferResponse struct {
	TradeOfferID string `json:"tradeofferid"`
}

// SubmitTradeOffer proposes a one-directional transfer of the given assets
func (c *Client) SubmitTradeOffer(ctx context.Context, session *Session, dest Destination, assets []AssetRef, message string) (string, error) {
	var resp tradeOfferResponse
	err := c.post(ctx, session, "/IEconService/SendTradeOffer/v1/", tradeOfferRequest{
		PartnerSteamID: dest.SteamID,
		TradeURL:       dest.TradeURL,
		ItemsToGive:    assets,
		ItemsToReceive: nil,
		Message:        message,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.TradeOfferID == "" {
		return "", ErrMalformedProposal
	}
	return resp.TradeOfferID, nil
}

type confirmationsRequest struct {
	ConfirmationKey string `json:"confirmation_key"`
	Timestamp       int64  `json:"timestamp"`
}

// AcceptConfirmations approves every pending mobile confirmation
func (c *Client) AcceptConfirmations(ctx context.Context, session *Session, identitySecret string) error {
	now := time.Now()
	key, err := GenerateConfirmationKey(identitySecret, "allow", now)
	if err != nil {
		return err
	}
	return c.post(ctx, session, "/IEconService/AcceptConfirmations/v1/", confirmationsRequest{
		ConfirmationKey: key,
		Timestamp:       now.Unix(),
	}, nil)
}

// DeclineOffer declines an incoming offer by id
func (c *Client) DeclineOffer(ctx context.Context, session *Session, proposalID string) error {
	path := fmt.Sprintf("/IEconService/DeclineTradeOffer/v1/?tradeofferid=%s", proposalID)
	return c.post(ctx, session, path, struct{}{}, nil)
}

func (c *Client) post(ctx context.Context, session *Session, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, session, out)
}

func (c *Client) get(ctx context.Context, session *Session, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, session, out)
}

func (c *Client) do(req *http.Request, session *Session, out interface{}) error {
	if session != nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrSessionExpired
	case resp.StatusCode == http.StatusBadRequest:
		return ErrMalformedProposal
	case resp.StatusCode >= 400:
		return fmt.Errorf("platform returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode platform response: %w", err)
	}
	return nil
}

// Subscribe returns a channel receiving every platform event
func (c *Client) Subscribe() <-chan Event {
	ch := make(chan Event, SubscriberBuffer)
	c.subMu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.subMu.Unlock()
	return ch
}

func (c *Client) broadcast(evt Event) {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, ch := range c.subscribers {
		select {
		case ch <- evt:
		default:
			slog.Warn(LogMsgEventDropped, "type", evt.Type)
		}
	}
}

// Start begins the event stream connection with auto-reconnect
func (c *Client) Start(ctx context.Context) {
	if c.eventURL == "" {
		slog.Warn("No platform event stream URL configured; outcomes will not be observed")
		return
	}
	c.wg.Add(1)
	go c.connectLoop(ctx)
}

// Stop gracefully shuts down the event stream
func (c *Client) Stop() {
	close(c.shutdown)
	c.wg.Wait()

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()
}

func (c *Client) connectLoop(ctx context.Context) {
	defer c.wg.Done()

	backoff := DefaultReconnectDelay
	for {
		select {
		case <-c.shutdown:
			slog.Info(LogMsgStreamStopped)
			return
		case <-ctx.Done():
			slog.Info(LogMsgStreamStopped)
			return
		default:
		}

		if err := c.connect(ctx); err != nil {
			slog.Warn(LogMsgStreamReconnecting, "error", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * ReconnectMultiplier)
				if backoff > MaxReconnectDelay {
					backoff = MaxReconnectDelay
				}
			case <-c.shutdown:
				return
			case <-ctx.Done():
				return
			}
			continue
		}
		backoff = DefaultReconnectDelay
	}
}

func (c *Client) connect(ctx context.Context) error {
	slog.Info(LogMsgStreamConnecting, "url", c.eventURL)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.eventURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("%w: %v (status: %s)", ErrStreamDisconnected, err, resp.Status)
		}
		return fmt.Errorf("%w: %v", ErrStreamDisconnected, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	slog.Info(LogMsgStreamConnected, "url", c.eventURL)
	return c.readLoop(ctx, conn)
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		select {
		case <-c.shutdown:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			slog.Warn(LogMsgStreamReadError, "error", err)
			return err
		}

		var evt Event
		if err := json.Unmarshal(msg, &evt); err != nil {
			continue // Ignore unparseable messages
		}
		if evt.Type == "" {
			continue
		}
		c.broadcast(evt)
	}
}
