package delivery

import (
	"context"
	"encoding/base64"
	"sync"

	"github.com/gwskins/GWSkins_Go/internal/custody"
	"github.com/gwskins/GWSkins_Go/internal/steam"
)

var testSharedSecret = base64.StdEncoding.EncodeToString([]byte("0123456789abcdefghij"))

type submitCall struct {
	dest    steam.Destination
	assets  []steam.AssetRef
	message string
}

// fakePlatform is an in-memory steam.Platform for dispatcher and reconciler
// tests.
type fakePlatform struct {
	mu          sync.Mutex
	inventory   []steam.AssetRef
	submitErr   error
	proposalSeq int
	submitted   []submitCall
	declined    []string
	subscribers []chan steam.Event
}

func newFakePlatform(inventory ...steam.AssetRef) *fakePlatform {
	return &fakePlatform{inventory: inventory}
}

func (f *fakePlatform) Authenticate(ctx context.Context, creds steam.Credentials) (*steam.Session, error) {
	return &steam.Session{Token: "token", SteamID: "76561198000000099"}, nil
}

func (f *fakePlatform) ListInventory(ctx context.Context, session *steam.Session) ([]steam.AssetRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]steam.AssetRef(nil), f.inventory...), nil
}

func (f *fakePlatform) SubmitTradeOffer(ctx context.Context, session *steam.Session, dest steam.Destination, assets []steam.AssetRef, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submitted = append(f.submitted, submitCall{dest: dest, assets: assets, message: message})
	f.proposalSeq++
	return "proposal-1", nil
}

func (f *fakePlatform) AcceptConfirmations(ctx context.Context, session *steam.Session, identitySecret string) error {
	return nil
}

func (f *fakePlatform) DeclineOffer(ctx context.Context, session *steam.Session, proposalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declined = append(f.declined, proposalID)
	return nil
}

func (f *fakePlatform) Subscribe() <-chan steam.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan steam.Event, 16)
	f.subscribers = append(f.subscribers, ch)
	return ch
}

func (f *fakePlatform) Start(ctx context.Context) {}
func (f *fakePlatform) Stop()                     {}

func (f *fakePlatform) emit(evt steam.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subscribers {
		ch <- evt
	}
}

func (f *fakePlatform) setInventory(assets ...steam.AssetRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inventory = assets
}

func (f *fakePlatform) setSubmitErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitErr = err
}

func (f *fakePlatform) declinedOffers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.declined...)
}

func (f *fakePlatform) submittedCalls() []submitCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submitCall(nil), f.submitted...)
}

func newTestCustody(platform steam.Platform) *custody.Manager {
	return custody.NewManager(platform, custody.Credentials{
		Username:     "agent",
		Password:     "secret",
		SharedSecret: testSharedSecret,
	}, 0, nil)
}
