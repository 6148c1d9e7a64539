package ports

import (
	"context"
	"net/url"
	"strconv"

	"github.com/bft-labs/walletscope/internal/domain"
)

// Channel is a persistent connection to the collector.
type Channel interface {
	// Emit sends one envelope. Delivery is best-effort and never retried.
	Emit(envelope domain.Envelope) error

	// Close tears the connection down.
	Close() error
}

// Dialer opens channels.
type Dialer interface {
	Open(ctx context.Context, baseURL string, query ChannelQuery) (Channel, error)
}

// ChannelQuery is the fixed payload sent when a channel is opened.
type ChannelQuery struct {
	APIKey           string
	IdentityID       string
	SDKVersion       string
	ScreenWidth      int
	ScreenHeight     int
	ViewportWidth    int
	ViewportHeight   int
	URL              string
	SessionStorageID string
}

// Values encodes the query as URL parameters.
func (q ChannelQuery) Values() url.Values {
	v := url.Values{}
	v.Set("apiKey", q.APIKey)
	v.Set("identityId", q.IdentityID)
	v.Set("sdkVersion", q.SDKVersion)
	v.Set("screenWidth", strconv.Itoa(q.ScreenWidth))
	v.Set("screenHeight", strconv.Itoa(q.ScreenHeight))
	v.Set("viewportWidth", strconv.Itoa(q.ViewportWidth))
	v.Set("viewportHeight", strconv.Itoa(q.ViewportHeight))
	v.Set("url", q.URL)
	v.Set("sessionStorageId", q.SessionStorageID)
	return v
}

// Poster performs one-shot JSON requests against the collector.
type Poster interface {
	// Post sends payload to baseURL+path and returns the string body.
	Post(ctx context.Context, baseURL, apiKey, path string, payload any) (string, error)
}
