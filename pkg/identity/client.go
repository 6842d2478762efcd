package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/noah-isme/meatsafe-api/pkg/config"
)

var (
	// ErrRejected means the provider answered but did not accept the session id.
	ErrRejected = errors.New("identity provider rejected session")
	// ErrUnavailable wraps transport failures and timeouts.
	ErrUnavailable = errors.New("identity provider unavailable")
)

// Profile is the subset of the provider's session data the service relies on.
type Profile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Client exchanges opaque external session ids for a verified profile.
type Client struct {
	http       *resty.Client
	sessionURL string
	header     string
}

// NewClient builds a resty backed client. Retries are disabled.
func NewClient(cfg config.IdentityConfig) *Client {
	header := cfg.SessionHeader
	if header == "" {
		header = "X-Session-ID"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, sessionURL: cfg.SessionURL, header: header}
}

// SessionData fetches the profile bound to sessionID.
func (c *Client) SessionData(ctx context.Context, sessionID string) (*Profile, error) {
	var profile Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(c.header, sessionID).
		SetResult(&profile).
		Get(c.sessionURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode())
	}

	profile.Email = strings.TrimSpace(profile.Email)
	if profile.Email == "" {
		return nil, fmt.Errorf("%w: profile has no email", ErrRejected)
	}
	if strings.TrimSpace(profile.Name) == "" {
		profile.Name = profile.Email
	}
	return &profile, nil
}
