// Package beaverclient is a convenience client for the Beaver triple TTP
// service's HTTP API, mirroring the reference Python client's shape.
package beaverclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/roterdam/beaver-ttp/internal/ring"
)

// ErrDoubleRequest is returned when the service reports that this party has
// already been served for the requested (session, triple_id).
var ErrDoubleRequest = fmt.Errorf("beaverclient: double request")

// ErrRequestFailed is returned for any non-2xx, non-403 response from the
// service, wrapped with the status code and server-reported message so
// callers can still branch on it with errors.Is.
var ErrRequestFailed = fmt.Errorf("beaverclient: request failed")

// Share is a party's decoded additive share of a triple. Components are
// big.Int because Word64 values may exceed any native Go integer type's
// comfortable range for arithmetic the caller performs on them.
type Share struct {
	A, B, C *big.Int
}

// Client calls the Beaver triple TTP service over HTTP.
type Client struct {
	BaseURL    string
	SessionID  string
	HTTPClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithSessionID overrides the client's auto-generated session id.
func WithSessionID(sessionID string) Option {
	return func(c *Client) { c.SessionID = sessionID }
}

// WithHTTPClient overrides the default http.Client, e.g. to set a timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// New constructs a Client against baseURL, generating a random session id
// unless WithSessionID is supplied.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    baseURL,
		SessionID:  uuid.NewString(),
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type shareRequestBody struct {
	SessionID string `json:"session_id"`
	PartyID   int    `json:"party_id"`
	TripleID  int64  `json:"triple_id"`
	Ring      string `json:"ring"`
}

type shareResponseBody struct {
	Share struct {
		A string `json:"a"`
		B string `json:"b"`
		C string `json:"c"`
	} `json:"share"`
}

type errorResponseBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GetShare requests partyID's share of triple tripleID in the client's
// current session, over ring rg.
func (c *Client) GetShare(ctx context.Context, partyID int, tripleID int64, rg ring.Ring) (Share, error) {
	body, err := json.Marshal(shareRequestBody{
		SessionID: c.SessionID,
		PartyID:   partyID,
		TripleID:  tripleID,
		Ring:      string(rg),
	})
	if err != nil {
		return Share{}, fmt.Errorf("beaverclient: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/beaver/share", bytes.NewReader(body))
	if err != nil {
		return Share{}, fmt.Errorf("beaverclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Share{}, fmt.Errorf("beaverclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Share{}, fmt.Errorf("beaverclient: read response: %w", err)
	}

	if resp.StatusCode == http.StatusForbidden {
		return Share{}, ErrDoubleRequest
	}
	if resp.StatusCode != http.StatusOK {
		var errBody errorResponseBody
		_ = json.Unmarshal(raw, &errBody)
		return Share{}, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, errBody.Message)
	}

	var parsed shareResponseBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Share{}, fmt.Errorf("beaverclient: decode response: %w", err)
	}

	return decodeShare(parsed)
}

// GetBatch requests count consecutive triple ids starting at startID for
// partyID, returning their shares in order.
func (c *Client) GetBatch(ctx context.Context, partyID int, startID int64, count int, rg ring.Ring) ([]Share, error) {
	shares := make([]Share, 0, count)
	for i := 0; i < count; i++ {
		s, err := c.GetShare(ctx, partyID, startID+int64(i), rg)
		if err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, nil
}

func decodeShare(body shareResponseBody) (Share, error) {
	a, ok := new(big.Int).SetString(body.Share.A, 10)
	if !ok {
		return Share{}, fmt.Errorf("beaverclient: malformed share component a=%q", body.Share.A)
	}
	b, ok := new(big.Int).SetString(body.Share.B, 10)
	if !ok {
		return Share{}, fmt.Errorf("beaverclient: malformed share component b=%q", body.Share.B)
	}
	c, ok := new(big.Int).SetString(body.Share.C, 10)
	if !ok {
		return Share{}, fmt.Errorf("beaverclient: malformed share component c=%q", body.Share.C)
	}
	return Share{A: a, B: b, C: c}, nil
}
