package srs

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/livego/signal/pkg/logger"
)

// Client makes typed RTC signaling calls against the media server API.
type Client struct {
	base string
	http *http.Client
	log  *logger.Logger
}

const defaultRequestTimeout = 10 * time.Second

func NewClient(apiAddr string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		base: strings.TrimRight(apiAddr, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

type PublishRequest struct {
	Sdp       string `json:"sdp"`
	StreamUrl string `json:"streamUrl"`
}

// PublishResponse is the media server's answer envelope.
// Code 0 signals success and Sdp carries the answer description,
// any other code is an error.
type PublishResponse struct {
	Code      int    `json:"code"`
	Sdp       string `json:"sdp,omitempty"`
	SessionId string `json:"sessionid,omitempty"`
}

func (r *PublishResponse) Ok() bool { return r.Code == 0 && r.Sdp != "" }

// Publish submits a finished SDP offer for the given stream URL and
// returns the server's answer envelope.
func (c *Client) Publish(ctx context.Context, sdp string, streamUrl string) (*PublishResponse, error) {
	var out PublishResponse
	if err := c.post(ctx, "/api/v1/rtc/publish", PublishRequest{Sdp: sdp, StreamUrl: streamUrl}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type TrickleRequest struct {
	SessionId string `json:"sessionId"`
	Candidate string `json:"candidate"`
}

// Trickle forwards a single ICE candidate for an established session.
// Not used by the bundled-offer broadcaster flow, kept for trickle-based
// clients.
func (c *Client) Trickle(ctx context.Context, sessionId string, candidate string) error {
	var out PublishResponse
	err := c.post(ctx, "/api/v1/rtc/trickle/"+sessionId, TrickleRequest{SessionId: sessionId, Candidate: candidate}, &out)
	if err != nil {
		return err
	}
	if out.Code != 0 {
		return fmt.Errorf("trickle rejected with code %v", out.Code)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.log.Debug().Msgf("srs -> POST %s", path)
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("bad media server response: %w", err)
	}
	return nil
}
