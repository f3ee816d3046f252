// Package srs talks to the external SRS media server: a verbatim HTTP
// proxy for its management and RTC API, and a typed client for the
// publish/trickle signaling calls.
package srs

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/livego/signal/pkg/logger"
)

// Proxy forwards management and RTC API calls verbatim to the media
// server, streaming request and response bodies both ways. The media
// server stays the single source of truth for streams, clients,
// connections, configs and vhosts; this process adds nothing on top.
type Proxy struct {
	reverse *httputil.ReverseProxy
	target  *url.URL
	log     *logger.Logger
}

type proxyError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func NewProxy(apiAddr string, log *logger.Logger) (*Proxy, error) {
	target, err := url.Parse(apiAddr)
	if err != nil {
		return nil, fmt.Errorf("bad SRS API address %v: %w", apiAddr, err)
	}
	p := &Proxy{target: target, log: log}
	p.reverse = &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.Out.Host = target.Host
		},
		// metrics and summaries endpoints may stream chunked responses
		FlushInterval: 100 * time.Millisecond,
		ErrorHandler:  p.unreachable,
	}
	return p, nil
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.log.Debug().Msgf("srs <- %s %s", r.Method, r.URL.Path)
	p.reverse.ServeHTTP(w, r)
}

// unreachable keeps the media server's error envelope, so clients can't
// tell the proxy from the server itself.
func (p *Proxy) unreachable(w http.ResponseWriter, r *http.Request, err error) {
	p.log.Error().Err(err).Msgf("SRS server at %v is unreachable", p.target)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(proxyError{
		Code:    -1,
		Message: fmt.Sprintf("Failed to connect to SRS server at %v. Is it running and accessible?", p.target),
		Error:   err.Error(),
	})
}
