// Package broadcast drives outbound WebRTC publish negotiations
// against the external media server.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/livego/signal/pkg/logger"
	"github.com/livego/signal/pkg/srs"
)

// State is a negotiation session phase.
type State uint8

const (
	Idle State = iota
	Gathering
	Negotiating
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Gathering:
		return "gathering"
	case Negotiating:
		return "negotiating"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrGatherTimeout points at connectivity or firewall problems
	// with the STUN/TURN endpoints.
	ErrGatherTimeout   = errors.New("ICE candidate gathering timed out")
	ErrPublishRejected = errors.New("the media server rejected the offer")
	ErrSessionDone     = errors.New("the session is finished, a retry needs a new session")
)

// Transport is the local media peer of one negotiation.
type Transport interface {
	// Offer creates the local offer, sets it as the local description
	// and starts ICE gathering.
	Offer() error
	// OnIceCandidate registers the candidate callback. A nil candidate
	// marks the end of gathering.
	OnIceCandidate(func(candidate *string))
	// LocalDescription returns the local description with all gathered
	// candidates bundled in.
	LocalDescription() (string, error)
	// SetAnswer applies the remote answer description.
	SetAnswer(sdp string) error
	Close()
}

// Publisher submits finished offers to the media server.
type Publisher interface {
	Publish(ctx context.Context, sdp string, streamUrl string) (*srs.PublishResponse, error)
}

// Session drives one outbound broadcast negotiation to completion or
// failure. Candidates are bundled into the final offer, not trickled.
// Terminal states are final: a retry requires a brand-new session with
// a new transport.
type Session struct {
	transport Transport
	publisher Publisher
	streamUrl string
	timeout   time.Duration
	log       *logger.Logger

	mu         sync.Mutex
	state      State
	candidates []string
}

type Option func(*Session)

// WithGatherTimeout overrides the deadline of the candidate gathering
// phase. The publish round-trip is bounded by the HTTP client instead.
func WithGatherTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

const defaultGatherTimeout = 8 * time.Second

func NewSession(t Transport, p Publisher, streamUrl string, log *logger.Logger, opts ...Option) *Session {
	s := &Session{
		transport: t,
		publisher: p,
		streamUrl: streamUrl,
		timeout:   defaultGatherTimeout,
		log:       log.Extend(log.With().Str("url", streamUrl)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Candidates returns a snapshot of the candidates gathered so far.
func (s *Session) Candidates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.candidates...)
}

// Run performs the whole negotiation and blocks until the media path is
// established or the attempt fails. Any failure tears the transport down.
func (s *Session) Run(ctx context.Context) error {
	if !s.to(Idle, Gathering) {
		return ErrSessionDone
	}

	gathered := make(chan struct{})
	var once sync.Once
	s.transport.OnIceCandidate(func(candidate *string) {
		if candidate == nil {
			// only the first end-of-gathering marker counts
			once.Do(func() { close(gathered) })
			return
		}
		select {
		case <-gathered:
			// late candidates past the completion marker are dropped
		default:
			s.addCandidate(*candidate)
		}
	})

	if err := s.transport.Offer(); err != nil {
		return s.fail(err)
	}
	s.log.Debug().Msg("Offer created, gathering candidates")

	select {
	case <-gathered:
	case <-time.After(s.timeout):
		return s.fail(ErrGatherTimeout)
	case <-ctx.Done():
		return s.fail(ctx.Err())
	}

	s.to(Gathering, Negotiating)
	sdp, err := s.transport.LocalDescription()
	if err != nil {
		return s.fail(err)
	}
	s.log.Debug().Msgf("Gathering complete with %v candidates, publishing", len(s.Candidates()))

	res, err := s.publisher.Publish(ctx, sdp, s.streamUrl)
	if err != nil {
		return s.fail(err)
	}
	if !res.Ok() {
		return s.fail(fmt.Errorf("%w (code %v)", ErrPublishRejected, res.Code))
	}
	if err := s.transport.SetAnswer(res.Sdp); err != nil {
		return s.fail(err)
	}
	s.to(Negotiating, Complete)
	s.log.Info().Msg("Negotiation complete, the media path is active")
	return nil
}

// addCandidate accumulates candidates of a live gathering phase.
func (s *Session) addCandidate(candidate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Gathering {
		return
	}
	s.candidates = append(s.candidates, candidate)
}

func (s *Session) to(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.state = Failed
	s.mu.Unlock()
	s.transport.Close()
	s.log.Error().Err(err).Msg("Negotiation failed")
	return err
}
