package broadcast

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/livego/signal/pkg/api"
	"github.com/livego/signal/pkg/logger"
	"github.com/livego/signal/pkg/network/websocket"
)

// Announcer is the broadcaster's link to the signaling server. It pushes
// the global stream lifecycle events so every connected client learns
// about new and finished broadcasts.
type Announcer struct {
	sock *websocket.WS
	log  *logger.Logger
}

func NewAnnouncer(address string, userId string, log *logger.Logger) (*Announcer, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("bad signaling address %v: %w", address, err)
	}
	q := u.Query()
	q.Set("userId", userId)
	u.RawQuery = q.Encode()
	sock, err := websocket.NewClient(*u, log)
	if err != nil {
		return nil, err
	}
	sock.Listen()
	log.Info().Msgf("Connected to the signaling server at %v", u.Host)
	return &Announcer{sock: sock, log: log}, nil
}

func (a *Announcer) StreamStarted(info api.StreamInfo) { a.send(api.StreamStarted, info) }

func (a *Announcer) StreamEnded(streamId string) {
	a.send(api.StreamEnded, api.StreamEndedRequest{StreamId: streamId})
}

func (a *Announcer) send(t api.PT, payload any) {
	data, err := json.Marshal(api.Out{T: t, Payload: payload})
	if err != nil {
		a.log.Error().Err(err).Msgf("packet [%v] marshal fail", t)
		return
	}
	a.sock.Write(data)
}

// Done closes when the server drops the connection.
func (a *Announcer) Done() chan struct{} { return a.sock.Done }

func (a *Announcer) Close() { a.sock.Close() }

// Relay is where stream lifecycle announcements go.
type Relay interface {
	StreamStarted(info api.StreamInfo)
	StreamEnded(streamId string)
}

// Cast announces the stream before negotiating, so viewers see it while
// the media path is still coming up, and withdraws the announcement when
// the negotiation fails.
func Cast(ctx context.Context, relay Relay, session *Session, info api.StreamInfo) error {
	relay.StreamStarted(info)
	if err := session.Run(ctx); err != nil {
		relay.StreamEnded(info.Id)
		return err
	}
	return nil
}
