package signal

import (
	"github.com/goccy/go-json"
	"github.com/livego/signal/pkg/api"
	"github.com/livego/signal/pkg/com"
	"github.com/livego/signal/pkg/logger"
	"github.com/livego/signal/pkg/network/websocket"
)

// Client wraps a single websocket connection of a signaling user.
type Client struct {
	id     com.Uid
	userId string
	sock   *websocket.WS
	log    *logger.Logger
}

func NewClient(sock *websocket.WS, userId string, log *logger.Logger) *Client {
	id := com.NewUid()
	return &Client{
		id:     id,
		userId: userId,
		sock:   sock,
		log:    log.Extend(log.With().Str("cid", id.Short()).Str("uid", userId)),
	}
}

func (c *Client) Id() com.Uid    { return c.id }
func (c *Client) UserId() string { return c.userId }

// Notify sends a fire-and-forget packet to the client.
func (c *Client) Notify(t api.PT, payload any) {
	data, err := json.Marshal(api.Out{T: t, Payload: payload})
	if err != nil {
		c.log.Error().Err(err).Msgf("broken packet [%v]", t)
		return
	}
	c.sock.Write(data)
}

func (c *Client) Disconnect() { c.sock.Close() }
