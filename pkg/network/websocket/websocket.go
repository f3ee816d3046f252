package websocket

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/livego/signal/pkg/logger"
)

const (
	maxMessageSize = 10 * 1024
	pongTime       = 60 * time.Second
	pingTime       = pongTime * 9 / 10
	writeWait      = 10 * time.Second
	sendQueueSize  = 128
)

// WS wraps a single websocket connection with the reader and writer pumps.
// All signaling traffic is fire-and-forget, so writes to a slow or stuck
// peer are dropped instead of blocking the sender.
type WS struct {
	conn *websocket.Conn
	send chan []byte
	quit chan struct{}
	once sync.Once
	log  *logger.Logger

	OnMessage MessageHandler

	pingPong bool

	Done chan struct{}
}

type MessageHandler func(message []byte, err error)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	WriteBufferPool: &sync.Pool{},
	// the signaling endpoint serves arbitrary web clients
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewServer upgrades an incoming HTTP request to a websocket connection.
func NewServer(w http.ResponseWriter, r *http.Request, log *logger.Logger) (*WS, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newSocket(conn, true, log), nil
}

// NewClient connects to a websocket endpoint at the given address.
func NewClient(address url.URL, log *logger.Logger) (*WS, error) {
	conn, _, err := websocket.DefaultDialer.Dial(address.String(), nil)
	if err != nil {
		return nil, err
	}
	return newSocket(conn, false, log), nil
}

func newSocket(conn *websocket.Conn, pingPong bool, log *logger.Logger) *WS {
	ws := &WS{
		conn:     conn,
		send:     make(chan []byte, sendQueueSize),
		quit:     make(chan struct{}),
		log:      log,
		pingPong: pingPong,
		Done:     make(chan struct{}),
	}
	go ws.writer()
	return ws
}

// Listen starts the read pump. Call after OnMessage is set.
func (ws *WS) Listen() { go ws.reader() }

// reader pumps messages from the websocket connection to the OnMessage callback.
// Serializes all websocket reads.
func (ws *WS) reader() {
	defer ws.shutdown()
	ws.conn.SetReadLimit(maxMessageSize)
	if ws.pingPong {
		_ = ws.conn.SetReadDeadline(time.Now().Add(pongTime))
		ws.conn.SetPongHandler(func(string) error {
			return ws.conn.SetReadDeadline(time.Now().Add(pongTime))
		})
	}
	for {
		_, message, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.log.Debug().Err(err).Msg("ws read")
			}
			return
		}
		if ws.OnMessage != nil {
			ws.OnMessage(message, nil)
		}
	}
}

// writer pumps messages from the send queue to the websocket connection.
// Serializes all websocket writes.
func (ws *WS) writer() {
	var ping <-chan time.Time
	if ws.pingPong {
		ticker := time.NewTicker(pingTime)
		defer ticker.Stop()
		ping = ticker.C
	}
	defer ws.shutdown()
	for {
		select {
		case message := <-ws.send:
			if err := ws.write(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ping:
			if err := ws.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ws.quit:
			_ = ws.write(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (ws *WS) write(t int, message []byte) error {
	if err := ws.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return ws.conn.WriteMessage(t, message)
}

// Write queues a message for delivery, dropping it when the queue is full.
func (ws *WS) Write(data []byte) {
	select {
	case ws.send <- data:
	case <-ws.quit:
	default:
		ws.log.Warn().Msg("ws send queue overflow, message dropped")
	}
}

func (ws *WS) Close() { ws.shutdown() }

func (ws *WS) shutdown() {
	ws.once.Do(func() {
		close(ws.quit)
		_ = ws.conn.Close()
		close(ws.Done)
	})
}
