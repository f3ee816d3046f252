package signal

import (
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/livego/signal/pkg/api"
	"github.com/livego/signal/pkg/com"
	"github.com/livego/signal/pkg/logger"
	"github.com/livego/signal/pkg/network/websocket"
)

// session is one connected signaling client from the hub's point of view.
type session interface {
	com.NetClient[com.Uid]
	UserId() string
	Notify(t api.PT, payload any)
}

// Hub fans out room presence notifications and the process-wide
// stream lifecycle events to connected clients.
type Hub struct {
	clients com.NetMap[com.Uid, session]
	rooms   *Rooms
	// mu orders every room mutation with its notifications, so the
	// join/leave choreography of one room never interleaves.
	mu  sync.Mutex
	log *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: com.NewNetMap[com.Uid, session](),
		rooms:   NewRooms(),
		log:     log,
	}
}

func (h *Hub) Rooms() *Rooms { return h.rooms }

// handleConnection serves one signaling client for the whole lifetime
// of its websocket connection.
func (h *Hub) handleConnection(w http.ResponseWriter, r *http.Request) {
	userId := r.URL.Query().Get("userId")
	conn, err := websocket.NewServer(w, r, h.log)
	if err != nil {
		h.log.Error().Err(err).Msg("couldn't upgrade the client connection")
		return
	}
	client := NewClient(conn, userId, h.log)
	client.log.Info().Msg("Connect")

	conn.OnMessage = func(message []byte, err error) {
		if err != nil {
			return
		}
		var in api.In
		if err := json.Unmarshal(message, &in); err != nil {
			client.log.Debug().Err(err).Msg("malformed packet")
			return
		}
		h.route(client, in)
	}
	h.clients.Add(client)
	countEvent(eventConnect)
	conn.Listen()

	<-conn.Done
	h.disconnect(client)
	client.log.Info().Msg("Disconnect")
}

func (h *Hub) route(c *Client, in api.In) {
	countEvent(string(in.T))
	switch in.T {
	case api.JoinStream:
		if rq := api.Unwrap[api.JoinStreamRequest](in.Payload); rq != nil {
			h.join(c, *rq)
		}
	case api.LeaveStream:
		if rq := api.Unwrap[api.LeaveStreamRequest](in.Payload); rq != nil {
			h.leave(c, *rq)
		}
	case api.StreamStarted:
		h.streamStarted(in.Payload)
	case api.StreamEnded:
		if rq := api.Unwrap[api.StreamEndedRequest](in.Payload); rq != nil {
			h.streamEnded(*rq)
		}
	default:
		c.log.Debug().Msgf("unknown event [%v]", in.T)
	}
}

// join puts the connection into the room and notifies the room in the
// fixed order: peer-joined (to everyone else), status-online, refresh.
func (h *Hub) join(c session, rq api.JoinStreamRequest) {
	if rq.StreamId == "" || rq.User.Id == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rooms.Join(rq.StreamId, c.Id(), Participant{UserId: rq.User.Id, Name: rq.User.Name})
	h.toRoom(rq.StreamId, c.Id(), api.UserJoined, rq.User)
	h.toRoom(rq.StreamId, com.NilUid, api.UserStatus, api.UserStatusNotice{UserId: rq.User.Id, Status: api.StatusOnline})
	h.toRoom(rq.StreamId, com.NilUid, api.OnlineUsersUpdate, api.OnlineUsersNotice{RoomId: rq.StreamId})
	h.gauge()
}

// leave mirrors join with the offline choreography. Leaving a room that
// doesn't exist is silently absorbed, presence is best-effort.
func (h *Hub) leave(c session, rq api.LeaveStreamRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.rooms.Has(rq.StreamId) {
		return
	}
	h.rooms.Leave(rq.StreamId, c.Id())
	h.notifyLeft(rq.StreamId, rq.UserId)
	h.gauge()
}

// streamStarted re-broadcasts the stream announcement verbatim to every
// connected client, regardless of room membership.
func (h *Hub) streamStarted(payload json.RawMessage) {
	h.toAll(api.StreamStarted, payload)
}

// streamEnded is broadcast process-wide and tears the room down.
func (h *Hub) streamEnded(rq api.StreamEndedRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.toAll(api.StreamEnded, rq)
	h.rooms.Remove(rq.StreamId)
	h.gauge()
}

// disconnect removes the client from its room (looked up by connection
// since the room is not known a priori) before notifying peers, so
// presence counts never keep a ghost entry.
func (h *Hub) disconnect(c session) {
	h.clients.Remove(c)
	h.mu.Lock()
	defer h.mu.Unlock()
	roomId, ok := h.rooms.FindRoomOf(c.Id())
	if !ok {
		return
	}
	p, ok := h.rooms.Leave(roomId, c.Id())
	if !ok {
		return
	}
	h.notifyLeft(roomId, p.UserId)
	h.gauge()
}

func (h *Hub) notifyLeft(roomId string, userId string) {
	h.toRoom(roomId, com.NilUid, api.UserLeft, api.UserLeftNotice{UserId: userId})
	h.toRoom(roomId, com.NilUid, api.UserStatus, api.UserStatusNotice{UserId: userId, Status: api.StatusOffline})
	h.toRoom(roomId, com.NilUid, api.OnlineUsersUpdate, api.OnlineUsersNotice{RoomId: roomId})
}

// toRoom notifies every connection of the room except the one given.
func (h *Hub) toRoom(roomId string, except com.Uid, t api.PT, payload any) {
	for _, cid := range h.rooms.Connections(roomId) {
		if cid == except {
			continue
		}
		if c, err := h.clients.Find(cid); err == nil {
			c.Notify(t, payload)
		}
	}
}

func (h *Hub) toAll(t api.PT, payload any) {
	h.clients.ForEach(func(c session) { c.Notify(t, payload) })
}

func (h *Hub) gauge() {
	rooms, participants := h.rooms.Stats()
	gaugePresence(rooms, participants, h.clients.Len())
}
