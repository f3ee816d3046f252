package signal

import (
	"sync"
	"testing"

	"github.com/livego/signal/pkg/api"
	"github.com/livego/signal/pkg/com"
	"github.com/livego/signal/pkg/logger"
)

type fakeSession struct {
	id     com.Uid
	userId string

	mu     sync.Mutex
	events []api.PT
	last   map[api.PT]any
}

func newFakeSession(userId string) *fakeSession {
	return &fakeSession{id: com.NewUid(), userId: userId, last: make(map[api.PT]any)}
}

func (f *fakeSession) Id() com.Uid    { return f.id }
func (f *fakeSession) UserId() string { return f.userId }
func (f *fakeSession) Disconnect()    {}

func (f *fakeSession) Notify(t api.PT, payload any) {
	f.mu.Lock()
	f.events = append(f.events, t)
	f.last[t] = payload
	f.mu.Unlock()
}

func (f *fakeSession) seen() []api.PT {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.PT(nil), f.events...)
}

func (f *fakeSession) reset() {
	f.mu.Lock()
	f.events = nil
	f.mu.Unlock()
}

func expectEvents(t *testing.T, s *fakeSession, want ...api.PT) {
	t.Helper()
	got := s.seen()
	if len(got) != len(want) {
		t.Fatalf("unexpected events: %v (want %v)", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected event order: %v (want %v)", got, want)
		}
	}
}

func join(h *Hub, s *fakeSession, roomId string) {
	h.clients.Add(s)
	h.join(s, api.JoinStreamRequest{StreamId: roomId, User: api.User{Id: s.userId, Name: s.userId}})
}

func TestHub(t *testing.T) {
	t.Run("JoinChoreography", testJoinChoreography)
	t.Run("LeaveChoreography", testLeaveChoreography)
	t.Run("DisconnectCleanup", testDisconnectCleanup)
	t.Run("StreamLifecycle", testStreamLifecycle)
	t.Run("LeaveUnknownRoom", testLeaveUnknownRoom)
}

// The room must observe the join in the fixed order: peer-joined to
// everyone else, then status-online, then the roster refresh.
func testJoinChoreography(t *testing.T) {
	t.Parallel()
	h := NewHub(logger.Default())
	a, b := newFakeSession("u1"), newFakeSession("u2")

	join(h, a, "r1")
	expectEvents(t, a, api.UserStatus, api.OnlineUsersUpdate)
	a.reset()

	join(h, b, "r1")
	expectEvents(t, a, api.UserJoined, api.UserStatus, api.OnlineUsersUpdate)
	// the joiner itself gets no peer-joined echo
	expectEvents(t, b, api.UserStatus, api.OnlineUsersUpdate)

	if u, ok := a.last[api.UserJoined].(api.User); !ok || u.Id != "u2" {
		t.Errorf("unexpected joined user: %+v", a.last[api.UserJoined])
	}
}

func testLeaveChoreography(t *testing.T) {
	t.Parallel()
	h := NewHub(logger.Default())
	a, b := newFakeSession("u1"), newFakeSession("u2")
	join(h, a, "r1")
	join(h, b, "r1")
	a.reset()
	b.reset()

	h.leave(b, api.LeaveStreamRequest{StreamId: "r1", UserId: "u2"})

	expectEvents(t, a, api.UserLeft, api.UserStatus, api.OnlineUsersUpdate)
	// the leaver is out of the room before the notifications fan out
	expectEvents(t, b)

	if n, ok := a.last[api.UserStatus].(api.UserStatusNotice); !ok || n.UserId != "u2" || n.Status != api.StatusOffline {
		t.Errorf("unexpected status notice: %+v", a.last[api.UserStatus])
	}
	if h.rooms.Count("r1") != 1 {
		t.Errorf("unexpected room size: %v", h.rooms.Count("r1"))
	}
}

func testDisconnectCleanup(t *testing.T) {
	t.Parallel()
	h := NewHub(logger.Default())
	a, b := newFakeSession("u1"), newFakeSession("u2")
	join(h, a, "r1")
	join(h, b, "r1")
	a.reset()

	h.disconnect(b)

	expectEvents(t, a, api.UserLeft, api.UserStatus, api.OnlineUsersUpdate)
	if n, ok := a.last[api.UserLeft].(api.UserLeftNotice); !ok || n.UserId != "u2" {
		t.Errorf("unexpected left notice: %+v", a.last[api.UserLeft])
	}
	if _, ok := h.rooms.FindRoomOf(b.Id()); ok {
		t.Error("disconnected client should be out of the registry")
	}
	if h.clients.Has(b.Id()) {
		t.Error("disconnected client should be out of the hub")
	}
}

// Stream lifecycle events go process-wide, room membership plays no role.
func testStreamLifecycle(t *testing.T) {
	t.Parallel()
	h := NewHub(logger.Default())
	a, b := newFakeSession("u1"), newFakeSession("u2")
	outsider := newFakeSession("u3")
	join(h, a, "r1")
	join(h, b, "r1")
	h.clients.Add(outsider)
	a.reset()
	b.reset()

	h.streamStarted([]byte(`{"id":"r1","hostId":"u1"}`))
	expectEvents(t, outsider, api.StreamStarted)

	h.streamEnded(api.StreamEndedRequest{StreamId: "r1"})
	expectEvents(t, outsider, api.StreamStarted, api.StreamEnded)
	expectEvents(t, a, api.StreamStarted, api.StreamEnded)
	expectEvents(t, b, api.StreamStarted, api.StreamEnded)

	if h.rooms.Has("r1") {
		t.Error("an ended stream should have no room")
	}
}

func testLeaveUnknownRoom(t *testing.T) {
	t.Parallel()
	h := NewHub(logger.Default())
	a := newFakeSession("u1")
	join(h, a, "r1")
	a.reset()

	h.leave(a, api.LeaveStreamRequest{StreamId: "nope", UserId: "u1"})

	expectEvents(t, a)
	if h.rooms.Count("r1") != 1 {
		t.Error("leaving an unknown room should not touch the real one")
	}
}
