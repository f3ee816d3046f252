package signal

import (
	"testing"

	"github.com/livego/signal/pkg/com"
)

func TestRooms(t *testing.T) {
	t.Run("JoinLeave", testJoinLeave)
	t.Run("Rejoin", testRejoin)
	t.Run("ImplicitLeave", testImplicitLeave)
	t.Run("Remove", testRemove)
	t.Run("NoopLeave", testNoopLeave)
	t.Run("EmptyRoomPersists", testEmptyRoomPersists)
}

func testJoinLeave(t *testing.T) {
	t.Parallel()
	r := NewRooms()
	c1, c2 := com.NewUid(), com.NewUid()

	r.Join("r1", c1, Participant{UserId: "u1"})
	r.Join("r1", c2, Participant{UserId: "u2"})
	if n := r.Count("r1"); n != 2 {
		t.Fatalf("unexpected participant count: %v (want 2)", n)
	}

	p, ok := r.Leave("r1", c1)
	if !ok || p.UserId != "u1" {
		t.Fatalf("unexpected leave result: %+v, %v", p, ok)
	}
	if n := r.Count("r1"); n != 1 {
		t.Errorf("unexpected participant count: %v (want 1)", n)
	}
	left := r.Connections("r1")
	if len(left) != 1 || left[0] != c2 {
		t.Errorf("unexpected remaining connections: %v", left)
	}
}

func testRejoin(t *testing.T) {
	t.Parallel()
	r := NewRooms()
	c1 := com.NewUid()

	r.Join("r1", c1, Participant{UserId: "u1", Name: "Ann"})
	r.Join("r1", c1, Participant{UserId: "u1", Name: "Anna"})
	if n := r.Count("r1"); n != 1 {
		t.Fatalf("rejoin should replace, not duplicate: %v participants", n)
	}
}

func testImplicitLeave(t *testing.T) {
	t.Parallel()
	r := NewRooms()
	c1 := com.NewUid()

	r.Join("r1", c1, Participant{UserId: "u1"})
	r.Join("r2", c1, Participant{UserId: "u1"})

	if n := r.Count("r1"); n != 0 {
		t.Errorf("the old room should be left: %v participants", n)
	}
	if roomId, ok := r.FindRoomOf(c1); !ok || roomId != "r2" {
		t.Errorf("unexpected room of connection: %v, %v", roomId, ok)
	}
}

func testRemove(t *testing.T) {
	t.Parallel()
	r := NewRooms()
	c1, c2 := com.NewUid(), com.NewUid()

	r.Join("r1", c1, Participant{UserId: "u1"})
	r.Join("r1", c2, Participant{UserId: "u2"})
	r.Remove("r1")

	if r.Has("r1") {
		t.Error("the room should be gone")
	}
	if _, ok := r.FindRoomOf(c1); ok {
		t.Error("removed room should not be found by connection")
	}
	if _, ok := r.FindRoomOf(c2); ok {
		t.Error("removed room should not be found by connection")
	}
	rooms, participants := r.Stats()
	if rooms != 0 || participants != 0 {
		t.Errorf("unexpected stats: %v rooms, %v participants", rooms, participants)
	}
}

func testNoopLeave(t *testing.T) {
	t.Parallel()
	r := NewRooms()
	c1 := com.NewUid()

	if _, ok := r.Leave("nope", c1); ok {
		t.Error("leaving an unknown room should be a no-op")
	}
	r.Join("r1", c1, Participant{UserId: "u1"})
	if _, ok := r.Leave("r1", com.NewUid()); ok {
		t.Error("leaving with an unknown connection should be a no-op")
	}
	if n := r.Count("r1"); n != 1 {
		t.Errorf("no-op leave should not change the room: %v participants", n)
	}
}

func testEmptyRoomPersists(t *testing.T) {
	t.Parallel()
	r := NewRooms()
	c1 := com.NewUid()

	r.Join("r1", c1, Participant{UserId: "u1"})
	r.Leave("r1", c1)

	if !r.Has("r1") {
		t.Error("a drained room should persist until removed explicitly")
	}
}
