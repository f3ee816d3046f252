package signal

import (
	"sync"

	"github.com/livego/signal/pkg/com"
)

// Participant is a single connected client attached to a room.
// One user may hold several connections, each tracked separately.
type Participant struct {
	UserId string
	Name   string
}

// Rooms is the authoritative registry of live rooms and their participants.
// All state is process-local and dies with the process, which is fine for
// a purely transient presence layer.
//
// The registry must be mutated only through its methods; it keeps a
// reverse connection index in sync with every room mutation, so external
// writes would corrupt lookups.
type Rooms struct {
	mu    sync.Mutex
	rooms map[string]map[com.Uid]Participant
	index map[com.Uid]string // connection -> room
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms: make(map[string]map[com.Uid]Participant, 10),
		index: make(map[com.Uid]string, 10),
	}
}

// Join adds the participant under cid, creating the room when absent.
// Joining twice with the same connection replaces the record (last write
// wins). A connection belongs to one room at most, so joining another
// room implicitly leaves the previous one.
func (r *Rooms) Join(roomId string, cid com.Uid, p Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.index[cid]; ok && prev != roomId {
		r.evict(prev, cid)
	}
	room := r.rooms[roomId]
	if room == nil {
		room = make(map[com.Uid]Participant, 10)
		r.rooms[roomId] = room
	}
	room[cid] = p
	r.index[cid] = roomId
}

// Leave removes the connection entry from the room if present and returns
// the removed participant. Leaving an unknown room or connection is a no-op.
func (r *Rooms) Leave(roomId string, cid com.Uid) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomId]
	if !ok {
		return Participant{}, false
	}
	p, ok := room[cid]
	if !ok {
		return Participant{}, false
	}
	r.evict(roomId, cid)
	return p, true
}

// FindRoomOf returns the room holding the given connection, if any.
// Used for disconnect cleanup when the room is not known a priori.
func (r *Rooms) FindRoomOf(cid com.Uid) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomId, ok := r.index[cid]
	return roomId, ok
}

// Remove deletes the entire room state, used on explicit stream end.
// Rooms are kept at zero occupancy otherwise, so a broadcaster dropping
// and rejoining does not lose the room.
func (r *Rooms) Remove(roomId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for cid := range r.rooms[roomId] {
		delete(r.index, cid)
	}
	delete(r.rooms, roomId)
}

// Has reports whether the room exists.
func (r *Rooms) Has(roomId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[roomId]
	return ok
}

// Count returns the number of participants in the room.
func (r *Rooms) Count(roomId string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[roomId])
}

// Connections returns a snapshot of the connection ids in the room.
func (r *Rooms) Connections(roomId string) []com.Uid {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := r.rooms[roomId]
	cids := make([]com.Uid, 0, len(room))
	for cid := range room {
		cids = append(cids, cid)
	}
	return cids
}

// Stats returns the current room and participant totals.
func (r *Rooms) Stats() (rooms int, participants int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms), len(r.index)
}

// evict removes one connection entry, the caller holds the lock.
// Empty rooms are kept, only Remove drops them.
func (r *Rooms) evict(roomId string, cid com.Uid) {
	delete(r.rooms[roomId], cid)
	delete(r.index, cid)
}
