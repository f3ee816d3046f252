// Package api defines the signaling wire protocol.
//
// Each message is a JSON-encoded "packet" of the following structure:
//
//	t - (required) one of the predefined event names;
//	p - (optional) event payload with arbitrary data.
//
// Packets differentiate by their event names with which it is possible
// to unwrap the payload into distinct request/notification structures.
//
// Example:
//
//	{"t":"join:stream","p":{"streamId":"r1","user":{"id":"u1","name":"Ann"}}}
package api

import (
	"github.com/goccy/go-json"
)

// PT is a packet event name.
type PT string

// Client to server events.
const (
	JoinStream    PT = "join:stream"
	LeaveStream   PT = "leave:stream"
	StreamStarted PT = "stream:started"
	StreamEnded   PT = "stream:ended"
)

// Server to client events.
// StreamStarted and StreamEnded are echoed back process-wide as well.
const (
	UserJoined        PT = "user:joined"
	UserLeft          PT = "user:left"
	UserStatus        PT = "user:status"
	OnlineUsersUpdate PT = "onlineUsersUpdate"
)

type In struct {
	T       PT              `json:"t"`
	Payload json.RawMessage `json:"p,omitempty"` // raw for 2-pass unmarshal
}

type Out struct {
	T       PT  `json:"t"`
	Payload any `json:"p,omitempty"`
}

type User struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type (
	JoinStreamRequest struct {
		StreamId string `json:"streamId"`
		User     User   `json:"user"`
	}
	LeaveStreamRequest struct {
		StreamId string `json:"streamId"`
		UserId   string `json:"userId"`
	}
	StreamEndedRequest struct {
		StreamId string `json:"streamId"`
	}
)

// StreamInfo is the stream announcement payload, re-broadcast verbatim
// to every connected client on stream start.
type StreamInfo struct {
	Id          string `json:"id"`
	HostId      string `json:"hostId"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	IsPrivate   bool   `json:"isPrivate"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

type (
	UserLeftNotice struct {
		UserId string `json:"userId"`
	}
	UserStatusNotice struct {
		UserId string `json:"userId"`
		Status Status `json:"status"`
	}
	OnlineUsersNotice struct {
		RoomId string `json:"roomId"`
	}
)

func Unwrap[T any](data []byte) *T {
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil
	}
	return out
}
