package broadcast

import (
	"fmt"

	"github.com/gofrs/uuid"
)

// StreamURL mints a unique ingest URL for one broadcast of the user,
// e.g. webrtc://live.example.com/live/u1_0f9e....
// A fresh key per broadcast keeps old playback links from resurrecting
// on a restream.
func StreamURL(host string, userId string) string {
	return fmt.Sprintf("webrtc://%s/live/%s_%s", host, userId, uuid.Must(uuid.NewV4()))
}
