package broadcast

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/livego/signal/pkg/logger"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// Peer is the pion-backed send-only media peer of a broadcaster.
// It satisfies Transport.
type Peer struct {
	conn *webrtc.PeerConnection
	log  *logger.Logger

	a *webrtc.TrackLocalStaticSample
	v *webrtc.TrackLocalStaticSample
}

var samplePool sync.Pool

// NewPeer creates a peer connection with outbound video and audio
// tracks already attached, so the offer advertises both.
func NewPeer(api *ApiFactory, vCodec, aCodec string, log *logger.Logger) (*Peer, error) {
	conn, err := api.NewPeer()
	if err != nil {
		return nil, err
	}
	p := &Peer{conn: conn, log: log}

	video, err := newTrack("video", "video", vCodec)
	if err != nil {
		return nil, err
	}
	if err := p.addTrack(video); err != nil {
		return nil, err
	}
	p.v = video
	p.log.Debug().Msgf("Added [%s] track", video.Codec().MimeType)

	audio, err := newTrack("audio", "audio", aCodec)
	if err != nil {
		return nil, err
	}
	if err := p.addTrack(audio); err != nil {
		return nil, err
	}
	p.a = audio
	p.log.Debug().Msgf("Added [%s] track", audio.Codec().MimeType)

	conn.OnICEConnectionStateChange(p.handleICEState(func() { p.log.Info().Msg("Connected") }))
	return p, nil
}

func (p *Peer) addTrack(track *webrtc.TrackLocalStaticSample) error {
	sender, err := p.conn.AddTrack(track)
	if err != nil {
		return err
	}
	// Read incoming RTCP packets
	go func() {
		rtcpBuf := make([]byte, 1500)
		for {
			if _, _, rtcpErr := sender.Read(rtcpBuf); rtcpErr != nil {
				return
			}
		}
	}()
	return nil
}

func (p *Peer) Offer() error {
	offer, err := p.conn.CreateOffer(nil)
	if err != nil {
		return err
	}
	p.log.Debug().Msg("Created Offer")
	return p.conn.SetLocalDescription(offer)
}

func (p *Peer) OnIceCandidate(callback func(candidate *string)) {
	p.conn.OnICECandidate(func(ice *webrtc.ICECandidate) {
		// ICE gathering finish condition
		if ice == nil {
			p.log.Debug().Msg("ICE gathering was complete probably")
			callback(nil)
			return
		}
		candidate := ice.ToJSON().Candidate
		p.log.Debug().Str("candidate", candidate).Msg("ICE")
		callback(&candidate)
	})
}

// LocalDescription returns the local SDP after gathering, with every
// found candidate bundled in.
func (p *Peer) LocalDescription() (string, error) {
	desc := p.conn.LocalDescription()
	if desc == nil {
		return "", fmt.Errorf("no local description, offer wasn't made")
	}
	return desc.SDP, nil
}

func (p *Peer) SetAnswer(sdp string) error {
	err := p.conn.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: sdp})
	if err != nil {
		p.log.Error().Err(err).Msg("Set remote description failed")
		return err
	}
	p.log.Debug().Msg("Set Remote Description")
	return nil
}

func (p *Peer) SendAudio(dat []byte, dur int32) {
	if err := p.send(dat, int64(dur), p.a.WriteSample); err != nil {
		p.log.Error().Err(err).Send()
	}
}

func (p *Peer) SendVideo(data []byte, dur int32) {
	if err := p.send(data, int64(dur), p.v.WriteSample); err != nil {
		p.log.Error().Err(err).Send()
	}
}

func (p *Peer) send(data []byte, duration int64, fn func(media.Sample) error) error {
	sample, _ := samplePool.Get().(*media.Sample)
	if sample == nil {
		sample = new(media.Sample)
	}
	sample.Data = data
	sample.Duration = time.Duration(duration)
	if err := fn(*sample); err != nil {
		return err
	}
	samplePool.Put(sample)
	return nil
}

func (p *Peer) Close() {
	if p.conn == nil {
		return
	}
	if p.conn.ConnectionState() < webrtc.PeerConnectionStateDisconnected {
		// ignore this due to DTLS fatal: conn is closed
		_ = p.conn.Close()
	}
	p.log.Debug().Msg("WebRTC stop")
}

func (p *Peer) handleICEState(onConnect func()) func(webrtc.ICEConnectionState) {
	return func(state webrtc.ICEConnectionState) {
		p.log.Debug().Str(".state", state.String()).Msg("ICE")
		switch state {
		case webrtc.ICEConnectionStateChecking:
			// nothing
		case webrtc.ICEConnectionStateConnected:
			onConnect()
		case webrtc.ICEConnectionStateFailed:
			p.log.Error().Msgf("WebRTC connection fail! connection: %v, ice: %v, gathering: %v, signalling: %v",
				p.conn.ConnectionState(), p.conn.ICEConnectionState(), p.conn.ICEGatheringState(),
				p.conn.SignalingState())
			p.Close()
		case webrtc.ICEConnectionStateClosed,
			webrtc.ICEConnectionStateDisconnected:
			p.Close()
		default:
			p.log.Debug().Msg("ICE state is not handled!")
		}
	}
}

func newTrack(id string, label string, codec string) (*webrtc.TrackLocalStaticSample, error) {
	codec = strings.ToLower(codec)
	var mime string
	switch id {
	case "audio":
		switch codec {
		case "opus":
			mime = webrtc.MimeTypeOpus
		}
	case "video":
		switch codec {
		case "h264":
			mime = webrtc.MimeTypeH264
		case "vpx", "vp8":
			mime = webrtc.MimeTypeVP8
		case "vp9":
			mime = webrtc.MimeTypeVP9
		}
	}
	if mime == "" {
		return nil, fmt.Errorf("unsupported codec %s:%s", id, codec)
	}
	return webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: mime}, id, label)
}
