package config

import "time"

type Webrtc struct {
	DisableDefaultInterceptors bool
	GatherTimeout              time.Duration
	IceServers                 []IceServer
	IcePorts                   struct {
		Min uint16
		Max uint16
	}
	LogLevel int
}

type IceServer struct {
	Urls       string `json:"urls,omitempty"`
	Username   string `json:"username,omitempty"`
	Credential string `json:"credential,omitempty"`
}

func (w *Webrtc) HasPortRange() bool { return w.IcePorts.Min > 0 && w.IcePorts.Max > 0 }
