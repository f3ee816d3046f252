package config

import (
	flag "github.com/spf13/pflag"
)

type BroadcastConfig struct {
	Broadcast Broadcast
	Srs       Srs
	Webrtc    Webrtc
}

type Broadcast struct {
	Debug bool
	// SignalAddress is the websocket endpoint of the signaling server.
	SignalAddress string
	// Host is the media server host baked into generated stream URLs.
	Host   string
	UserId string
	Name   string
}

var broadcastConfigPath string

func NewBroadcastConfig() (conf BroadcastConfig) {
	if err := LoadConfig(&conf, broadcastConfigPath); err != nil {
		panic(err)
	}
	return
}

func (c *BroadcastConfig) ParseFlags() {
	flag.BoolVarP(&c.Broadcast.Debug, "debug", "d", c.Broadcast.Debug, "Enable debug logs")
	flag.StringVar(&c.Broadcast.SignalAddress, "signal", c.Broadcast.SignalAddress, "Signaling server websocket address")
	flag.StringVar(&c.Broadcast.UserId, "user", c.Broadcast.UserId, "Broadcaster user id")
	flag.StringVar(&c.Broadcast.Name, "name", c.Broadcast.Name, "Broadcaster display name")
	flag.StringVar(&c.Srs.Api, "srs", c.Srs.Api, "SRS API address")
	flag.StringVar(&broadcastConfigPath, "conf", broadcastConfigPath, "Set custom configuration file path")
	flag.Parse()
}
