package main

import (
	"context"
	goflag "flag"

	"github.com/livego/signal/pkg/api"
	"github.com/livego/signal/pkg/broadcast"
	"github.com/livego/signal/pkg/config"
	"github.com/livego/signal/pkg/logger"
	"github.com/livego/signal/pkg/os"
	"github.com/livego/signal/pkg/srs"
	flag "github.com/spf13/pflag"
)

var Version = "?"

func main() {
	conf := config.NewBroadcastConfig()
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	conf.ParseFlags()

	log := logger.NewConsole(conf.Broadcast.Debug, "b", false)

	log.Info().Msgf("version %s", Version)
	if log.GetLevel() < logger.InfoLevel {
		log.Debug().Msgf("config: %+v", conf)
	}

	userId := conf.Broadcast.UserId

	announcer, err := broadcast.NewAnnouncer(conf.Broadcast.SignalAddress, userId, log)
	if err != nil {
		log.Fatal().Err(err).Msg("signaling server connect fail")
	}
	defer announcer.Close()

	apiFactory, err := broadcast.NewApiFactory(conf.Webrtc, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("webrtc init fail")
	}
	peer, err := broadcast.NewPeer(apiFactory, "h264", "opus", log)
	if err != nil {
		log.Fatal().Err(err).Msg("peer init fail")
	}
	defer peer.Close()

	streamUrl := broadcast.StreamURL(conf.Broadcast.Host, userId)
	publisher := srs.NewClient(conf.Srs.Api, conf.Srs.RequestTimeout, log)
	session := broadcast.NewSession(peer, publisher, streamUrl, log,
		broadcast.WithGatherTimeout(conf.Webrtc.GatherTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	info := api.StreamInfo{
		Id:     userId,
		HostId: userId,
		Name:   conf.Broadcast.Name,
	}
	if err := broadcast.Cast(ctx, announcer, session, info); err != nil {
		log.Fatal().Err(err).Msg("broadcast negotiation fail")
	}
	log.Info().Msgf("Broadcasting to %v", streamUrl)

	select {
	case <-os.ExpectTermination():
	case <-announcer.Done():
		log.Warn().Msg("the signaling server dropped the connection")
	}
	announcer.StreamEnded(userId)
}
