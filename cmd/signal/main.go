package main

import (
	"context"
	goflag "flag"

	"github.com/livego/signal/pkg/config"
	"github.com/livego/signal/pkg/logger"
	"github.com/livego/signal/pkg/os"
	"github.com/livego/signal/pkg/signal"
	flag "github.com/spf13/pflag"
)

var Version = "?"

func main() {
	conf := config.NewSignalConfig()
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	conf.ParseFlags()

	log := logger.NewConsole(conf.Signal.Debug, conf.Signal.Tag, false)

	log.Info().Msgf("version %s", Version)
	if log.GetLevel() < logger.InfoLevel {
		log.Debug().Msgf("config: %+v", conf)
	}

	s, err := signal.New(conf, log)
	if err != nil {
		log.Fatal().Err(err).Msg("signal server init fail")
	}
	s.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		if err := s.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("service shutdown errors")
		}
	}()
	<-os.ExpectTermination()
	cancel()
}
