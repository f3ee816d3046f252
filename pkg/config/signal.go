package config

import (
	"time"

	flag "github.com/spf13/pflag"
)

type SignalConfig struct {
	Signal Signal
	Srs    Srs
	Webrtc Webrtc
}

type Signal struct {
	Debug      bool
	Tag        string
	Server     Server
	Monitoring Monitoring
}

type Server struct {
	Address string
	Https   bool
	Tls     struct {
		Address   string
		Domain    string
		HttpsCert string
		HttpsKey  string
		// CacheDir stores autocert-issued certificates across restarts.
		CacheDir string
	}
}

type Monitoring struct {
	Port             int
	URLPrefix        string
	MetricEnabled    bool
	ProfilingEnabled bool
}

// Srs points to the external media server API.
type Srs struct {
	Api            string
	RequestTimeout time.Duration
}

func (m Monitoring) IsEnabled() bool { return m.MetricEnabled || m.ProfilingEnabled }

// GetAddr returns the address of the signaling server
// considering TLS configuration.
func (s Server) GetAddr() string {
	if s.Https {
		return s.Tls.Address
	}
	return s.Address
}

// allows custom config path
var signalConfigPath string

func NewSignalConfig() (conf SignalConfig) {
	if err := LoadConfig(&conf, signalConfigPath); err != nil {
		panic(err)
	}
	return
}

// ParseFlags updates config values from passed runtime flags.
func (c *SignalConfig) ParseFlags() {
	flag.BoolVarP(&c.Signal.Debug, "debug", "d", c.Signal.Debug, "Enable debug logs")
	flag.StringVar(&c.Signal.Server.Address, "address", c.Signal.Server.Address, "HTTP server address")
	flag.IntVar(&c.Signal.Monitoring.Port, "monitoring.port", c.Signal.Monitoring.Port, "Monitoring server port")
	flag.StringVar(&c.Srs.Api, "srs", c.Srs.Api, "SRS API address")
	flag.StringVar(&signalConfigPath, "conf", signalConfigPath, "Set custom configuration file path")
	flag.Parse()
}
