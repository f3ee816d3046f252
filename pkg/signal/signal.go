package signal

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/livego/signal/pkg/config"
	"github.com/livego/signal/pkg/logger"
	"github.com/livego/signal/pkg/monitoring"
	"github.com/livego/signal/pkg/network/httpx"
	"github.com/livego/signal/pkg/service"
	"github.com/livego/signal/pkg/srs"
)

// Signal is the live-room signaling server: the websocket presence hub
// plus the verbatim proxy in front of the external media server API.
type Signal struct {
	conf     config.SignalConfig
	hub      *Hub
	services service.Group
	started  time.Time
	log      *logger.Logger
}

func New(conf config.SignalConfig, log *logger.Logger) (*Signal, error) {
	s := &Signal{
		conf:     conf,
		hub:      NewHub(log),
		services: service.NewGroup(log),
		started:  time.Now(),
		log:      log,
	}

	proxy, err := srs.NewProxy(conf.Srs.Api, log)
	if err != nil {
		return nil, err
	}

	server, err := httpx.NewServer(
		conf.Signal.Server.GetAddr(),
		func(*httpx.Server) http.Handler {
			h := http.NewServeMux()
			h.HandleFunc("/ws", s.hub.handleConnection)
			h.Handle("/api/v1/", proxy)
			h.HandleFunc("/health", s.health)
			return h
		},
		httpx.WithServerConfig(conf.Signal.Server),
		httpx.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	s.services.Add(server)
	if conf.Signal.Monitoring.IsEnabled() {
		mon, err := monitoring.New(conf.Signal.Monitoring, conf.Signal.Tag, log)
		if err != nil {
			return nil, err
		}
		s.services.Add(mon)
	}
	return s, nil
}

func (s *Signal) Run() { s.services.Start() }

func (s *Signal) Shutdown(ctx context.Context) error { return s.services.Shutdown(ctx) }

func (s *Signal) health(w http.ResponseWriter, _ *http.Request) {
	rooms, participants := s.hub.rooms.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Status       string `json:"status"`
		Uptime       int64  `json:"uptime"`
		Rooms        int    `json:"rooms"`
		Participants int    `json:"participants"`
		Clients      int    `json:"clients"`
	}{
		Status:       "ok",
		Uptime:       int64(time.Since(s.started).Seconds()),
		Rooms:        rooms,
		Participants: participants,
		Clients:      s.hub.clients.Len(),
	})
}
