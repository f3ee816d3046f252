package httpx

import (
	"context"
	"net/http"

	"github.com/livego/signal/pkg/logger"
)

type Server struct {
	http.Server

	opts Options
	log  *logger.Logger
}

// NewServer creates a new HTTP(S) server on the given address.
// The handler function receives the server so routes can read its
// final address.
func NewServer(address string, handler func(*Server) http.Handler, options ...Option) (*Server, error) {
	opts := DefaultOptions()
	opts.override(options...)

	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}

	server := &Server{
		Server: http.Server{
			Addr:         address,
			IdleTimeout:  opts.IdleTimeout,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
		opts: *opts,
		log:  opts.Logger,
	}
	server.Handler = handler(server)

	if opts.Https && opts.IsAutoHttpsCert() {
		server.TLSConfig = newCertManager(opts.HttpsDomain, opts.TLSCacheDir).TLSConfig()
	}

	if server.Addr == "" {
		server.Addr = ":http"
		if opts.Https {
			server.Addr = ":https"
		}
		opts.Logger.Warn().Msgf("Empty server address has been changed to %v", server.Addr)
	}

	return server, nil
}

func (s *Server) Run() { go s.run() }

func (s *Server) run() {
	protocol := s.GetProtocol()
	s.log.Info().Msgf("Starting %s server on %s", protocol, s.Addr)

	var err error
	if s.opts.Https {
		err = s.ListenAndServeTLS(s.opts.HttpsCert, s.opts.HttpsKey)
	} else {
		err = s.ListenAndServe()
	}
	switch err {
	case http.ErrServerClosed:
		s.log.Debug().Msgf("%s server was closed", protocol)
	default:
		s.log.Error().Err(err).Send()
	}
}

func (s *Server) Shutdown(ctx context.Context) error { return s.Server.Shutdown(ctx) }

func (s *Server) GetProtocol() string {
	if s.opts.Https {
		return "https"
	}
	return "http"
}

func (s *Server) String() string { return s.GetProtocol() + "::" + s.Addr }
