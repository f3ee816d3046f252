// Package service holds the lifecycle glue for the long-running parts
// of the app.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/livego/signal/pkg/logger"
)

// Service is a long-running part of the app with a managed lifecycle.
// Run must not block; Shutdown must be safe to call once after Run.
type Service interface {
	Run()
	Shutdown(ctx context.Context) error
}

// Group starts and stops a set of services as one unit, in the order
// they were added.
type Group struct {
	log  *logger.Logger
	list []Service
}

func NewGroup(log *logger.Logger, services ...Service) Group {
	return Group{log: log, list: services}
}

func (g *Group) Add(services ...Service) { g.list = append(g.list, services...) }

func (g *Group) Start() {
	for _, s := range g.list {
		g.log.Debug().Msgf("Starting [%v]", s)
		s.Run()
	}
}

// Shutdown stops every service in the group, keeps going past failures
// and returns them joined.
func (g *Group) Shutdown(ctx context.Context) error {
	var errs []error
	for _, s := range g.list {
		if err := s.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			g.log.Error().Err(err).Msgf("failed to stop [%v]", s)
			errs = append(errs, fmt.Errorf("stop [%v]: %w", s, err))
		}
	}
	return errors.Join(errs...)
}
