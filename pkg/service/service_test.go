package service

import (
	"context"
	"errors"
	"testing"

	"github.com/livego/signal/pkg/logger"
)

type fakeService struct {
	name string
	seq  *[]string
	err  error
}

func (f *fakeService) Run() { *f.seq = append(*f.seq, f.name+":run") }

func (f *fakeService) Shutdown(context.Context) error {
	*f.seq = append(*f.seq, f.name+":stop")
	return f.err
}

func (f *fakeService) String() string { return f.name }

func TestGroup(t *testing.T) {
	t.Run("StartOrder", testGroupStartOrder)
	t.Run("ShutdownPastFailures", testGroupShutdownPastFailures)
	t.Run("IgnoreCanceled", testGroupIgnoreCanceled)
}

func testGroupStartOrder(t *testing.T) {
	t.Parallel()
	var seq []string
	g := NewGroup(logger.Default(), &fakeService{name: "a", seq: &seq}, &fakeService{name: "b", seq: &seq})
	g.Start()
	if len(seq) != 2 || seq[0] != "a:run" || seq[1] != "b:run" {
		t.Errorf("unexpected start order: %v", seq)
	}
}

// A failing service must not keep the rest of the group from stopping.
func testGroupShutdownPastFailures(t *testing.T) {
	t.Parallel()
	var seq []string
	bad := errors.New("port stuck")
	g := NewGroup(logger.Default())
	g.Add(&fakeService{name: "a", seq: &seq, err: bad}, &fakeService{name: "b", seq: &seq})

	err := g.Shutdown(context.Background())
	if !errors.Is(err, bad) {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
	if len(seq) != 2 || seq[1] != "b:stop" {
		t.Errorf("the group should keep stopping past a failure: %v", seq)
	}
}

func testGroupIgnoreCanceled(t *testing.T) {
	t.Parallel()
	var seq []string
	g := NewGroup(logger.Default(), &fakeService{name: "a", seq: &seq, err: context.Canceled})
	if err := g.Shutdown(context.Background()); err != nil {
		t.Errorf("a canceled context is not a shutdown failure: %v", err)
	}
}
