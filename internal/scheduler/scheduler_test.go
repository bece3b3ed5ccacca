package scheduler_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/alokgarg003/new-job-Apply/internal/scheduler"
)

func TestStartFiresImmediateRun(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := scheduler.New(1, func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("immediate run did not fire")
	}
}

func TestStopWaitsForShutdown(t *testing.T) {
	s := scheduler.New(1, func(context.Context) {}, log.New(io.Discard, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
