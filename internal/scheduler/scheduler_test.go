package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewRejectsNonPositiveInterval(t *testing.T) {
	if _, err := New(Options{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestNextTickAligned(t *testing.T) {
	s, err := New(Options{Interval: 15 * time.Minute, AlignToBucket: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	now := time.Date(2024, 5, 1, 10, 7, 30, 0, time.UTC)
	want := time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC)
	if got := s.nextTick(now); !got.Equal(want) {
		t.Fatalf("next tick = %s, want %s", got, want)
	}

	onBoundary := time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC)
	if got := s.nextTick(onBoundary); !got.Equal(onBoundary.Add(15 * time.Minute)) {
		t.Fatalf("boundary tick = %s", got)
	}
	if got := s.bucketStart(now); !got.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("bucket start = %s", got)
	}
}

func TestNextTickUnaligned(t *testing.T) {
	s, _ := New(Options{Interval: time.Minute}, zerolog.Nop())
	now := time.Date(2024, 5, 1, 10, 7, 30, 0, time.UTC)
	if got := s.nextTick(now); !got.Equal(now.Add(time.Minute)) {
		t.Fatalf("next tick = %s", got)
	}
	if got := s.bucketStart(now); !got.Equal(now) {
		t.Fatalf("bucket start = %s", got)
	}
}

func TestRunImmediateAndCancel(t *testing.T) {
	s, _ := New(Options{Interval: time.Hour, Immediate: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context, time.Time) error {
			calls.Add(1)
			cancel()
			return errors.New("tick errors are logged only")
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one immediate tick, got %d", calls.Load())
	}
}
