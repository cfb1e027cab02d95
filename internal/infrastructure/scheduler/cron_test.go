package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestNextUsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("EST", -5*3600)
	s := NewCronScheduler("0 6 * * *", loc)

	from := time.Date(2025, time.November, 8, 12, 0, 0, 0, time.UTC) // 07:00 EST
	next := s.Next(from)
	want := time.Date(2025, time.November, 9, 6, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("next = %s, want %s", next, want)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := Validate("*/5 * * * *"); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
	if err := Validate("every morning"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("nope", nil)
	if err := s.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("expected schedule error")
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("@every 1h", time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if err := s.Start(context.Background(), nil); err != nil {
		t.Fatalf("nil job must be ignored: %v", err)
	}
}
