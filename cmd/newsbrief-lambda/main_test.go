package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"NewsBrief/internal/app"
	"NewsBrief/internal/domain"
)

var discard = slog.New(slog.DiscardHandler)

type stubRunner struct {
	brief  domain.Brief
	err    error
	params app.QueryParams
}

func (s *stubRunner) Run(_ context.Context, params app.QueryParams) (domain.Brief, error) {
	s.params = params
	return s.brief, s.err
}

func TestHandle(t *testing.T) {
	runner := &stubRunner{brief: domain.Brief{RunID: "r1", Editorial: domain.Editorial{Title: "T", Body: "B."}}}

	res, err := handle(context.Background(), runner, Event{Topic: "music", State: "NY", City: "Brooklyn", Days: 2}, discard)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.StatusCode != 200 || res.Brief == nil || res.Brief.RunID != "r1" {
		t.Fatalf("unexpected response %+v", res)
	}
	if runner.params.Topic != "music" || runner.params.City != "Brooklyn" || runner.params.Days != 2 {
		t.Fatalf("event not forwarded: %+v", runner.params)
	}
}

func TestHandleNoContentAndError(t *testing.T) {
	res, err := handle(context.Background(), &stubRunner{brief: domain.Brief{NoContent: true}}, Event{}, discard)
	if err != nil || res.Message != "no recent content" || res.Brief.Text != domain.NoContentText {
		t.Fatalf("unexpected no-content response %+v (%v)", res, err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil)).With("component", "lambda")
	res, err = handle(context.Background(), &stubRunner{err: errors.New("model down")}, Event{}, logger)
	if err == nil || res.StatusCode != 500 {
		t.Fatalf("expected failure response, got %+v", res)
	}
	if !strings.Contains(buf.String(), "component=lambda") {
		t.Fatalf("failure must be logged through the injected logger: %q", buf.String())
	}
}
