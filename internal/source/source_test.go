package source

import (
	"context"
	"reflect"
	"testing"

	"NewsBrief/internal/domain"
)

type stubConnector struct{ name string }

func (s stubConnector) Name() string { return s.name }

func (s stubConnector) Search(context.Context, Request) ([]domain.FetchTarget, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubConnector{name: "patch-news"})
	reg.Register(stubConnector{name: "newsapi"})
	reg.RegisterAs("local-rss", stubConnector{name: "rss"})

	if _, err := reg.Resolve("newsapi"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := reg.Resolve("missing"); err == nil {
		t.Fatalf("expected error for unknown connector")
	}
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"local-rss", "newsapi", "patch-news"}) {
		t.Fatalf("unexpected names %v", got)
	}
}

func TestRequestOption(t *testing.T) {
	t.Parallel()

	req := Request{Options: map[string]string{"a": "1", "b": ""}}
	if req.Option("a", "x") != "1" || req.Option("b", "x") != "x" || req.Option("c", "y") != "y" {
		t.Fatalf("unexpected option resolution")
	}
}
