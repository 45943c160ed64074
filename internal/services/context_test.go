package services_test

import (
	"context"
	"testing"

	"podopt/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithEpisodeID(ctx, 42)
	ctx = services.WithProductionID(ctx, "prod-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.EpisodeIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected episode id: %v %v", id, ok)
	}
	if pid, ok := services.ProductionIDFromContext(ctx); !ok || pid != "prod-1" {
		t.Fatalf("unexpected production id: %v %v", pid, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithProductionID(ctx, "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.ProductionIDFromContext(ctx); ok {
		t.Fatal("expected no production id")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id")
	}
	if _, ok := services.EpisodeIDFromContext(ctx); ok {
		t.Fatal("expected no episode id")
	}
}
