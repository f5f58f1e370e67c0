package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/krishimitra/marketplace-backend/internal/deals"
	"github.com/krishimitra/marketplace-backend/internal/realtime"
	"github.com/krishimitra/marketplace-backend/pkg/config"
	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/metrics"
	"github.com/krishimitra/marketplace-backend/pkg/pagination"
)

func TestOpenDealsStreamWritesSnapshot(t *testing.T) {
	hub := realtime.NewHub(metrics.NewDealMetrics(nil), nil)
	svc := &stubControllerDealsService{
		listOpen: func(ctx context.Context, params pagination.Params, filters deals.OpenDealFilters) (*deals.DealList, error) {
			if params.Limit != 50 {
				t.Fatalf("unexpected snapshot limit %d", params.Limit)
			}
			return &deals.DealList{Deals: []models.Deal{{Crop: "Rice"}}}, nil
		},
	}

	cfg := config.RealtimeConfig{SnapshotLimit: 50, KeepAliveSeconds: 25}
	handler := OpenDealsStream(svc, hub, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dealer/deals/stream", nil).WithContext(ctx)
	resp := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(resp, req)
		close(done)
	}()

	// Give the handler time to write the initial snapshot, then tear down.
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream handler did not exit after context cancel")
	}

	body := resp.Body.String()
	if !strings.Contains(body, "event: snapshot") {
		t.Fatalf("missing snapshot event in %q", body)
	}
	if !strings.Contains(body, "Rice") {
		t.Fatalf("snapshot payload missing deal data: %q", body)
	}
	if got := resp.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("subscription leaked: %d", hub.SubscriberCount())
	}
}

func TestOpenDealsStreamRequeriesOnTick(t *testing.T) {
	hub := realtime.NewHub(metrics.NewDealMetrics(nil), nil)
	calls := make(chan struct{}, 8)
	svc := &stubControllerDealsService{
		listOpen: func(ctx context.Context, params pagination.Params, filters deals.OpenDealFilters) (*deals.DealList, error) {
			calls <- struct{}{}
			return &deals.DealList{}, nil
		},
	}

	cfg := config.RealtimeConfig{SnapshotLimit: 10, KeepAliveSeconds: 60}
	handler := OpenDealsStream(svc, hub, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dealer/deals/stream", nil).WithContext(ctx)
	resp := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(resp, req)
		close(done)
	}()

	// Initial snapshot.
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("initial snapshot never fetched")
	}

	// Wait for the subscription to register before notifying.
	deadline := time.Now().Add(time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Notify()
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("snapshot not re-fetched after notify")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream handler did not exit")
	}
}
