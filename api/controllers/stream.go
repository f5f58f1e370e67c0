package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/krishimitra/marketplace-backend/api/responses"
	internaldeals "github.com/krishimitra/marketplace-backend/internal/deals"
	internalhistory "github.com/krishimitra/marketplace-backend/internal/history"
	"github.com/krishimitra/marketplace-backend/internal/realtime"
	"github.com/krishimitra/marketplace-backend/pkg/config"
	pkgerrors "github.com/krishimitra/marketplace-backend/pkg/errors"
	"github.com/krishimitra/marketplace-backend/pkg/logger"
	"github.com/krishimitra/marketplace-backend/pkg/pagination"
)

// OpenDealsStream pushes the dealer's full open-deal result set over SSE,
// re-queried whenever a deal changes anywhere in the marketplace.
func OpenDealsStream(svc internaldeals.Service, hub *realtime.Hub, cfg config.RealtimeConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal stream unavailable"))
			return
		}

		filters, err := openDealFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{Limit: cfg.SnapshotLimit}
		serveStream(w, r, hub, "open_deals", cfg, logg, func() (any, error) {
			return svc.ListOpenDeals(r.Context(), params, filters)
		})
	}
}

// FarmerDealsStream pushes the authenticated farmer's full deal set over SSE.
func FarmerDealsStream(svc internaldeals.Service, hub *realtime.Hub, cfg config.RealtimeConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deal stream unavailable"))
			return
		}

		farmerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{Limit: cfg.SnapshotLimit}
		serveStream(w, r, hub, "farmer_deals", cfg, logg, func() (any, error) {
			return svc.ListFarmerDeals(r.Context(), farmerID, params)
		})
	}
}

// DealerHistoryStream pushes the dealer's decided-deal history over SSE.
func DealerHistoryStream(svc internalhistory.Service, hub *realtime.Hub, cfg config.RealtimeConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "history stream unavailable"))
			return
		}

		dealerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{Limit: cfg.SnapshotLimit}
		serveStream(w, r, hub, "dealer_history", cfg, logg, func() (any, error) {
			return svc.DealerHistory(r.Context(), dealerID, params)
		})
	}
}

// serveStream runs the SSE loop: an initial snapshot, a fresh snapshot per
// hub tick, and periodic keep-alive comments. fetch is re-run on every tick
// so subscribers always see the complete current result set.
func serveStream(
	w http.ResponseWriter,
	r *http.Request,
	hub *realtime.Hub,
	stream string,
	cfg config.RealtimeConfig,
	logg *logger.Logger,
	fetch func() (any, error),
) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
		return
	}

	sub := hub.Subscribe(stream)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	if logg != nil {
		ctx = logg.WithField(ctx, "stream", stream)
		logg.Info(ctx, "stream.open")
	}

	rc := http.NewResponseController(w)

	writeSnapshot := func() bool {
		result, err := fetch()
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "stream.snapshot", err)
			}
			return false
		}
		payload, err := json.Marshal(result)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "stream.encode", err)
			}
			return false
		}
		if cfg.WriteTimeout > 0 {
			rc.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
		}
		if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !writeSnapshot() {
		return
	}

	keepAlive := time.Duration(cfg.KeepAliveSeconds) * time.Second
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if logg != nil {
				logg.Info(ctx, "stream.closed")
			}
			return
		case <-sub.C:
			if !writeSnapshot() {
				return
			}
		case <-ticker.C:
			if cfg.WriteTimeout > 0 {
				rc.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			}
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
