package controllers

import (
	"net/http"

	"github.com/krishimitra/marketplace-backend/api/responses"
	internalhistory "github.com/krishimitra/marketplace-backend/internal/history"
	pkgerrors "github.com/krishimitra/marketplace-backend/pkg/errors"
	"github.com/krishimitra/marketplace-backend/pkg/logger"
)

// DealerHistory returns the authenticated dealer's decided-deal page with
// farmer names resolved against live profiles.
func DealerHistory(svc internalhistory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "history service unavailable"))
			return
		}

		dealerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.DealerHistory(r.Context(), dealerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// FarmerHistory returns the authenticated farmer's deal page, open and decided alike.
func FarmerHistory(svc internalhistory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "history service unavailable"))
			return
		}

		farmerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.FarmerHistory(r.Context(), farmerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
