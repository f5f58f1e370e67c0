package controllers

import (
	"net/http"

	"github.com/krishimitra/marketplace-backend/api/responses"
	internalagreements "github.com/krishimitra/marketplace-backend/internal/agreements"
	pkgerrors "github.com/krishimitra/marketplace-backend/pkg/errors"
	"github.com/krishimitra/marketplace-backend/pkg/logger"
)

// AgreementSnapshot returns the agreement view for an accepted deal.
func AgreementSnapshot(svc internalagreements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agreements service unavailable"))
			return
		}

		dealID, err := parseDealID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Snapshot(r.Context(), dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// AgreementRender asks the document pipeline to produce the agreement artifact.
func AgreementRender(svc internalagreements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "agreements service unavailable"))
			return
		}

		dealID, err := parseDealID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.RequestRender(r.Context(), dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, receipt)
	}
}
