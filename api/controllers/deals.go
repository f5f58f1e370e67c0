package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/krishimitra/marketplace-backend/api/middleware"
	"github.com/krishimitra/marketplace-backend/api/responses"
	"github.com/krishimitra/marketplace-backend/api/validators"
	internaldeals "github.com/krishimitra/marketplace-backend/internal/deals"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/krishimitra/marketplace-backend/pkg/errors"
	"github.com/krishimitra/marketplace-backend/pkg/logger"
	"github.com/krishimitra/marketplace-backend/pkg/metrics"
	"github.com/krishimitra/marketplace-backend/pkg/pagination"
)

// CreateDealRequest is the farmer-facing payload for listing a new crop deal.
type CreateDealRequest struct {
	Location      string `json:"location" validate:"required"`
	Crop          string `json:"crop" validate:"required"`
	Quantity      string `json:"quantity" validate:"required"`
	AskPrice      string `json:"askPrice" validate:"required"`
	HarvestDate   string `json:"harvestDate" validate:"required"`
	TransportDate string `json:"transportDate" validate:"required"`
}

// DecisionRequest carries the dealer's accept-or-decline verdict.
type DecisionRequest struct {
	Decision string `json:"decision" validate:"required"`
}

// DealCreate lists a new deal owned by the authenticated farmer.
func DealCreate(svc internaldeals.Service, m *metrics.DealMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deals service unavailable"))
			return
		}

		farmerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body CreateDealRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.CreateDeal(r.Context(), internaldeals.CreateDealInput{
			FarmerID:      farmerID,
			FarmerName:    middleware.DisplayNameFromContext(r.Context()),
			Location:      body.Location,
			Crop:          body.Crop,
			Quantity:      body.Quantity,
			AskPrice:      body.AskPrice,
			HarvestDate:   body.HarvestDate,
			TransportDate: body.TransportDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncCreated()
		responses.WriteSuccessStatus(w, http.StatusCreated, deal)
	}
}

// OpenDeals returns the dealer-facing page of open deals.
func OpenDeals(svc internaldeals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deals service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := openDealFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOpenDeals(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// DealDetail returns a single deal by id.
func DealDetail(svc internaldeals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deals service unavailable"))
			return
		}

		dealID, err := parseDealID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deal, err := svc.GetDeal(r.Context(), dealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deal)
	}
}

// DealDecision records the dealer's accept or decline verdict on an open deal.
func DealDecision(svc internaldeals.Service, m *metrics.DealMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deals service unavailable"))
			return
		}

		dealerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealID, err := parseDealID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body DecisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := enums.ParseDealDecision(strings.TrimSpace(body.Decision))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision"))
			return
		}

		deal, err := svc.Decide(r.Context(), internaldeals.DecisionInput{
			DealID:     dealID,
			Decision:   decision,
			DealerID:   dealerID,
			DealerName: middleware.DisplayNameFromContext(r.Context()),
		})
		if err != nil {
			m.IncDecision(string(decision), decisionOutcome(err))
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncDecision(string(decision), "ok")
		responses.WriteSuccess(w, deal)
	}
}

// FarmerDeals returns the authenticated farmer's own deal page.
func FarmerDeals(svc internaldeals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deals service unavailable"))
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

		list, err := svc.ListFarmerDeals(r.Context(), farmerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return id, nil
}

func parseDealID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "dealId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deal id")
	}
	return id, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func openDealFilters(r *http.Request) (internaldeals.OpenDealFilters, error) {
	filters := internaldeals.OpenDealFilters{Order: internaldeals.ListOrderDesc}

	if raw := strings.TrimSpace(r.URL.Query().Get("order")); raw != "" {
		switch internaldeals.ListOrder(raw) {
		case internaldeals.ListOrderAsc, internaldeals.ListOrderDesc:
			filters.Order = internaldeals.ListOrder(raw)
		default:
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "order must be asc or desc")
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseDealStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}

	return filters, nil
}

func decisionOutcome(err error) string {
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
		return "conflict"
	}
	return "error"
}
