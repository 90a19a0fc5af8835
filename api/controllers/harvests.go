package controllers

import (
	"net/http"

	"github.com/wicaksonohadi/sipupuk-backend/api/responses"
	"github.com/wicaksonohadi/sipupuk-backend/api/validators"
	farmersvc "github.com/wicaksonohadi/sipupuk-backend/internal/farmers"
	harvestsvc "github.com/wicaksonohadi/sipupuk-backend/internal/harvests"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/logger"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

// ReportHarvest files a harvest report for the calling farmer.
func ReportHarvest(svc harvestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "harvest service unavailable"))
			return
		}

		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body harvestsvc.ReportInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.FarmerID = act.ID

		record, err := svc.Report(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// FarmerListHarvests lists the caller's own harvest reports.
func FarmerListHarvests(svc harvestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "harvest service unavailable"))
			return
		}

		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := harvestListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.FarmerID = &act.ID

		page, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func GetHarvest(svc harvestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "harvest service unavailable"))
			return
		}

		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		harvestID, err := parseUUIDParam(r, "harvestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), harvestID, act.ID, act.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// AdminListHarvests lists harvest reports across farmers for review.
func AdminListHarvests(svc harvestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "harvest service unavailable"))
			return
		}

		filter, err := harvestListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := queryString(r, "farmer_id"); raw != nil {
			farmerID, parseErr := parseQueryUUID(*raw, "farmer_id")
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			filter.FarmerID = &farmerID
		}

		page, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

// ReviewHarvest approves or rejects a reported harvest.
func ReviewHarvest(svc farmersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "farmer service unavailable"))
			return
		}

		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		harvestID, err := parseUUIDParam(r, "harvestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.ReviewHarvest(r.Context(), farmersvc.ReviewHarvestInput{
			HarvestID: harvestID,
			Approve:   body.Approve,
			ActorID:   act.ID,
			ActorRole: act.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

func harvestListFilter(r *http.Request) (harvestsvc.ListFilter, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return harvestsvc.ListFilter{}, err
	}

	verified, err := queryBool(r, "verified")
	if err != nil {
		return harvestsvc.ListFilter{}, err
	}

	return harvestsvc.ListFilter{
		Verified: verified,
		Limit:    limit,
		Cursor:   queryString(r, "cursor"),
	}, nil
}
