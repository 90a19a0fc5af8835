package controllers

import (
	"net/http"

	"github.com/wicaksonohadi/sipupuk-backend/api/responses"
	"github.com/wicaksonohadi/sipupuk-backend/api/validators"
	farmersvc "github.com/wicaksonohadi/sipupuk-backend/internal/farmers"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/logger"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

// GetMyProfile returns the calling farmer's profile.
func GetMyProfile(svc farmersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		profile, err := svc.GetProfile(r.Context(), act.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// UpsertMyProfile creates or updates the calling farmer's profile. Identity
// changes send it back through admin review.
func UpsertMyProfile(svc farmersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body farmersvc.UpsertProfileInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.UserID = act.ID

		profile, err := svc.UpsertProfile(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// AdminListFarmers lists farmer profiles for the review queue.
func AdminListFarmers(svc farmersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "farmer service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		verified, err := queryBool(r, "verified")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProfiles(r.Context(), farmersvc.ListFilter{
			Verified: verified,
			Limit:    limit,
			Cursor:   queryString(r, "cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// AdminGetFarmer returns one farmer profile by user id.
func AdminGetFarmer(svc farmersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "farmer service unavailable"))
			return
		}

		userID, err := parseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetProfile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// ReviewFarmer approves or rejects a pending farmer profile.
func ReviewFarmer(svc farmersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		userID, err := parseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.ReviewProfile(r.Context(), farmersvc.ReviewProfileInput{
			UserID:    userID,
			Approve:   body.Approve,
			ActorID:   act.ID,
			ActorRole: act.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}
