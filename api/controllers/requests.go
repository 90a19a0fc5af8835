package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/wicaksonohadi/sipupuk-backend/api/responses"
	"github.com/wicaksonohadi/sipupuk-backend/api/validators"
	requestsvc "github.com/wicaksonohadi/sipupuk-backend/internal/requests"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/logger"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

// FarmerCreateRequest files a fertilizer application for the calling farmer.
func FarmerCreateRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body requestsvc.CreateRequestInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.FarmerID = act.ID
		body.ActorRole = act.Role

		request, err := svc.CreateRequest(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// FarmerListRequests lists the caller's own requests.
func FarmerListRequests(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := requestListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.FarmerID = &act.ID

		page, err := svc.ListRequests(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// GetRequest returns one request with its delivery plan. Farmers can only
// read their own.
func GetRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := parseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetRequest(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !act.Role.IsStaff() && act.Role != enums.UserRoleDistributor && detail.Request.FarmerID != act.ID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "request belongs to another farmer"))
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// FarmerCancelRequest withdraws a request before it is scheduled.
func FarmerCancelRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := parseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body requestsvc.CancelRequestInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.RequestID = requestID
		body.ActorID = act.ID
		body.ActorRole = act.Role

		request, err := svc.CancelRequest(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}

// AdminListRequests lists requests across all farmers with optional filters.
func AdminListRequests(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		filter, err := requestListFilter(r)
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
		if raw := queryString(r, "stock_id"); raw != nil {
			stockID, parseErr := parseQueryUUID(*raw, "stock_id")
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			filter.StockID = &stockID
		}

		page, err := svc.ListRequests(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// ApproveRequest verifies a pending request, optionally switching stock type.
func ApproveRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return requestTransition(svc, logg, func(r *http.Request, svc requestsvc.Service, act actor, requestID uuid.UUID) (any, error) {
		var body requestsvc.ApproveRequestInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		body.RequestID = requestID
		body.ActorID = act.ID
		body.ActorRole = act.Role
		return svc.ApproveRequest(r.Context(), body)
	})
}

// RejectRequest declines a request with a mandatory reason.
func RejectRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return requestTransition(svc, logg, func(r *http.Request, svc requestsvc.Service, act actor, requestID uuid.UUID) (any, error) {
		var body requestsvc.RejectRequestInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		body.RequestID = requestID
		body.ActorID = act.ID
		body.ActorRole = act.Role
		return svc.RejectRequest(r.Context(), body)
	})
}

// ScheduleRequest attaches a delivery plan or a distribution event link.
func ScheduleRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return requestTransition(svc, logg, func(r *http.Request, svc requestsvc.Service, act actor, requestID uuid.UUID) (any, error) {
		var body requestsvc.ScheduleRequestInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		body.RequestID = requestID
		body.ActorID = act.ID
		body.ActorRole = act.Role
		return svc.ScheduleRequest(r.Context(), body)
	})
}

// CompleteRequest closes a shipped request once its receipt is verified.
func CompleteRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return requestTransition(svc, logg, func(r *http.Request, svc requestsvc.Service, act actor, requestID uuid.UUID) (any, error) {
		return svc.CompleteRequest(r.Context(), requestsvc.CompleteRequestInput{
			RequestID: requestID,
			ActorID:   act.ID,
			ActorRole: act.Role,
		})
	})
}

type transitionFunc func(r *http.Request, svc requestsvc.Service, act actor, requestID uuid.UUID) (any, error)

func requestTransition(svc requestsvc.Service, logg *logger.Logger, fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := parseUUIDParam(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := fn(r, svc, act, requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func requestListFilter(r *http.Request) (requestsvc.ListFilter, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return requestsvc.ListFilter{}, err
	}

	filter := requestsvc.ListFilter{Limit: limit}
	if cursor := queryString(r, "cursor"); cursor != nil {
		filter.Cursor = *cursor
	}
	if raw := queryString(r, "status"); raw != nil {
		status, parseErr := enums.ParseRequestStatus(*raw)
		if parseErr != nil {
			return requestsvc.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter")
		}
		filter.Status = &status
	}
	return filter, nil
}
