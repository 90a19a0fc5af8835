package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/internal/stock"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.FertilizerStock, error)
}

type farmerVerifier interface {
	IsVerified(ctx context.Context, userID uuid.UUID) (bool, error)
}

type verificationChecker interface {
	HasVerification(ctx context.Context, requestID uuid.UUID) (bool, error)
}

type eventFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.DistributionEvent, error)
}

// Service drives the fertilizer request workflow.
type Service interface {
	CreateRequest(ctx context.Context, input CreateRequestInput) (*models.FertilizerRequest, error)
	ApproveRequest(ctx context.Context, input ApproveRequestInput) (*models.FertilizerRequest, error)
	ScheduleRequest(ctx context.Context, input ScheduleRequestInput) (*RequestDetail, error)
	ShipRequest(ctx context.Context, input ShipRequestInput) (*models.FertilizerRequest, error)
	CompleteRequest(ctx context.Context, input CompleteRequestInput) (*models.FertilizerRequest, error)
	RejectRequest(ctx context.Context, input RejectRequestInput) (*models.FertilizerRequest, error)
	CancelRequest(ctx context.Context, input CancelRequestInput) (*models.FertilizerRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*RequestDetail, error)
	ListRequests(ctx context.Context, filter ListFilter) (*RequestPage, error)
	ListSchedules(ctx context.Context, filter ScheduleFilter) (*SchedulePage, error)
}

type service struct {
	repo          Repository
	tx            txRunner
	stocks        stockFinder
	deducter      stock.Deducter
	farmers       farmerVerifier
	verifications verificationChecker
	events        eventFinder
}

// ServiceParams bundles the dependencies required to build a request service.
type ServiceParams struct {
	Repo          Repository
	Tx            txRunner
	Stocks        stockFinder
	Deducter      stock.Deducter
	Farmers       farmerVerifier
	Verifications verificationChecker
	Events        eventFinder
}

// NewService wires the request workflow service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Stocks == nil {
		return nil, fmt.Errorf("stock finder required")
	}
	if params.Deducter == nil {
		return nil, fmt.Errorf("stock deducter required")
	}
	if params.Farmers == nil {
		return nil, fmt.Errorf("farmer verifier required")
	}
	if params.Verifications == nil {
		return nil, fmt.Errorf("verification checker required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event finder required")
	}
	return &service{
		repo:          params.Repo,
		tx:            params.Tx,
		stocks:        params.Stocks,
		deducter:      params.Deducter,
		farmers:       params.Farmers,
		verifications: params.Verifications,
		events:        params.Events,
	}, nil
}

func (s *service) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.FertilizerRequest, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.UserRoleFarmer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only farmers can apply for fertilizer")
	}
	if input.StockID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}
	if input.RequestedQty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested quantity must be positive")
	}

	verified, err := s.farmers.IsVerified(ctx, input.FarmerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check farmer profile")
	}
	if !verified {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "farmer profile not verified")
	}

	if _, err := s.loadStock(ctx, input.StockID); err != nil {
		return nil, err
	}

	request := &models.FertilizerRequest{
		FarmerID:     input.FarmerID,
		StockID:      input.StockID,
		RequestedQty: input.RequestedQty,
		Status:       enums.RequestStatusPending,
		DocumentURL:  input.DocumentURL,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
	}
	return request, nil
}

func (s *service) ApproveRequest(ctx context.Context, input ApproveRequestInput) (*models.FertilizerRequest, error) {
	if err := requireStaff(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.ApprovedQty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approved quantity must be positive")
	}

	var approved *models.FertilizerRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if request.Status != enums.RequestStatusPending {
			return transitionDisallowed(request.Status, enums.RequestStatusVerified)
		}
		if input.ApprovedQty > request.RequestedQty {
			return pkgerrors.New(pkgerrors.CodeValidation, "approved quantity exceeds requested quantity").
				WithDetails(map[string]int{"requested": request.RequestedQty, "approved": input.ApprovedQty})
		}

		stockID := request.StockID
		if input.NewStockID != nil && *input.NewStockID != uuid.Nil {
			stockID = *input.NewStockID
		}
		stk, err := s.loadStock(ctx, stockID)
		if err != nil {
			return err
		}
		if stk.Quantity < input.ApprovedQty {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock on hand below approved quantity").
				WithDetails(map[string]any{"on_hand": stk.Quantity, "approved": input.ApprovedQty})
		}

		updates := map[string]any{
			"approved_qty": input.ApprovedQty,
			"status":       enums.RequestStatusVerified,
		}
		if stockID != request.StockID {
			updates["stock_id"] = stockID
		}
		if err := repo.UpdateFields(ctx, request.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve request")
		}

		qty := input.ApprovedQty
		request.ApprovedQty = &qty
		request.Status = enums.RequestStatusVerified
		request.StockID = stockID
		approved = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func (s *service) ScheduleRequest(ctx context.Context, input ScheduleRequestInput) (*RequestDetail, error) {
	if err := requireStaff(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	hasPlan := input.DeliveryDate != nil && input.Location != nil && strings.TrimSpace(*input.Location) != ""
	hasEvent := input.EventID != nil && *input.EventID != uuid.Nil
	if hasPlan == hasEvent {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provide either delivery date and location or an event link")
	}

	var detail *RequestDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if request.Status != enums.RequestStatusVerified {
			return transitionDisallowed(request.Status, enums.RequestStatusScheduled)
		}

		if hasEvent {
			event, err := s.events.FindByID(ctx, *input.EventID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "distribution event not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load distribution event")
			}
			if event.Status != enums.EventStatusScheduled {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "distribution event already fulfilled")
			}
			if !eventCoversStock(event, request.StockID) {
				return pkgerrors.New(pkgerrors.CodeValidation, "event has no allocation for the requested fertilizer")
			}

			updates := map[string]any{
				"event_id": *input.EventID,
				"status":   enums.RequestStatusScheduled,
			}
			if err := repo.UpdateFields(ctx, request.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link request to event")
			}
			request.EventID = input.EventID
			request.Status = enums.RequestStatusScheduled
			detail = &RequestDetail{Request: *request}
			return nil
		}

		schedule := &models.DistributionSchedule{
			RequestID:    request.ID,
			DeliveryDate: *input.DeliveryDate,
			Location:     strings.TrimSpace(*input.Location),
			Status:       enums.ScheduleStatusScheduled,
		}
		if err := repo.CreateSchedule(ctx, schedule); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create schedule")
		}
		if err := repo.UpdateFields(ctx, request.ID, map[string]any{"status": enums.RequestStatusScheduled}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark request scheduled")
		}
		request.Status = enums.RequestStatusScheduled
		detail = &RequestDetail{Request: *request, Schedule: schedule}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) ShipRequest(ctx context.Context, input ShipRequestInput) (*models.FertilizerRequest, error) {
	if err := requireStaffOrDistributor(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	var shipped *models.FertilizerRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if request.Status != enums.RequestStatusScheduled {
			return transitionDisallowed(request.Status, enums.RequestStatusShipped)
		}
		if request.EventID != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request ships through its distribution event")
		}
		if request.ApprovedQty == nil || *request.ApprovedQty <= 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request has no approved quantity")
		}

		note := fmt.Sprintf("shipment for request %s", request.ID)
		if err := s.deducter.Deduct(ctx, tx, request.StockID, *request.ApprovedQty, input.ActorID, note); err != nil {
			return err
		}

		if err := repo.UpdateFields(ctx, request.ID, map[string]any{"status": enums.RequestStatusShipped}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark request shipped")
		}
		if err := repo.UpdateScheduleStatus(ctx, request.ID, enums.ScheduleStatusShipped); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark schedule shipped")
		}

		request.Status = enums.RequestStatusShipped
		shipped = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shipped, nil
}

func (s *service) CompleteRequest(ctx context.Context, input CompleteRequestInput) (*models.FertilizerRequest, error) {
	if err := requireStaffOrDistributor(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	var completed *models.FertilizerRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if request.Status != enums.RequestStatusShipped {
			return transitionDisallowed(request.Status, enums.RequestStatusCompleted)
		}

		hasVerification, err := s.verifications.HasVerification(ctx, request.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check receipt verification")
		}
		if !hasVerification {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "receipt verification required before completion")
		}

		if err := repo.UpdateFields(ctx, request.ID, map[string]any{"status": enums.RequestStatusCompleted}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark request completed")
		}
		if err := repo.UpdateScheduleStatus(ctx, request.ID, enums.ScheduleStatusCompleted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark schedule completed")
		}

		request.Status = enums.RequestStatusCompleted
		completed = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (s *service) RejectRequest(ctx context.Context, input RejectRequestInput) (*models.FertilizerRequest, error) {
	if err := requireStaff(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}

	var rejected *models.FertilizerRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if request.Status != enums.RequestStatusPending && request.Status != enums.RequestStatusVerified {
			return transitionDisallowed(request.Status, enums.RequestStatusRejected)
		}

		updates := map[string]any{
			"status": enums.RequestStatusRejected,
			"reason": reason,
		}
		if err := repo.UpdateFields(ctx, request.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject request")
		}
		request.Status = enums.RequestStatusRejected
		request.Reason = &reason
		rejected = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func (s *service) CancelRequest(ctx context.Context, input CancelRequestInput) (*models.FertilizerRequest, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	var cancelled *models.FertilizerRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := s.loadRequest(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}

		switch {
		case input.ActorRole.IsStaff():
		case input.ActorRole == enums.UserRoleFarmer:
			if request.FarmerID != input.ActorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "request does not belong to farmer")
			}
		default:
			return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot cancel requests")
		}

		if request.Status != enums.RequestStatusPending && request.Status != enums.RequestStatusVerified {
			return transitionDisallowed(request.Status, enums.RequestStatusCancelled)
		}

		updates := map[string]any{"status": enums.RequestStatusCancelled}
		if input.Reason != nil && strings.TrimSpace(*input.Reason) != "" {
			updates["reason"] = strings.TrimSpace(*input.Reason)
		}
		if err := repo.UpdateFields(ctx, request.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel request")
		}
		request.Status = enums.RequestStatusCancelled
		cancelled = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *service) GetRequest(ctx context.Context, id uuid.UUID) (*RequestDetail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.loadRequest(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	detail := &RequestDetail{Request: *request}

	schedule, err := s.repo.FindScheduleByRequest(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule")
		}
	} else {
		detail.Schedule = schedule
	}
	return detail, nil
}

func (s *service) ListRequests(ctx context.Context, filter ListFilter) (*RequestPage, error) {
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	page := &RequestPage{Requests: requests}
	if len(requests) > limit {
		page.Requests = requests[:limit]
		last := page.Requests[limit-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &cursor
	}
	return page, nil
}

func (s *service) ListSchedules(ctx context.Context, filter ScheduleFilter) (*SchedulePage, error) {
	schedules, err := s.repo.ListSchedules(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list schedules")
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	page := &SchedulePage{Schedules: schedules}
	if len(schedules) > limit {
		page.Schedules = schedules[:limit]
		last := page.Schedules[limit-1].Schedule
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &cursor
	}
	return page, nil
}

func (s *service) loadRequest(ctx context.Context, repo Repository, id uuid.UUID) (*models.FertilizerRequest, error) {
	request, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	return request, nil
}

func (s *service) loadStock(ctx context.Context, id uuid.UUID) (*models.FertilizerStock, error) {
	stk, err := s.stocks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
	}
	return stk, nil
}

func eventCoversStock(event *models.DistributionEvent, stockID uuid.UUID) bool {
	for _, item := range event.Items {
		if item.StockID == stockID {
			return true
		}
	}
	return false
}

func transitionDisallowed(from, to enums.RequestStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "request transition disallowed").
		WithDetails(map[string]string{"from": from.String(), "to": to.String()})
}

func requireStaff(actorID uuid.UUID, role enums.UserRole) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !role.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	return nil
}

func requireStaffOrDistributor(actorID uuid.UUID, role enums.UserRole) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !role.IsStaff() && role != enums.UserRoleDistributor {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff or distributor role required")
	}
	return nil
}
