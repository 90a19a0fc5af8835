package events

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

// Service manages batch distribution events.
type Service interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.DistributionEvent, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.DistributionEvent, error)
	ListEvents(ctx context.Context, filter ListFilter) (*EventPage, error)
	ListRecipients(ctx context.Context, eventID uuid.UUID) ([]models.FertilizerRequest, error)
	Fulfill(ctx context.Context, input FulfillEventInput) (*FulfillResult, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	stocks   stockFinder
	deducter stock.Deducter
}

// NewService wires an events service with the provided dependencies.
func NewService(repo Repository, tx txRunner, stocks stockFinder, deducter stock.Deducter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("events repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stocks == nil {
		return nil, fmt.Errorf("stock finder required")
	}
	if deducter == nil {
		return nil, fmt.Errorf("stock deducter required")
	}
	return &service{repo: repo, tx: tx, stocks: stocks, deducter: deducter}, nil
}

func (s *service) CreateEvent(ctx context.Context, input CreateEventInput) (*models.DistributionEvent, error) {
	if err := requireStaff(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event name required")
	}
	location := strings.TrimSpace(input.Location)
	if location == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event location required")
	}
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event date required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one allocation required")
	}

	seen := map[uuid.UUID]bool{}
	items := make([]models.EventItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.StockID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "allocation stock id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "allocation quantity must be positive")
		}
		if seen[item.StockID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate allocation for fertilizer type")
		}
		seen[item.StockID] = true

		stk, err := s.stocks.FindByID(ctx, item.StockID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
		}
		items = append(items, models.EventItem{
			StockID:  item.StockID,
			Quantity: item.Quantity,
			Unit:     stk.Unit,
		})
	}

	event := &models.DistributionEvent{
		Name:     name,
		Date:     input.Date,
		Location: location,
		Status:   enums.EventStatusScheduled,
		Items:    items,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
	}
	return event, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*models.DistributionEvent, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	return s.loadEvent(ctx, s.repo, id)
}

func (s *service) ListEvents(ctx context.Context, filter ListFilter) (*EventPage, error) {
	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	page := &EventPage{Events: events}
	if len(events) > limit {
		page.Events = events[:limit]
		last := page.Events[limit-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &cursor
	}
	return page, nil
}

func (s *service) ListRecipients(ctx context.Context, eventID uuid.UUID) ([]models.FertilizerRequest, error) {
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	if _, err := s.loadEvent(ctx, s.repo, eventID); err != nil {
		return nil, err
	}
	requests, err := s.repo.ListLinkedRequests(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list event recipients")
	}
	return requests, nil
}

// Fulfill deducts each allocation in full and ships linked requests in
// creation order while their approved quantity fits the remaining budget.
func (s *service) Fulfill(ctx context.Context, input FulfillEventInput) (*FulfillResult, error) {
	if err := requireStaffOrDistributor(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	if input.EventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}

	var result *FulfillResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		event, err := s.loadEvent(ctx, repo, input.EventID)
		if err != nil {
			return err
		}
		if event.Status != enums.EventStatusScheduled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "event already fulfilled")
		}

		remaining := map[uuid.UUID]int{}
		deducted := 0
		for _, item := range event.Items {
			note := fmt.Sprintf("distribution event %s", event.Name)
			if err := s.deducter.Deduct(ctx, tx, item.StockID, item.Quantity, input.ActorID, note); err != nil {
				return err
			}
			remaining[item.StockID] += item.Quantity
			deducted += item.Quantity
		}

		requests, err := repo.ListScheduledRequests(ctx, event.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list event requests")
		}

		result = &FulfillResult{
			EventID:          event.ID,
			ShippedRequests:  []uuid.UUID{},
			SkippedRequests:  []uuid.UUID{},
			DeductedQuantity: deducted,
		}
		for _, request := range requests {
			if request.ApprovedQty == nil || *request.ApprovedQty <= 0 {
				result.SkippedRequests = append(result.SkippedRequests, request.ID)
				continue
			}
			qty := *request.ApprovedQty
			if remaining[request.StockID] < qty {
				result.SkippedRequests = append(result.SkippedRequests, request.ID)
				continue
			}
			if err := repo.MarkRequestShipped(ctx, request.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark request shipped")
			}
			remaining[request.StockID] -= qty
			result.ShippedRequests = append(result.ShippedRequests, request.ID)
		}

		if err := repo.UpdateStatus(ctx, event.ID, enums.EventStatusCompleted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark event completed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) loadEvent(ctx context.Context, repo Repository, id uuid.UUID) (*models.DistributionEvent, error) {
	event, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	return event, nil
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
