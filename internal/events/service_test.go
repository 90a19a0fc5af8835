package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	events   map[uuid.UUID]*models.DistributionEvent
	requests []*models.FertilizerRequest
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{events: map[uuid.UUID]*models.DistributionEvent{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, event *models.DistributionEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.DistributionEvent, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeRepository) List(ctx context.Context, filter ListFilter) ([]models.DistributionEvent, error) {
	out := []models.DistributionEvent{}
	for _, event := range f.events {
		if filter.Status != nil && event.Status != *filter.Status {
			continue
		}
		out = append(out, *event)
	}
	return out, nil
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EventStatus) error {
	if event, ok := f.events[id]; ok {
		event.Status = status
	}
	return nil
}

func (f *fakeRepository) ListScheduledRequests(ctx context.Context, eventID uuid.UUID) ([]models.FertilizerRequest, error) {
	out := []models.FertilizerRequest{}
	for _, request := range f.requests {
		if request.EventID != nil && *request.EventID == eventID && request.Status == enums.RequestStatusScheduled {
			out = append(out, *request)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListLinkedRequests(ctx context.Context, eventID uuid.UUID) ([]models.FertilizerRequest, error) {
	out := []models.FertilizerRequest{}
	for _, request := range f.requests {
		if request.EventID != nil && *request.EventID == eventID {
			out = append(out, *request)
		}
	}
	return out, nil
}

func (f *fakeRepository) MarkRequestShipped(ctx context.Context, requestID uuid.UUID) error {
	for _, request := range f.requests {
		if request.ID == requestID {
			request.Status = enums.RequestStatusShipped
		}
	}
	return nil
}

type fakeStockFinder struct {
	stocks map[uuid.UUID]*models.FertilizerStock
}

func (f *fakeStockFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.FertilizerStock, error) {
	stock, ok := f.stocks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *stock
	return &copied, nil
}

type fakeDeducter struct {
	stocks map[uuid.UUID]*models.FertilizerStock
}

func (f *fakeDeducter) Deduct(ctx context.Context, tx *gorm.DB, stockID uuid.UUID, qty int, actorID uuid.UUID, note string) error {
	stock, ok := f.stocks[stockID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock not found")
	}
	if stock.Quantity < qty {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock on hand below requested deduction")
	}
	stock.Quantity -= qty
	return nil
}

type fixture struct {
	svc    Service
	repo   *fakeRepository
	stocks map[uuid.UUID]*models.FertilizerStock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stocks := map[uuid.UUID]*models.FertilizerStock{}
	repo := newFakeRepository()
	svc, err := NewService(repo, fakeTxRunner{}, &fakeStockFinder{stocks: stocks}, &fakeDeducter{stocks: stocks})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return &fixture{svc: svc, repo: repo, stocks: stocks}
}

func (f *fixture) addStock(name string, qty int) *models.FertilizerStock {
	stock := &models.FertilizerStock{ID: uuid.New(), Name: name, Quantity: qty, Unit: "kg"}
	f.stocks[stock.ID] = stock
	return stock
}

func (f *fixture) linkRequest(eventID, stockID uuid.UUID, approved int, createdAt time.Time) *models.FertilizerRequest {
	qty := approved
	request := &models.FertilizerRequest{
		ID:           uuid.New(),
		FarmerID:     uuid.New(),
		StockID:      stockID,
		RequestedQty: approved,
		ApprovedQty:  &qty,
		Status:       enums.RequestStatusScheduled,
		EventID:      &eventID,
		CreatedAt:    createdAt,
	}
	f.repo.requests = append(f.repo.requests, request)
	return request
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)
	urea := f.addStock("Urea", 100)
	admin := uuid.New()

	event, err := f.svc.CreateEvent(context.Background(), CreateEventInput{
		Name:     "Musim Tanam II",
		Date:     time.Now().Add(72 * time.Hour),
		Location: "Balai Desa",
		Items:    []EventItemInput{{StockID: urea.ID, Quantity: 30}},
		ActorID:  admin, ActorRole: enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("CreateEvent error: %v", err)
	}
	if event.Status != enums.EventStatusScheduled {
		t.Fatalf("expected scheduled event, got %s", event.Status)
	}
	if len(event.Items) != 1 || event.Items[0].Unit != "kg" {
		t.Fatalf("expected unit copied from stock, got %+v", event.Items)
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	f := newFixture(t)
	urea := f.addStock("Urea", 100)
	admin := uuid.New()
	date := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name  string
		input CreateEventInput
		code  pkgerrors.Code
	}{
		{
			name:  "no items",
			input: CreateEventInput{Name: "Acara", Date: date, Location: "Balai", ActorID: admin, ActorRole: enums.UserRoleAdmin},
			code:  pkgerrors.CodeValidation,
		},
		{
			name: "zero quantity",
			input: CreateEventInput{
				Name: "Acara", Date: date, Location: "Balai",
				Items:   []EventItemInput{{StockID: urea.ID, Quantity: 0}},
				ActorID: admin, ActorRole: enums.UserRoleAdmin,
			},
			code: pkgerrors.CodeValidation,
		},
		{
			name: "duplicate allocation",
			input: CreateEventInput{
				Name: "Acara", Date: date, Location: "Balai",
				Items:   []EventItemInput{{StockID: urea.ID, Quantity: 10}, {StockID: urea.ID, Quantity: 5}},
				ActorID: admin, ActorRole: enums.UserRoleAdmin,
			},
			code: pkgerrors.CodeValidation,
		},
		{
			name: "unknown stock",
			input: CreateEventInput{
				Name: "Acara", Date: date, Location: "Balai",
				Items:   []EventItemInput{{StockID: uuid.New(), Quantity: 10}},
				ActorID: admin, ActorRole: enums.UserRoleAdmin,
			},
			code: pkgerrors.CodeNotFound,
		},
		{
			name: "distributor cannot create",
			input: CreateEventInput{
				Name: "Acara", Date: date, Location: "Balai",
				Items:   []EventItemInput{{StockID: urea.ID, Quantity: 10}},
				ActorID: admin, ActorRole: enums.UserRoleDistributor,
			},
			code: pkgerrors.CodeForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateEvent(context.Background(), tc.input)
			expectCode(t, err, tc.code)
		})
	}
}

func TestFulfill_ShipsWithinItemBudget(t *testing.T) {
	f := newFixture(t)
	urea := f.addStock("Urea", 100)
	npk := f.addStock("NPK", 25)
	admin := uuid.New()

	event := &models.DistributionEvent{
		ID: uuid.New(), Name: "Musim Tanam II", Status: enums.EventStatusScheduled,
		Items: []models.EventItem{
			{StockID: urea.ID, Quantity: 30, Unit: "kg"},
			{StockID: npk.ID, Quantity: 20, Unit: "kg"},
		},
	}
	f.repo.events[event.ID] = event

	base := time.Now().UTC()
	first := f.linkRequest(event.ID, urea.ID, 20, base)
	second := f.linkRequest(event.ID, urea.ID, 15, base.Add(time.Minute))
	third := f.linkRequest(event.ID, npk.ID, 20, base.Add(2*time.Minute))

	result, err := f.svc.Fulfill(context.Background(), FulfillEventInput{
		EventID: event.ID, ActorID: admin, ActorRole: enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("Fulfill error: %v", err)
	}

	if f.stocks[urea.ID].Quantity != 70 {
		t.Fatalf("expected Urea 70 after deduction, got %d", f.stocks[urea.ID].Quantity)
	}
	if f.stocks[npk.ID].Quantity != 5 {
		t.Fatalf("expected NPK 5 after deduction, got %d", f.stocks[npk.ID].Quantity)
	}

	shipped := map[uuid.UUID]bool{}
	for _, id := range result.ShippedRequests {
		shipped[id] = true
	}
	if !shipped[first.ID] || !shipped[third.ID] {
		t.Fatalf("expected first and third requests shipped, got %+v", result)
	}
	if shipped[second.ID] {
		t.Fatalf("second request exceeds remaining Urea budget and must stay scheduled")
	}
	if second.Status != enums.RequestStatusScheduled {
		t.Fatalf("skipped request status changed: %s", second.Status)
	}
	if f.repo.events[event.ID].Status != enums.EventStatusCompleted {
		t.Fatalf("event not completed")
	}
	if result.DeductedQuantity != 50 {
		t.Fatalf("expected 50 deducted, got %d", result.DeductedQuantity)
	}
}

func TestFulfill_InsufficientStockFailsWhole(t *testing.T) {
	f := newFixture(t)
	urea := f.addStock("Urea", 10)
	admin := uuid.New()

	event := &models.DistributionEvent{
		ID: uuid.New(), Name: "Acara", Status: enums.EventStatusScheduled,
		Items: []models.EventItem{{StockID: urea.ID, Quantity: 30, Unit: "kg"}},
	}
	f.repo.events[event.ID] = event

	_, err := f.svc.Fulfill(context.Background(), FulfillEventInput{
		EventID: event.ID, ActorID: admin, ActorRole: enums.UserRoleAdmin,
	})
	expectCode(t, err, pkgerrors.CodeInsufficientStock)
	if f.repo.events[event.ID].Status != enums.EventStatusScheduled {
		t.Fatalf("event status must stay scheduled after failed fulfillment")
	}
}

func TestFulfill_AlreadyCompleted(t *testing.T) {
	f := newFixture(t)
	admin := uuid.New()
	event := &models.DistributionEvent{ID: uuid.New(), Name: "Acara", Status: enums.EventStatusCompleted}
	f.repo.events[event.ID] = event

	_, err := f.svc.Fulfill(context.Background(), FulfillEventInput{
		EventID: event.ID, ActorID: admin, ActorRole: enums.UserRoleAdmin,
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}
