package verifications

import (
	"context"
	"testing"

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
	byRequest map[uuid.UUID]*models.ReceiptVerification
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byRequest: map[uuid.UUID]*models.ReceiptVerification{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, verification *models.ReceiptVerification) error {
	if verification.ID == uuid.Nil {
		verification.ID = uuid.New()
	}
	copied := *verification
	f.byRequest[verification.RequestID] = &copied
	return nil
}

func (f *fakeRepository) FindByRequest(ctx context.Context, requestID uuid.UUID) (*models.ReceiptVerification, error) {
	verification, ok := f.byRequest[requestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *verification
	return &copied, nil
}

func (f *fakeRepository) HasVerification(ctx context.Context, requestID uuid.UUID) (bool, error) {
	_, ok := f.byRequest[requestID]
	return ok, nil
}

func (f *fakeRepository) ListByDistributor(ctx context.Context, distributorID uuid.UUID) ([]models.ReceiptVerification, error) {
	out := []models.ReceiptVerification{}
	for _, verification := range f.byRequest {
		if verification.DistributorID == distributorID {
			out = append(out, *verification)
		}
	}
	return out, nil
}

type fakeRequestFinder struct {
	requests map[uuid.UUID]*models.FertilizerRequest
}

func (f *fakeRequestFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.FertilizerRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *request
	return &copied, nil
}

func newTestService(t *testing.T) (Service, *fakeRepository, *fakeRequestFinder) {
	t.Helper()
	repo := newFakeRepository()
	requests := &fakeRequestFinder{requests: map[uuid.UUID]*models.FertilizerRequest{}}
	svc, err := NewService(repo, fakeTxRunner{}, requests)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, repo, requests
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestRecord_HappyPathAndDuplicate(t *testing.T) {
	svc, _, requests := newTestService(t)
	distributor := uuid.New()

	request := &models.FertilizerRequest{ID: uuid.New(), Status: enums.RequestStatusShipped}
	requests.requests[request.ID] = request

	verification, err := svc.Record(context.Background(), RecordInput{
		RequestID: request.ID, ActorID: distributor, ActorRole: enums.UserRoleDistributor,
	})
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if verification.DistributorID != distributor || verification.VerifiedAt.IsZero() {
		t.Fatalf("unexpected verification: %+v", verification)
	}

	_, err = svc.Record(context.Background(), RecordInput{
		RequestID: request.ID, ActorID: distributor, ActorRole: enums.UserRoleDistributor,
	})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestRecord_StateAndRoleChecks(t *testing.T) {
	svc, _, requests := newTestService(t)
	distributor := uuid.New()

	t.Run("scheduled request not verifiable", func(t *testing.T) {
		request := &models.FertilizerRequest{ID: uuid.New(), Status: enums.RequestStatusScheduled}
		requests.requests[request.ID] = request
		_, err := svc.Record(context.Background(), RecordInput{
			RequestID: request.ID, ActorID: distributor, ActorRole: enums.UserRoleDistributor,
		})
		expectCode(t, err, pkgerrors.CodeStateConflict)
	})

	t.Run("admin cannot verify", func(t *testing.T) {
		request := &models.FertilizerRequest{ID: uuid.New(), Status: enums.RequestStatusShipped}
		requests.requests[request.ID] = request
		_, err := svc.Record(context.Background(), RecordInput{
			RequestID: request.ID, ActorID: distributor, ActorRole: enums.UserRoleAdmin,
		})
		expectCode(t, err, pkgerrors.CodeForbidden)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := svc.Record(context.Background(), RecordInput{
			RequestID: uuid.New(), ActorID: distributor, ActorRole: enums.UserRoleDistributor,
		})
		expectCode(t, err, pkgerrors.CodeNotFound)
	})
}
