package verifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type requestFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.FertilizerRequest, error)
}

// RecordInput is the distributor's proof of delivery for one request.
type RecordInput struct {
	RequestID   uuid.UUID `json:"request_id" validate:"required"`
	EvidenceURL *string   `json:"evidence_url" validate:"omitempty,url"`
	Note        *string   `json:"note"`

	ActorID   uuid.UUID      `json:"-"`
	ActorRole enums.UserRole `json:"-"`
}

// Service records and reads receipt verifications.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.ReceiptVerification, error)
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*models.ReceiptVerification, error)
	ListByDistributor(ctx context.Context, distributorID uuid.UUID) ([]models.ReceiptVerification, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	requests requestFinder
}

// NewService wires a verifications service with the provided dependencies.
func NewService(repo Repository, tx txRunner, requests requestFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("verifications repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if requests == nil {
		return nil, fmt.Errorf("request finder required")
	}
	return &service{repo: repo, tx: tx, requests: requests}, nil
}

// Record stores the verification exactly once per request; the unique index
// on request_id backs up the in-transaction check under concurrency.
func (s *service) Record(ctx context.Context, input RecordInput) (*models.ReceiptVerification, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.UserRoleDistributor {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "distributor role required")
	}
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	var verification *models.ReceiptVerification
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := s.requests.FindByID(ctx, input.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}
		if request.Status != enums.RequestStatusShipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "verification only allowed for shipped requests")
		}

		exists, err := repo.HasVerification(ctx, request.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing verification")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "request already verified")
		}

		verification = &models.ReceiptVerification{
			RequestID:     request.ID,
			DistributorID: input.ActorID,
			EvidenceURL:   input.EvidenceURL,
			Note:          input.Note,
			VerifiedAt:    time.Now().UTC(),
		}
		if err := repo.Create(ctx, verification); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "request already verified")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create verification")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return verification, nil
}

func (s *service) GetByRequest(ctx context.Context, requestID uuid.UUID) (*models.ReceiptVerification, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	verification, err := s.repo.FindByRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "verification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification")
	}
	return verification, nil
}

func (s *service) ListByDistributor(ctx context.Context, distributorID uuid.UUID) ([]models.ReceiptVerification, error) {
	if distributorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "distributor id required")
	}
	verifications, err := s.repo.ListByDistributor(ctx, distributorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list verifications")
	}
	return verifications, nil
}
