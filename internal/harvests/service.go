package harvests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

// ReportInput is a farmer's harvest report.
type ReportInput struct {
	CropType    string    `json:"crop_type" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,gt=0"`
	Unit        string    `json:"unit" validate:"required"`
	HarvestDate time.Time `json:"harvest_date" validate:"required"`
	EvidenceURL *string   `json:"evidence_url" validate:"omitempty,url"`

	FarmerID uuid.UUID `json:"-"`
}

// HarvestPage is one cursor page of harvest records.
type HarvestPage struct {
	Records    []models.HarvestRecord `json:"records"`
	NextCursor *string                `json:"next_cursor,omitempty"`
}

// Service records and lists harvest reports. Verification lives with the
// farmers review flow.
type Service interface {
	Report(ctx context.Context, input ReportInput) (*models.HarvestRecord, error)
	Get(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole enums.UserRole) (*models.HarvestRecord, error)
	List(ctx context.Context, filter ListFilter) (*HarvestPage, error)
}

type service struct {
	repo Repository
}

// NewService wires a harvests service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("harvests repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Report(ctx context.Context, input ReportInput) (*models.HarvestRecord, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cropType := strings.TrimSpace(input.CropType)
	if cropType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "crop type required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit required")
	}
	if input.HarvestDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "harvest date required")
	}
	if input.HarvestDate.After(time.Now().Add(24 * time.Hour)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "harvest date cannot be in the future")
	}

	record := &models.HarvestRecord{
		FarmerID:    input.FarmerID,
		CropType:    cropType,
		Quantity:    input.Quantity,
		Unit:        unit,
		HarvestDate: input.HarvestDate,
		EvidenceURL: input.EvidenceURL,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create harvest record")
	}
	return record, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole enums.UserRole) (*models.HarvestRecord, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "harvest id required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "harvest record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load harvest record")
	}
	if !actorRole.IsStaff() && record.FarmerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "harvest record belongs to another farmer")
	}
	return record, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*HarvestPage, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list harvest records")
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	page := &HarvestPage{Records: records}
	if len(records) > limit {
		page.Records = records[:limit]
		last := page.Records[limit-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &cursor
	}
	return page, nil
}
