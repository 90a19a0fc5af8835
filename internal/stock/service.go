package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes stock ledger operations to controllers and sibling services.
type Service interface {
	CreateStock(ctx context.Context, input CreateStockInput) (*models.FertilizerStock, error)
	UpdateStock(ctx context.Context, input UpdateStockInput) (*models.FertilizerStock, error)
	GetStock(ctx context.Context, id uuid.UUID) (*models.FertilizerStock, error)
	ListStock(ctx context.Context) ([]models.FertilizerStock, error)
	Adjust(ctx context.Context, input AdjustStockInput) (*models.FertilizerStock, error)
	History(ctx context.Context, filter HistoryFilter) (*HistoryPage, error)
	Replay(ctx context.Context, stockID uuid.UUID) (*ReplayResult, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires a stock service with the provided dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateStock(ctx context.Context, input CreateStockInput) (*models.FertilizerStock, error) {
	if err := requireStaff(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock name required")
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock unit required")
	}
	if input.OpeningQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opening quantity must not be negative")
	}

	stock := &models.FertilizerStock{
		Name:     name,
		Quantity: input.OpeningQuantity,
		Unit:     unit,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, stock); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "stock name already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock")
		}
		if input.OpeningQuantity == 0 {
			return nil
		}
		note := "opening balance"
		entry := &models.StockHistoryEntry{
			StockID:  stock.ID,
			Type:     enums.StockMovementIncrease,
			Quantity: input.OpeningQuantity,
			Unit:     unit,
			Note:     &note,
			ActorID:  input.ActorID,
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record opening balance")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stock, nil
}

func (s *service) UpdateStock(ctx context.Context, input UpdateStockInput) (*models.FertilizerStock, error) {
	if err := requireStaff(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	if input.StockID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock name must not be empty")
		}
		updates["name"] = name
	}
	if input.Unit != nil {
		unit := strings.TrimSpace(*input.Unit)
		if unit == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock unit must not be empty")
		}
		updates["unit"] = unit
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if _, err := s.findStock(ctx, s.repo, input.StockID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, input.StockID, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "stock name already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	return s.findStock(ctx, s.repo, input.StockID)
}

func (s *service) GetStock(ctx context.Context, id uuid.UUID) (*models.FertilizerStock, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}
	return s.findStock(ctx, s.repo, id)
}

func (s *service) ListStock(ctx context.Context) ([]models.FertilizerStock, error) {
	stocks, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock")
	}
	return stocks, nil
}

func (s *service) Adjust(ctx context.Context, input AdjustStockInput) (*models.FertilizerStock, error) {
	if err := requireStaff(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}
	if input.StockID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement type must be increase or decrease")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var updated *models.FertilizerStock
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stock, err := s.findStock(ctx, repo, input.StockID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(strings.TrimSpace(input.Unit), stock.Unit) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit does not match stock unit").
				WithDetails(map[string]string{"expected_unit": stock.Unit})
		}

		switch input.Type {
		case enums.StockMovementIncrease:
			if _, err := repo.IncreaseQuantity(ctx, stock.ID, input.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increase stock")
			}
		case enums.StockMovementDecrease:
			affected, err := repo.DecreaseQuantity(ctx, stock.ID, input.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrease stock")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock on hand below requested decrease").
					WithDetails(map[string]any{"on_hand": stock.Quantity, "requested": input.Quantity})
			}
		}

		entry := &models.StockHistoryEntry{
			StockID:  stock.ID,
			Type:     input.Type,
			Quantity: input.Quantity,
			Unit:     stock.Unit,
			Note:     input.Note,
			ActorID:  input.ActorID,
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock history")
		}

		updated, err = s.findStock(ctx, repo, stock.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) History(ctx context.Context, filter HistoryFilter) (*HistoryPage, error) {
	entries, err := s.repo.ListHistory(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock history")
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	page := &HistoryPage{Entries: entries}
	if len(entries) > limit {
		page.Entries = entries[:limit]
		last := page.Entries[limit-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &cursor
	}
	return page, nil
}

// Replay recomputes the quantity from the movement ledger. A mismatch means
// someone wrote to the stock row without appending history.
func (s *service) Replay(ctx context.Context, stockID uuid.UUID) (*ReplayResult, error) {
	if stockID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock id required")
	}
	stock, err := s.findStock(ctx, s.repo, stockID)
	if err != nil {
		return nil, err
	}
	increase, decrease, err := s.repo.SumMovements(ctx, stockID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum stock movements")
	}
	replayed := increase - decrease
	return &ReplayResult{
		StockID:        stockID,
		StoredQuantity: stock.Quantity,
		ReplayQuantity: replayed,
		Consistent:     stock.Quantity == replayed,
	}, nil
}

func (s *service) findStock(ctx context.Context, repo Repository, id uuid.UUID) (*models.FertilizerStock, error) {
	stock, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
	}
	return stock, nil
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

// Deducter removes stock inside an already-open transaction and appends the
// matching decrease entry, keeping the ledger and the quantity in lockstep.
type Deducter interface {
	Deduct(ctx context.Context, tx *gorm.DB, stockID uuid.UUID, qty int, actorID uuid.UUID, note string) error
}

type ledgerDeducter struct{}

// NewDeducter exposes the default transactional stock deduction.
func NewDeducter() Deducter {
	return ledgerDeducter{}
}

func (ledgerDeducter) Deduct(ctx context.Context, tx *gorm.DB, stockID uuid.UUID, qty int, actorID uuid.UUID, note string) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "deduction quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock deduction")
	}

	var stock models.FertilizerStock
	if err := tx.WithContext(ctx).Where("id = ?", stockID).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "stock not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE fertilizer_stocks
		SET quantity = quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quantity >= ?
	`, qty, stockID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "deduct stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock on hand below requested deduction").
			WithDetails(map[string]any{"on_hand": stock.Quantity, "requested": qty})
	}

	noteVal := note
	entry := &models.StockHistoryEntry{
		StockID:  stockID,
		Type:     enums.StockMovementDecrease,
		Quantity: qty,
		Unit:     stock.Unit,
		Note:     &noteVal,
		ActorID:  actorID,
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append deduction history")
	}
	return nil
}
