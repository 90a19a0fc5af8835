package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/db/models"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/pagination"
)

// Repository manages persistence for fertilizer stock and its history ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, stock *models.FertilizerStock) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.FertilizerStock, error)
	FindByName(ctx context.Context, name string) (*models.FertilizerStock, error)
	List(ctx context.Context) ([]models.FertilizerStock, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	IncreaseQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	DecreaseQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	AppendHistory(ctx context.Context, entry *models.StockHistoryEntry) error
	ListHistory(ctx context.Context, filter HistoryFilter) ([]models.StockHistoryEntry, error)
	SumMovements(ctx context.Context, stockID uuid.UUID) (increase int, decrease int, err error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, stock *models.FertilizerStock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FertilizerStock, error) {
	var stock models.FertilizerStock
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.FertilizerStock, error) {
	var stock models.FertilizerStock
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *repository) List(ctx context.Context) ([]models.FertilizerStock, error) {
	var stocks []models.FertilizerStock
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.FertilizerStock{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) IncreaseQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE fertilizer_stocks
		SET quantity = quantity + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, id)
	return res.RowsAffected, res.Error
}

// DecreaseQuantity only applies when enough stock remains; callers inspect
// the affected row count to tell a miss from an insufficient balance.
func (r *repository) DecreaseQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE fertilizer_stocks
		SET quantity = quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quantity >= ?
	`, qty, id, qty)
	return res.RowsAffected, res.Error
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.StockHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListHistory(ctx context.Context, filter HistoryFilter) ([]models.StockHistoryEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.StockHistoryEntry{})
	if filter.StockID != nil {
		query = query.Where("stock_id = ?", *filter.StockID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if cursor, err := pagination.ParseCursor(filter.Cursor); err != nil {
		return nil, err
	} else if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.StockHistoryEntry
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) SumMovements(ctx context.Context, stockID uuid.UUID) (int, int, error) {
	type sums struct {
		Increase int
		Decrease int
	}
	var result sums
	err := r.db.WithContext(ctx).
		Model(&models.StockHistoryEntry{}).
		Select(
			"COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE 0 END), 0) AS increase, "+
				"COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE 0 END), 0) AS decrease",
			enums.StockMovementIncrease, enums.StockMovementDecrease,
		).
		Where("stock_id = ?", stockID).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Increase, result.Decrease, nil
}
