package reports

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wicaksonohadi/sipupuk-backend/pkg/enums"
)

// Repository aggregates the decrease side of the stock history.
type Repository interface {
	Recap(ctx context.Context, period Period, from, to time.Time) ([]RecapRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reports repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func truncUnit(period Period) string {
	switch period {
	case PeriodMonthly:
		return "month"
	case PeriodYearly:
		return "year"
	default:
		return "day"
	}
}

// Recap groups outbound stock movements per bucket and fertilizer type.
func (r *repository) Recap(ctx context.Context, period Period, from, to time.Time) ([]RecapRow, error) {
	var rows []RecapRow
	err := r.db.WithContext(ctx).
		Table("stock_history_entries AS h").
		Select(
			"date_trunc(?, h.created_at) AS bucket, "+
				"h.stock_id AS stock_id, s.name AS stock_name, h.unit AS unit, "+
				"SUM(h.quantity) AS quantity, COUNT(*) AS movements",
			truncUnit(period),
		).
		Joins("JOIN fertilizer_stocks s ON s.id = h.stock_id").
		Where("h.type = ?", enums.StockMovementDecrease).
		Where("h.created_at >= ? AND h.created_at < ?", from, to).
		Group("bucket, h.stock_id, s.name, h.unit").
		Order("bucket ASC, stock_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
