package reports

import (
	"time"

	"github.com/google/uuid"
)

// Period selects the recap bucket size.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// IsValid reports whether p is a known period.
func (p Period) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// RecapRow aggregates distributed quantity for one stock in one bucket.
type RecapRow struct {
	Bucket    time.Time `json:"bucket"`
	StockID   uuid.UUID `json:"stock_id"`
	StockName string    `json:"stock_name"`
	Unit      string    `json:"unit"`
	Quantity  int64     `json:"quantity"`
	Movements int64     `json:"movements"`
}

// RecapReport is the assembled recap for a period and date range.
type RecapReport struct {
	Period        Period     `json:"period"`
	From          time.Time  `json:"from"`
	To            time.Time  `json:"to"`
	Rows          []RecapRow `json:"rows"`
	TotalQuantity int64      `json:"total_quantity"`
}

// RecapInput bounds the recap query.
type RecapInput struct {
	Period Period
	From   time.Time
	To     time.Time
}
