package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
)

const maxRecapRange = 5 * 366 * 24 * time.Hour

var csvHeader = []string{"bucket", "stock_id", "stock_name", "unit", "quantity", "movements"}

// Service builds distribution recaps for the program office.
type Service interface {
	Recap(ctx context.Context, input RecapInput) (*RecapReport, error)
	WriteCSV(w io.Writer, report *RecapReport) error
}

type service struct {
	repo Repository
}

// NewService wires a reports service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Recap(ctx context.Context, input RecapInput) (*RecapReport, error) {
	if !input.Period.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period must be daily, monthly, or yearly")
	}
	from, to := input.From, input.To
	if from.IsZero() || to.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range required")
	}
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "range end must be after start")
	}
	if to.Sub(from) > maxRecapRange {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "range too wide")
	}

	rows, err := s.repo.Recap(ctx, input.Period, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate distribution history")
	}

	report := &RecapReport{
		Period: input.Period,
		From:   from,
		To:     to,
		Rows:   rows,
	}
	for _, row := range rows {
		report.TotalQuantity += row.Quantity
	}
	return report, nil
}

func bucketLabel(period Period, bucket time.Time) string {
	switch period {
	case PeriodMonthly:
		return bucket.Format("2006-01")
	case PeriodYearly:
		return bucket.Format("2006")
	default:
		return bucket.Format("2006-01-02")
	}
}

// WriteCSV streams the recap rows in a spreadsheet-friendly layout.
func (s *service) WriteCSV(w io.Writer, report *RecapReport) error {
	if report == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "report required")
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for _, row := range report.Rows {
		record := []string{
			bucketLabel(report.Period, row.Bucket),
			row.StockID.String(),
			row.StockName,
			row.Unit,
			strconv.FormatInt(row.Quantity, 10),
			strconv.FormatInt(row.Movements, 10),
		}
		if err := writer.Write(record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}
