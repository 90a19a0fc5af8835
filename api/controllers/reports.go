package controllers

import (
	"net/http"
	"time"

	"github.com/wicaksonohadi/sipupuk-backend/api/responses"
	reportsvc "github.com/wicaksonohadi/sipupuk-backend/internal/reports"
	pkgerrors "github.com/wicaksonohadi/sipupuk-backend/pkg/errors"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/logger"
)

// RecapReport aggregates distributed quantities per stock over a period.
func RecapReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		input, err := recapInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Recap(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// RecapExport streams the recap as a CSV download.
func RecapExport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		input, err := recapInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Recap(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="recap.csv"`)
		if err := svc.WriteCSV(w, report); err != nil {
			if logg != nil {
				logg.Error(r.Context(), "write recap csv", err)
			}
		}
	}
}

func recapInputFromQuery(r *http.Request) (reportsvc.RecapInput, error) {
	period := reportsvc.Period(r.URL.Query().Get("period"))

	from, err := parseDateQuery(r, "from")
	if err != nil {
		return reportsvc.RecapInput{}, err
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		return reportsvc.RecapInput{}, err
	}

	return reportsvc.RecapInput{Period: period, From: from, To: to}, nil
}

// parseDateQuery accepts either a date or a full RFC 3339 timestamp.
func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "query parameter required").WithDetails(map[string]any{"field": key})
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date").WithDetails(map[string]any{"field": key})
	}
	return ts, nil
}
