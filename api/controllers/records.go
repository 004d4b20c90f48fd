package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/washtrack/washtrack-backend/api/responses"
	"github.com/washtrack/washtrack-backend/api/validators"
	"github.com/washtrack/washtrack-backend/internal/sales"
	pkgerrors "github.com/washtrack/washtrack-backend/pkg/errors"
	"github.com/washtrack/washtrack-backend/pkg/logger"
)

// RecordList queries records, newest first. All filters combine.
func RecordList(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		from, err := validators.ParseQueryDate(r, "from", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if to != nil {
			end := validators.EndOfDay(*to)
			to = &end
		}

		query := r.URL.Query()
		records, err := svc.Query(r.Context(), sales.Filter{
			Text:        strings.TrimSpace(query.Get("q")),
			Salesperson: strings.TrimSpace(query.Get("salesperson")),
			Customer:    strings.TrimSpace(query.Get("customer")),
			From:        from,
			To:          to,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]recordResponse, 0, len(records))
		for i := range records {
			items = append(items, recordResponseFromModel(&records[i]))
		}
		responses.WriteSuccess(w, map[string]any{"records": items, "count": len(items)})
	}
}

type recordUpdateRequest struct {
	Salesperson  *string          `json:"salesperson"`
	Customer     *string          `json:"customer"`
	LicensePlate *string          `json:"license_plate"`
	Product      *string          `json:"product"`
	TotalAmount  *decimal.Decimal `json:"total_amount"`
	Timestamp    *time.Time       `json:"timestamp"`
}

// RecordUpdate edits a record in place; recharge edits reconcile the
// customer's balance.
func RecordUpdate(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "recordId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid record id"))
			return
		}

		var payload recordUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Update(r.Context(), id, sales.UpdateInput{
			Salesperson:  payload.Salesperson,
			Customer:     payload.Customer,
			LicensePlate: payload.LicensePlate,
			Product:      payload.Product,
			TotalAmount:  payload.TotalAmount,
			Timestamp:    payload.Timestamp,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeRecordResult(w, http.StatusOK, result)
	}
}

// RecordDelete removes a record; deleting a recharge reverses the credit.
func RecordDelete(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "recordId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid record id"))
			return
		}

		result, err := svc.Remove(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		body := map[string]any{"deleted": true, "id": id}
		if result.Warning != "" {
			responses.WriteSuccessWarning(w, http.StatusOK, body, result.Warning)
			return
		}
		responses.WriteSuccess(w, body)
	}
}
