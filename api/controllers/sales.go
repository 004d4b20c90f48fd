package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/washtrack/washtrack-backend/api/responses"
	"github.com/washtrack/washtrack-backend/api/validators"
	"github.com/washtrack/washtrack-backend/internal/sales"
	"github.com/washtrack/washtrack-backend/pkg/db/models"
	"github.com/washtrack/washtrack-backend/pkg/enums"
	pkgerrors "github.com/washtrack/washtrack-backend/pkg/errors"
	"github.com/washtrack/washtrack-backend/pkg/logger"
)

type attachmentPayload struct {
	Name        string `json:"name" validate:"required"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data" validate:"required"`
}

type saleCreateRequest struct {
	Salesperson  string              `json:"salesperson" validate:"required"`
	Password     string              `json:"password" validate:"required"`
	Customer     string              `json:"customer" validate:"required"`
	LicensePlate string              `json:"license_plate"`
	Product      string              `json:"product" validate:"required"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	PaymentType  string              `json:"payment_type" validate:"required,oneof=cash balance recharge"`
	Timestamp    *time.Time          `json:"timestamp"`
	Attachments  []attachmentPayload `json:"attachments" validate:"dive"`
}

type rechargeCreateRequest struct {
	Salesperson  string              `json:"salesperson" validate:"required"`
	Password     string              `json:"password" validate:"required"`
	Customer     string              `json:"customer" validate:"required"`
	LicensePlate string              `json:"license_plate"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Timestamp    *time.Time          `json:"timestamp"`
	Attachments  []attachmentPayload `json:"attachments" validate:"dive"`
}

func attachmentInputs(payloads []attachmentPayload) []sales.AttachmentInput {
	if len(payloads) == 0 {
		return nil
	}
	inputs := make([]sales.AttachmentInput, 0, len(payloads))
	for _, p := range payloads {
		inputs = append(inputs, sales.AttachmentInput{
			Name:        p.Name,
			ContentType: p.ContentType,
			Data:        p.Data,
		})
	}
	return inputs
}

// SaleCreate records a cash, balance or recharge transaction.
func SaleCreate(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		var payload saleCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentType, err := enums.ParsePaymentType(payload.PaymentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type"))
			return
		}

		result, err := svc.Insert(r.Context(), sales.InsertInput{
			Salesperson:  payload.Salesperson,
			Password:     payload.Password,
			Customer:     payload.Customer,
			LicensePlate: payload.LicensePlate,
			Product:      payload.Product,
			TotalAmount:  payload.TotalAmount,
			PaymentType:  paymentType,
			Timestamp:    payload.Timestamp,
			Attachments:  attachmentInputs(payload.Attachments),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeRecordResult(w, http.StatusCreated, result)
	}
}

// RechargeCreate tops up a customer's prepaid balance. It is a sale insert
// with the payment type pinned to recharge.
func RechargeCreate(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		var payload rechargeCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Insert(r.Context(), sales.InsertInput{
			Salesperson:  payload.Salesperson,
			Password:     payload.Password,
			Customer:     payload.Customer,
			LicensePlate: payload.LicensePlate,
			TotalAmount:  payload.TotalAmount,
			PaymentType:  enums.PaymentTypeRecharge,
			Timestamp:    payload.Timestamp,
			Attachments:  attachmentInputs(payload.Attachments),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeRecordResult(w, http.StatusCreated, result)
	}
}

func writeRecordResult(w http.ResponseWriter, status int, result *sales.Result) {
	body := recordResponseFromModel(result.Record)
	if result.Warning != "" {
		responses.WriteSuccessWarning(w, status, body, result.Warning)
		return
	}
	responses.WriteSuccessStatus(w, status, body)
}

type attachmentResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
}

type recordResponse struct {
	ID           uuid.UUID            `json:"id"`
	Timestamp    time.Time            `json:"timestamp"`
	Salesperson  string               `json:"salesperson"`
	Customer     string               `json:"customer"`
	LicensePlate string               `json:"license_plate"`
	Product      string               `json:"product"`
	TotalAmount  decimal.Decimal      `json:"total_amount"`
	PaymentType  enums.PaymentType    `json:"payment_type"`
	Attachments  []attachmentResponse `json:"attachments,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func recordResponseFromModel(m *models.SaleRecord) recordResponse {
	resp := recordResponse{
		ID:           m.ID,
		Timestamp:    m.Timestamp,
		Salesperson:  m.Salesperson,
		Customer:     m.Customer,
		LicensePlate: m.LicensePlate,
		Product:      m.Product,
		TotalAmount:  m.TotalAmount,
		PaymentType:  m.PaymentType,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	for _, att := range m.Attachments {
		resp.Attachments = append(resp.Attachments, attachmentResponse{
			ID:          att.ID,
			Name:        att.Name,
			ContentType: att.ContentType,
			SizeBytes:   att.SizeBytes,
		})
	}
	return resp
}
