package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/washtrack/washtrack-backend/internal/admin"
	"github.com/washtrack/washtrack-backend/internal/credentials"
	"github.com/washtrack/washtrack-backend/internal/customers"
	"github.com/washtrack/washtrack-backend/internal/reports"
	"github.com/washtrack/washtrack-backend/internal/sales"
	"github.com/washtrack/washtrack-backend/pkg/config"
	"github.com/washtrack/washtrack-backend/pkg/db/models"
)

type gormRunner struct {
	db *gorm.DB
}

func (r gormRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type nopPinger struct{}

func (nopPinger) Ping(ctx context.Context) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Salesperson{},
		&models.Customer{},
		&models.BalanceEntry{},
		&models.SaleRecord{},
		&models.Attachment{},
		&models.Setting{},
	))

	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev, Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "washtrack",
			ExpirationMinutes: 60,
		},
		Ledger: config.LedgerConfig{
			AdminDefaultPassword: "admin123",
			MaxAttachmentMB:      5,
		},
	}

	runner := gormRunner{db: db}
	credsRepo := credentials.NewRepository(db)
	custsRepo := customers.NewRepository(db)
	salesRepo := sales.NewRepository(db)

	credsService, err := credentials.NewService(credsRepo, cfg.Password)
	require.NoError(t, err)
	custsService, err := customers.NewService(custsRepo, nil, nil)
	require.NoError(t, err)
	salesService, err := sales.NewService(salesRepo, credsService, custsService, runner, cfg.Ledger, nil, nil)
	require.NoError(t, err)
	reportsService, err := reports.NewService(salesRepo, custsService)
	require.NoError(t, err)
	adminService, err := admin.NewService(
		admin.NewRepository(db), credsRepo, custsRepo, salesRepo,
		runner, cfg.JWT, cfg.Password, cfg.Ledger, nil,
	)
	require.NoError(t, err)
	require.NoError(t, adminService.Seed(context.Background()))

	return NewRouter(cfg, nil, nopPinger{}, nil, credsService, salesService, reportsService, adminService)
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data    map[string]any `json:"data"`
		Warning string         `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func adminToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/admin/v1/login", "", map[string]string{"password": "admin123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token, _ := dataField(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthLive(t *testing.T) {
	handler := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, config.AppEnvDev, rec.Header().Get("X-WashTrack-Env"))
}

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	handler := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/admin/v1/login", "", map[string]string{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	handler := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/admin/v1/salespeople", "", map[string]string{
		"name":     "Amy",
		"password": "pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/admin/v1/salespeople", "garbage-token", map[string]string{
		"name":     "Amy",
		"password": "pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSaleAndRecordFlow(t *testing.T) {
	handler := newTestRouter(t)
	token := adminToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/admin/v1/salespeople", token, map[string]string{
		"name":     "Amy",
		"password": "pass1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Recharge tops up Bob's balance.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/recharges", "", map[string]any{
		"salesperson":  "Amy",
		"password":     "pass1",
		"customer":     "Bob",
		"total_amount": 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Recharge", dataField(t, rec)["product"])
	rechargeID, _ := dataField(t, rec)["id"].(string)
	require.NotEmpty(t, rechargeID)

	// Balance sale within the balance succeeds.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/sales", "", map[string]any{
		"salesperson":  "Amy",
		"password":     "pass1",
		"customer":     "Bob",
		"product":      "Deluxe Wash",
		"total_amount": 80,
		"payment_type": "balance",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// A second one overdraws and is rejected with the shortfall.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/sales", "", map[string]any{
		"salesperson":  "Amy",
		"password":     "pass1",
		"customer":     "Bob",
		"product":      "Deluxe Wash",
		"total_amount": 50,
		"payment_type": "balance",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/records", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, dataField(t, rec)["count"])

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/weekly-total", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Record deletion is admin only. The balance is spent down to 20, so
	// reversing the 100 recharge clamps and surfaces a warning.
	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/records/"+rechargeID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/records/"+rechargeID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Warning string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Warning)
}

func TestSaleRejectsUnknownSalesperson(t *testing.T) {
	handler := newTestRouter(t)
	token := adminToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/admin/v1/salespeople", token, map[string]string{
		"name":     "Amy",
		"password": "pass1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/sales", "", map[string]any{
		"salesperson":  "Mallory",
		"password":     "pass1",
		"customer":     "Bob",
		"product":      "Wash",
		"total_amount": 10,
		"payment_type": "cash",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRangeReportValidatesDates(t *testing.T) {
	handler := newTestRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports/range", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/range?from=2026-03-01&to=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
