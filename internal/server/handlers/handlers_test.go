package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/repository/lock"
	"github.com/mamadbah2/shroomtrack/internal/repository/sheets"
	"github.com/mamadbah2/shroomtrack/internal/service/crm"
	"github.com/mamadbah2/shroomtrack/internal/service/legacysync"
	"github.com/mamadbah2/shroomtrack/internal/service/processing"
	"github.com/mamadbah2/shroomtrack/internal/service/sales"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp models.APIResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("batch b1: %w", models.ErrNotFound), http.StatusNotFound},
		{lock.ErrBusy, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: RECEIVED", models.ErrInvalidTransition), http.StatusConflict},
		{processing.ErrMassBalance, http.StatusUnprocessableEntity},
		{sales.ErrCancelReason, http.StatusUnprocessableEntity},
		{errors.New("mongo down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

type stubSync struct {
	lastAction string
	lastReq    models.SyncRequest
}

func (s *stubSync) HandlePost(_ context.Context, req models.SyncRequest) models.APIResponse {
	s.lastReq = req
	return models.APIResponse{Success: false, Error: "sync lock busy"}
}

func (s *stubSync) HandleGet(_ context.Context, action string) models.APIResponse {
	s.lastAction = action
	if action != models.ActionGetFullDB {
		return models.APIResponse{Success: false, Message: "Invalid Action"}
	}
	return models.APIResponse{Success: true, Data: map[string]int{"batches": 0}}
}

func TestSyncHandlerAlwaysReturns200(t *testing.T) {
	svc := &stubSync{}
	h := NewSyncHandler(svc, nil)
	r := gin.New()
	r.POST("/api/sync", h.Post)
	r.GET("/api/sync", h.Get)

	w, resp := perform(t, r, http.MethodPost, "/api/sync", `{not json`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "invalid payload")

	w, resp = perform(t, r, http.MethodPost, "/api/sync", map[string]interface{}{"action": models.ActionSyncFullDB})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sync lock busy", resp.Error)
	assert.Equal(t, models.ActionSyncFullDB, svc.lastReq.Action)

	w, resp = perform(t, r, http.MethodGet, "/api/sync?action=NOPE", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Invalid Action", resp.Message)
	assert.Equal(t, "NOPE", svc.lastAction)
}

func TestSyncHandlerNumericIDHitsSameRow(t *testing.T) {
	table := sheets.NewMemoryRepository()
	svc := legacysync.NewService(table, lock.NewLocalLocker(), "sync", time.Second, nil)
	r := gin.New()
	r.POST("/api/sync", NewSyncHandler(svc, nil).Post)

	_, resp := perform(t, r, http.MethodPost, "/api/sync",
		`{"action":"SYNC_FULL_DB","payload":{"customers":[{"id":100,"name":"Ali","contact":224620000000}]}}`)
	require.True(t, resp.Success, resp.Error)

	_, resp = perform(t, r, http.MethodPost, "/api/sync",
		`{"action":"SYNC_FULL_DB","payload":{"customers":[{"id":"100","name":"Ali Bah"}]}}`)
	require.True(t, resp.Success, resp.Error)

	rows, err := table.ReadRows(context.Background(), legacysync.SheetCustomers)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "100", rows[1][0])
	assert.Equal(t, "Ali Bah", rows[1][1])
}

type stubProcessing struct {
	ProcessingService
	intakeErr error
}

func (s *stubProcessing) GetBatch(_ context.Context, id string) (models.Batch, error) {
	return models.Batch{}, fmt.Errorf("batch %s: %w", id, models.ErrNotFound)
}

func (s *stubProcessing) Intake(_ context.Context, req models.IntakeRequest) (models.Batch, error) {
	if s.intakeErr != nil {
		return models.Batch{}, s.intakeErr
	}
	return models.Batch{ID: "B-1", SourceFarm: req.SourceFarm, Status: models.BatchReceived}, nil
}

func (s *stubProcessing) Start(_ context.Context, batchID, recipeID string) (models.Batch, error) {
	return models.Batch{ID: batchID, Status: models.BatchProcessing}, nil
}

func TestBatchHandler(t *testing.T) {
	svc := &stubProcessing{}
	h := NewBatchHandler(svc, nil)
	r := gin.New()
	r.GET("/batches/:id", h.Get)
	r.POST("/batches", h.Intake)
	r.POST("/batches/:id/start", h.Start)

	w, resp := perform(t, r, http.MethodGet, "/batches/B-9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "B-9")

	w, _ = perform(t, r, http.MethodPost, "/batches/B-1/start", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = perform(t, r, http.MethodPost, "/batches/B-1/start", map[string]string{"recipeId": "r1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	intake := map[string]interface{}{"sourceFarm": "North", "rawWeightKg": 10}
	w, _ = perform(t, r, http.MethodPost, "/batches", intake)
	assert.Equal(t, http.StatusCreated, w.Code)

	svc.intakeErr = errors.New("connection reset")
	w, resp = perform(t, r, http.MethodPost, "/batches", intake)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", resp.Message)
}

type stubFinance struct {
	FinanceService
	period models.ReportPeriod
}

func (s *stubFinance) ExportPeriodReport(_ context.Context, period models.ReportPeriod) (*excelize.File, string, error) {
	s.period = period
	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", "Revenue"); err != nil {
		return nil, "", err
	}
	return f, "finance-report-MONTH-2025-03-14.xlsx", nil
}

func TestFinanceExport(t *testing.T) {
	svc := &stubFinance{}
	h := NewFinanceHandler(svc, nil)
	r := gin.New()
	r.GET("/report/export", h.Export)

	w, _ := perform(t, r, http.MethodGet, "/report/export?period=month", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PeriodMonth, svc.period)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="finance-report-MONTH-2025-03-14.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	v, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Revenue", v)

	w, resp := perform(t, r, http.MethodGet, "/report/export?period=YEAR", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

type stubCRM struct {
	CRMService
	result crm.OutreachResult
	err    error
}

func (s *stubCRM) Outreach(context.Context, string, models.OutreachKind) (crm.OutreachResult, error) {
	return s.result, s.err
}

func TestCRMOutreach(t *testing.T) {
	svc := &stubCRM{}
	h := NewCRMHandler(svc, nil)
	r := gin.New()
	r.POST("/crm/:id/outreach", h.Outreach)

	svc.result = crm.OutreachResult{To: "221770000000", Link: "https://wa.me/221770000000?text=Hi"}
	svc.err = errors.New("whatsapp api error: 500")
	w, resp := perform(t, r, http.MethodPost, "/crm/c1/outreach", map[string]string{"kind": "PROMO"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, resp.Success)
	assert.NotNil(t, resp.Data)

	svc.result = crm.OutreachResult{}
	svc.err = crm.ErrInvalidPhone
	w, _ = perform(t, r, http.MethodPost, "/crm/c1/outreach", map[string]string{"kind": "PROMO"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = perform(t, r, http.MethodPost, "/crm/c1/outreach", map[string]string{"kind": "SPAM"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubSales struct {
	SalesService
}

func (stubSales) SubmitOnlineOrder(context.Context, models.OnlineOrderRequest) (string, error) {
	return "WEB-42", nil
}

func (stubSales) Cancel(_ context.Context, id, reason string) (models.SalesRecord, error) {
	if reason == "" {
		return models.SalesRecord{}, sales.ErrCancelReason
	}
	return models.SalesRecord{ID: id, Status: models.SaleCancelled}, nil
}

func TestSalesHandler(t *testing.T) {
	h := NewSalesHandler(stubSales{}, nil)
	r := gin.New()
	r.POST("/sales/online", h.OnlineOrder)
	r.POST("/sales/:id/cancel", h.Cancel)

	order := map[string]interface{}{
		"customerName": "Awa",
		"cart":         []map[string]interface{}{{"finishedGoodId": "FG-1", "quantity": 2}},
	}
	w, resp := perform(t, r, http.MethodPost, "/sales/online", order)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, map[string]interface{}{"invoiceId": "WEB-42"}, resp.Data)

	w, _ = perform(t, r, http.MethodPost, "/sales/online", map[string]interface{}{"customerName": "Awa"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = perform(t, r, http.MethodPost, "/sales/INV-1/cancel", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

type stubRoles struct{}

func (stubRoles) Role(_ context.Context, uid string) string {
	if uid == "u1" {
		return "ADMIN"
	}
	return models.RoleGuest
}

func TestDashboardRole(t *testing.T) {
	h := NewDashboardHandler(stubRoles{}, nil, nil)
	r := gin.New()
	r.GET("/roles/:uid", h.Role)

	_, resp := perform(t, r, http.MethodGet, "/roles/u1", nil)
	assert.Equal(t, map[string]interface{}{"uid": "u1", "role": "ADMIN"}, resp.Data)

	_, resp = perform(t, r, http.MethodGet, "/roles/u2", nil)
	assert.Equal(t, map[string]interface{}{"uid": "u2", "role": "GUEST"}, resp.Data)
}
