package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/authz"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/SscSPs/marketplace_ledger/internal/core/services"
	"github.com/SscSPs/marketplace_ledger/internal/dto"
	"github.com/SscSPs/marketplace_ledger/internal/handlers"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/SscSPs/marketplace_ledger/internal/platform/config"
	"github.com/SscSPs/marketplace_ledger/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// LedgerAPITestSuite drives the full router against the in-memory store.
type LedgerAPITestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *LedgerAPITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JWTSecret:          testJWTSecret,
		ClosedPeriodPolicy: domain.ClosedPeriodReject,
		IsProduction:       true,
	}
	access := authz.NewRoleAccessValidator()
	svc, err := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.New()), access, nil)
	s.Require().NoError(err)

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, svc, handlers.RouteDeps{
		Access: access,
		Ping:   func(context.Context) error { return nil },
	})

	s.expect(http.StatusOK, s.call(http.MethodPost, "/api/v1/entities/provision", s.bearer(adminPrincipal),
		map[string]any{"entityType": "ADMIN"}))
	s.expect(http.StatusOK, s.call(http.MethodPost, "/api/v1/entities/provision", s.bearer(adminPrincipal),
		map[string]any{"entityType": "VENDOR", "entityId": vendorPrincipal.VendorID}))
}

func TestLedgerAPI(t *testing.T) {
	suite.Run(t, new(LedgerAPITestSuite))
}

type authHeader func(*http.Request)

func (s *LedgerAPITestSuite) bearer(p domain.Principal) authHeader {
	token, err := middleware.NewToken(testJWTSecret, p, time.Hour)
	s.Require().NoError(err)
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func apiKey(key string) authHeader {
	return func(r *http.Request) { r.Header.Set("x-api-key", key) }
}

func (s *LedgerAPITestSuite) call(method, url string, auth authHeader, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != nil {
		auth(req)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *LedgerAPITestSuite) expect(status int, w *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	s.Require().Equal(status, w.Code, w.Body.String())
	return w
}

func (s *LedgerAPITestSuite) decode(w *httptest.ResponseRecorder, dest any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dest))
}

func (s *LedgerAPITestSuite) kind(w *httptest.ResponseRecorder) string {
	var resp dto.ErrorResponse
	s.decode(w, &resp)
	return resp.Kind
}

func (s *LedgerAPITestSuite) createAccount(class, name string) string {
	w := s.expect(http.StatusCreated, s.call(http.MethodPost, "/api/v1/accounts", s.bearer(adminPrincipal),
		map[string]any{"name": name, "class": class}))
	var acc dto.AccountResponse
	s.decode(w, &acc)
	return acc.AccountID
}

func (s *LedgerAPITestSuite) journal(debitAcc, creditAcc, debit, credit string) map[string]any {
	return map[string]any{
		"voucherType": "JOURNAL",
		"voucherDate": "2025-03-15",
		"narration":   "Capital injection",
		"entries": []map[string]any{
			{"accountID": debitAcc, "debit": debit},
			{"accountID": creditAcc, "credit": credit},
		},
	}
}

func (s *LedgerAPITestSuite) integrationKey() string {
	w := s.expect(http.StatusCreated, s.call(http.MethodPost, "/api/v1/integration-keys", s.bearer(adminPrincipal),
		map[string]any{"name": "order-service"}))
	var resp dto.CreateIntegrationKeyResponse
	s.decode(w, &resp)
	s.Require().NotEmpty(resp.Key)
	return resp.Key
}

func orderEvent(orderID string) map[string]any {
	return map[string]any{
		"eventType": "ORDER_CONFIRMED",
		"payload": map[string]any{
			"orderId":        orderID,
			"vendorId":       vendorPrincipal.VendorID,
			"amount":         "1000",
			"commissionRate": "10",
			"date":           "2025-03-15T00:00:00Z",
		},
	}
}

func (s *LedgerAPITestSuite) TestHealth() {
	w := s.call(http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
}

func (s *LedgerAPITestSuite) TestVoucherLifecycle() {
	cash := s.createAccount("ASSET", "Petty Cash")
	capital := s.createAccount("EQUITY", "Founder Capital")
	admin := s.bearer(adminPrincipal)

	var draft dto.VoucherResponse
	s.decode(s.expect(http.StatusCreated, s.call(http.MethodPost, "/api/v1/vouchers", admin, s.journal(cash, capital, "100", "100"))), &draft)
	s.Equal(domain.VoucherDraft, draft.Status)
	s.Equal("JV25030001", draft.VoucherNumber)

	var posted dto.VoucherResponse
	s.decode(s.expect(http.StatusOK, s.call(http.MethodPost, "/api/v1/vouchers/"+draft.VoucherID+"/post", admin, nil)), &posted)
	s.Equal(domain.VoucherPosted, posted.Status)

	w := s.call(http.MethodPost, "/api/v1/vouchers/"+draft.VoucherID+"/post", admin, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("INVALID_STATE", s.kind(w))

	var tb dto.TrialBalanceResponse
	s.decode(s.expect(http.StatusOK, s.call(http.MethodGet, "/api/v1/reports/trial-balance", admin, nil)), &tb)
	s.True(tb.IsBalanced)
	s.True(tb.TotalDebit.Equal(decimal.NewFromInt(100)), tb.TotalDebit.String())

	var reversal dto.VoucherResponse
	s.decode(s.expect(http.StatusCreated, s.call(http.MethodPost, "/api/v1/vouchers/"+draft.VoucherID+"/reverse", admin,
		map[string]any{"reason": "entered twice"})), &reversal)
	s.Equal(domain.VoucherReversal, reversal.VoucherType)
	s.Equal(domain.VoucherPosted, reversal.Status)

	var original dto.VoucherResponse
	s.decode(s.expect(http.StatusOK, s.call(http.MethodGet, "/api/v1/vouchers/"+draft.VoucherID, admin, nil)), &original)
	s.Equal(domain.VoucherReversed, original.Status)
	s.True(original.IsReversed)

	w = s.call(http.MethodPost, "/api/v1/vouchers/"+draft.VoucherID+"/reverse", admin, map[string]any{"reason": "again"})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *LedgerAPITestSuite) TestCreateVoucher_Rejections() {
	cash := s.createAccount("ASSET", "Petty Cash")
	capital := s.createAccount("EQUITY", "Founder Capital")
	admin := s.bearer(adminPrincipal)

	w := s.call(http.MethodPost, "/api/v1/vouchers", admin, s.journal(cash, capital, "60", "40"))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("UNBALANCED_VOUCHER", s.kind(w))

	w = s.call(http.MethodPost, "/api/v1/vouchers", admin, s.journal(cash, "no-such-account", "10", "10"))
	s.Equal(http.StatusNotFound, w.Code)

	body := s.journal(cash, capital, "10", "10")
	body["voucherDate"] = "15/03/2025"
	w = s.call(http.MethodPost, "/api/v1/vouchers", admin, body)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.call(http.MethodPost, "/api/v1/vouchers", s.bearer(vendorPrincipal),
		map[string]any{"entityType": "ADMIN", "voucherType": "JOURNAL", "voucherDate": "2025-03-15"})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *LedgerAPITestSuite) TestCancelDraft() {
	cash := s.createAccount("ASSET", "Petty Cash")
	capital := s.createAccount("EQUITY", "Founder Capital")
	admin := s.bearer(adminPrincipal)

	var draft dto.VoucherResponse
	s.decode(s.expect(http.StatusCreated, s.call(http.MethodPost, "/api/v1/vouchers", admin, s.journal(cash, capital, "5", "5"))), &draft)

	w := s.call(http.MethodPost, "/api/v1/vouchers/"+draft.VoucherID+"/cancel", admin, map[string]any{})
	s.Equal(http.StatusBadRequest, w.Code, "a reason is required")

	var cancelled dto.VoucherResponse
	s.decode(s.expect(http.StatusOK, s.call(http.MethodPost, "/api/v1/vouchers/"+draft.VoucherID+"/cancel", admin,
		map[string]any{"reason": "typo"})), &cancelled)
	s.Equal(domain.VoucherCancelled, cancelled.Status)

	w = s.call(http.MethodPost, "/api/v1/vouchers/"+draft.VoucherID+"/post", admin, nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *LedgerAPITestSuite) TestEvents_IntegrationKey() {
	key := s.integrationKey()

	var result dto.AutoVoucherResponse
	s.decode(s.expect(http.StatusCreated, s.call(http.MethodPost, "/api/v1/events", apiKey(key), orderEvent("o-1"))), &result)
	s.Equal(domain.EventOrderConfirmed, result.EventType)
	s.Equal("o-1", result.SourceID)
	s.NotEmpty(result.Vouchers)
	for _, v := range result.Vouchers {
		s.True(v.IsAuto)
		s.Equal(domain.VoucherPosted, v.Status)
	}

	w := s.call(http.MethodPost, "/api/v1/events", apiKey(key), orderEvent("o-1"))
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("EVENT_ALREADY_PROCESSED", s.kind(w))

	var payables dto.VendorPayablesResponse
	s.decode(s.expect(http.StatusOK, s.call(http.MethodGet, "/api/v1/reports/vendor-payables?vendorId="+vendorPrincipal.VendorID,
		s.bearer(vendorPrincipal), nil)), &payables)
	s.NotEmpty(payables.Data)
}

func (s *LedgerAPITestSuite) TestEvents_Rejections() {
	key := s.integrationKey()

	w := s.call(http.MethodPost, "/api/v1/events", apiKey(key), map[string]any{"eventType": "ORDER_SHIPPED", "payload": map[string]any{}})
	s.Equal(http.StatusBadRequest, w.Code)

	async := orderEvent("o-2")
	async["async"] = true
	w = s.call(http.MethodPost, "/api/v1/events", apiKey(key), async)
	s.Equal(http.StatusBadRequest, w.Code, "no queue is configured")

	w = s.call(http.MethodPost, "/api/v1/events", s.bearer(vendorPrincipal), orderEvent("o-3"))
	s.Equal(http.StatusForbidden, w.Code)

	w = s.call(http.MethodPost, "/api/v1/events", apiKey("bogus.key"), orderEvent("o-4"))
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *LedgerAPITestSuite) TestAdminOnlyRoutes() {
	s.createAccount("ASSET", "Petty Cash")
	vendor := s.bearer(vendorPrincipal)
	for _, url := range []string{"/api/v1/audit-logs", "/api/v1/integration-keys"} {
		w := s.call(http.MethodGet, url, vendor, nil)
		s.Equal(http.StatusForbidden, w.Code, url)
		s.Equal("PERMISSION", s.kind(w))
	}

	var logs dto.ListAuditLogsResponse
	s.decode(s.expect(http.StatusOK, s.call(http.MethodGet, "/api/v1/audit-logs", s.bearer(adminPrincipal), nil)), &logs)
	s.NotEmpty(logs.Data, "account creation is audited")
}

func (s *LedgerAPITestSuite) TestIntegrity() {
	w := s.expect(http.StatusOK, s.call(http.MethodGet, "/api/v1/integrity", s.bearer(adminPrincipal), nil))
	s.Contains(w.Body.String(), "issues")
}
