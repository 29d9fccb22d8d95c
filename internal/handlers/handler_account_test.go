package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/authz"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/dto"
	"github.com/SscSPs/marketplace_ledger/internal/handlers"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, params portssvc.ListAccountsParams) ([]domain.Account, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Account), args.Int(1), args.Error(2)
}

func (m *MockAccountService) ResolveAccount(ctx context.Context, entity domain.EntityRef, key domain.AccountKey, subject string) (*domain.Account, error) {
	args := m.Called(ctx, entity, key, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, cmd portssvc.CreateAccountCmd, actorID string) (*domain.Account, error) {
	args := m.Called(ctx, cmd, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, cmd portssvc.UpdateAccountCmd, actorID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, cmd, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string, actorID string) error {
	args := m.Called(ctx, accountID, actorID)
	return args.Error(0)
}

func (m *MockAccountService) ProvisionEntity(ctx context.Context, entity domain.EntityRef, actorID string) ([]domain.Account, error) {
	args := m.Called(ctx, entity, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

const testJWTSecret = "test-secret-key-that-is-long-enough"

var (
	adminPrincipal  = domain.Principal{ActorID: "admin-1", Role: domain.RoleAdmin}
	vendorPrincipal = domain.Principal{ActorID: "user-7", Role: domain.RoleVendor, VendorID: "v-7"}
)

// --- Test Suite Setup ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.mockAccountService = new(MockAccountService)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(testJWTSecret))
	handlers.RegisterAccountRoutes(v1, suite.mockAccountService, authz.NewRoleAccessValidator())
}

func (suite *AccountHandlerTestSuite) TearDownTest() {
	suite.mockAccountService.AssertExpectations(suite.T())
}

func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}

func (suite *AccountHandlerTestSuite) do(method, url string, p *domain.Principal, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		token, err := middleware.NewToken(testJWTSecret, *p, time.Hour)
		suite.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AccountHandlerTestSuite) errorKind(w *httptest.ResponseRecorder) string {
	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Kind
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	cmd := portssvc.CreateAccountCmd{Entity: domain.AdminEntity(), Class: domain.Asset, Name: "Petty Cash"}
	created := &domain.Account{
		AccountID:   "acc-1",
		Entity:      domain.AdminEntity(),
		Code:        "1010",
		Name:        "Petty Cash",
		Class:       domain.Asset,
		Nature:      domain.Asset.Nature(),
		CanDelete:   true,
		IsActive:    true,
		AuditFields: domain.AuditFields{CreatedBy: adminPrincipal.ActorID},
	}
	suite.mockAccountService.On("CreateAccount", mock.Anything, cmd, adminPrincipal.ActorID).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", &adminPrincipal, map[string]any{"name": "Petty Cash", "class": "ASSET"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("acc-1", resp.AccountID)
	suite.Equal("1010", resp.Code)
	suite.Equal(domain.EntityAdmin, resp.EntityType)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_VendorDefaultsToOwnBooks() {
	cmd := portssvc.CreateAccountCmd{Entity: domain.VendorEntity("v-7"), Class: domain.Expense, Name: "Packaging"}
	suite.mockAccountService.On("CreateAccount", mock.Anything, cmd, vendorPrincipal.ActorID).
		Return(&domain.Account{AccountID: "acc-2", Entity: cmd.Entity, Class: domain.Expense, Name: "Packaging"}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", &vendorPrincipal, map[string]any{"name": "Packaging", "class": "EXPENSE"})

	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_VendorCannotTouchAdminBooks() {
	w := suite.do(http.MethodPost, "/api/v1/accounts", &vendorPrincipal,
		map[string]any{"entityType": "ADMIN", "name": "Sneaky", "class": "ASSET"})

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("PERMISSION", suite.errorKind(w))
	suite.mockAccountService.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_InvalidBody() {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown class", map[string]any{"name": "X", "class": "REVENUE"}},
		{"missing name", map[string]any{"class": "ASSET"}},
		{"vendor without id", map[string]any{"entityType": "VENDOR", "name": "X", "class": "ASSET"}},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.do(http.MethodPost, "/api/v1/accounts", &adminPrincipal, tt.body)
			suite.Equal(http.StatusBadRequest, w.Code)
			suite.Equal("VALIDATION", suite.errorKind(w))
		})
	}
}

func (suite *AccountHandlerTestSuite) TestMissingToken() {
	w := suite.do(http.MethodGet, "/api/v1/accounts", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockAccountService.On("GetAccount", mock.Anything, "missing").
		Return(nil, fmt.Errorf("%w: account missing", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/missing", &adminPrincipal, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("NOT_FOUND", suite.errorKind(w))
}

func (suite *AccountHandlerTestSuite) TestGetAccount_OtherVendorsBooks() {
	suite.mockAccountService.On("GetAccount", mock.Anything, "acc-8").
		Return(&domain.Account{AccountID: "acc-8", Entity: domain.VendorEntity("v-8")}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc-8", &vendorPrincipal, nil)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_PassesFilter() {
	class := domain.Income
	suite.mockAccountService.On("ListAccounts", mock.Anything, mock.MatchedBy(func(p portssvc.ListAccountsParams) bool {
		return p.Entity == domain.VendorEntity("v-7") && p.Class != nil && *p.Class == class && p.Page.Limit == 5
	})).Return([]domain.Account{{AccountID: "acc-3", Entity: domain.VendorEntity("v-7"), Class: class}}, 11, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts?class=INCOME&limit=5", &vendorPrincipal, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListAccountsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Data, 1)
	suite.Equal(11, resp.Pagination.Total)
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_SystemAccount() {
	suite.mockAccountService.On("DeleteAccount", mock.Anything, "sys-1", adminPrincipal.ActorID).
		Return(fmt.Errorf("%w: system account", apperrors.ErrImmutable)).Once()

	w := suite.do(http.MethodDelete, "/api/v1/accounts/sys-1", &adminPrincipal, nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("IMMUTABLE", suite.errorKind(w))
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_Success() {
	suite.mockAccountService.On("DeleteAccount", mock.Anything, "acc-1", adminPrincipal.ActorID).Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/accounts/acc-1", &adminPrincipal, nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *AccountHandlerTestSuite) TestProvisionEntity() {
	entity := domain.VendorEntity("v-9")
	suite.mockAccountService.On("ProvisionEntity", mock.Anything, entity, adminPrincipal.ActorID).
		Return([]domain.Account{{AccountID: "a", Entity: entity}, {AccountID: "b", Entity: entity}}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/entities/provision", &adminPrincipal,
		map[string]any{"entityType": "VENDOR", "entityId": "v-9"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ProvisionEntityResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Created, 2)
	suite.Equal("v-9", resp.EntityID)
}
