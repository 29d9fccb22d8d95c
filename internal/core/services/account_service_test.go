package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/core/services"
	"github.com/SscSPs/marketplace_ledger/internal/repositories/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockAccessValidator is a mock implementation of portssvc.EntityAccessValidator
type MockAccessValidator struct {
	mock.Mock
}

func (m *MockAccessValidator) ValidateEntityAccess(ctx context.Context, entity domain.EntityRef, actorID string) error {
	args := m.Called(ctx, entity, actorID)
	return args.Error(0)
}

type AccountServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	access  *MockAccessValidator
	repos   portsrepo.RepositoryProvider
	service portssvc.AccountSvcFacade
	vendor  domain.EntityRef
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.access = new(MockAccessValidator)
	s.repos = memory.NewRepositoryProvider(memory.New())
	audit := services.NewAuditService(s.repos.AuditRepo, nil)

	svc, err := services.NewAccountService(s.repos.UnitOfWork, s.repos.AccountRepo, s.access, audit)
	s.Require().NoError(err)
	s.service = svc
	s.vendor = domain.VendorEntity("fresh")
}

func (s *AccountServiceTestSuite) TearDownTest() {
	s.access.AssertExpectations(s.T())
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) allow() {
	s.access.On("ValidateEntityAccess", mock.Anything, mock.Anything, adminActor).Return(nil)
}

func (s *AccountServiceTestSuite) TestNewAccountService_RequiresValidator() {
	_, err := services.NewAccountService(s.repos.UnitOfWork, s.repos.AccountRepo, nil, nil)
	s.Error(err)
}

func (s *AccountServiceTestSuite) TestCreateAccount_SequentialCodes() {
	s.allow()
	cmd := portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Asset, Name: "Cash"}

	first, err := s.service.CreateAccount(s.ctx, cmd, adminActor)
	s.Require().NoError(err)
	cmd.Name = "Bank"
	second, err := s.service.CreateAccount(s.ctx, cmd, adminActor)
	s.Require().NoError(err)

	s.Equal("10001", first.Code)
	s.Equal("10002", second.Code)
	s.Equal(domain.DebitNature, first.Nature)
	s.True(first.CanDelete)
	s.True(first.IsActive)
	s.False(first.IsSystem)

	income, err := s.service.CreateAccount(s.ctx, portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Income, Name: "Services"}, adminActor)
	s.Require().NoError(err)
	s.Equal("40001", income.Code)
	s.Equal(domain.CreditNature, income.Nature)
}

func (s *AccountServiceTestSuite) TestCreateAccount_AccessDenied() {
	denied := fmt.Errorf("%w: vendor v2 may not access %s", apperrors.ErrPermission, s.vendor)
	s.access.On("ValidateEntityAccess", mock.Anything, s.vendor, "intruder").Return(denied)

	account, err := s.service.CreateAccount(s.ctx, portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Asset, Name: "Cash"}, "intruder")

	s.Nil(account)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.ErrorIs(err, apperrors.ErrPermission)
}

func (s *AccountServiceTestSuite) TestCreateAccount_Validation() {
	s.allow()
	parent, err := s.service.CreateAccount(s.ctx, portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Asset, Name: "Current Assets"}, adminActor)
	s.Require().NoError(err)
	missing := "missing"
	otherClass, err := s.service.CreateAccount(s.ctx, portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Expense, Name: "Rent"}, adminActor)
	s.Require().NoError(err)

	tests := []struct {
		name string
		cmd  portssvc.CreateAccountCmd
	}{
		{"unknown class", portssvc.CreateAccountCmd{Entity: s.vendor, Class: "FUNDS", Name: "x"}},
		{"blank name", portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Asset, Name: "   "}},
		{"missing parent", portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Asset, Name: "x", ParentAccountID: &missing}},
		{"parent of another class", portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Asset, Name: "x", ParentAccountID: &otherClass.AccountID}},
		{"parent of another entity", portssvc.CreateAccountCmd{Entity: domain.AdminEntity(), Class: domain.Asset, Name: "x", ParentAccountID: &parent.AccountID}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CreateAccount(s.ctx, tt.cmd, adminActor)
			s.ErrorIs(err, apperrors.ErrValidation)
		})
	}

	child, err := s.service.CreateAccount(s.ctx, portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Asset, Name: "Till", ParentAccountID: &parent.AccountID}, adminActor)
	s.Require().NoError(err)
	s.Equal(parent.AccountID, *child.ParentAccountID)
}

func (s *AccountServiceTestSuite) TestProvisionEntity_Idempotent() {
	s.allow()

	created, err := s.service.ProvisionEntity(s.ctx, s.vendor, adminActor)
	s.Require().NoError(err)
	s.Len(created, len(domain.VendorSystemAccounts)+1)

	payable, err := s.service.ResolveAccount(s.ctx, domain.AdminEntity(), domain.KeyVendorPayable, "fresh")
	s.Require().NoError(err)
	s.Equal(domain.Liability, payable.Class)
	s.True(payable.IsSystem)
	s.Equal("fresh", payable.KeySubject)

	again, err := s.service.ProvisionEntity(s.ctx, s.vendor, adminActor)
	s.Require().NoError(err)
	s.NotNil(again)
	s.Empty(again)

	accounts, total, err := s.service.ListAccounts(s.ctx, portssvc.ListAccountsParams{Entity: s.vendor, Page: domain.PageRequest{Page: 1, Limit: 50}})
	s.Require().NoError(err)
	s.Equal(len(domain.VendorSystemAccounts), total)
	s.Len(accounts, total)

	_, err = s.service.ResolveAccount(s.ctx, domain.AdminEntity(), domain.KeyVendorPayable, "someone-else")
	s.ErrorIs(err, apperrors.ErrAccountResolution)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestProvisionEntity_VendorNeedsAdminBooks() {
	s.access.On("ValidateEntityAccess", mock.Anything, s.vendor, adminActor).Return(nil).Once()
	s.access.On("ValidateEntityAccess", mock.Anything, domain.AdminEntity(), adminActor).
		Return(fmt.Errorf("%w: vendor fresh may not access ADMIN", apperrors.ErrPermission)).Once()

	created, err := s.service.ProvisionEntity(s.ctx, s.vendor, adminActor)

	s.Nil(created)
	s.ErrorIs(err, apperrors.ErrPermission)
	_, err = s.repos.AccountRepo.FindAccountByKey(s.ctx, domain.AdminEntity(), domain.KeyVendorPayable, "fresh")
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.repos.AccountRepo.FindAccountByKey(s.ctx, s.vendor, domain.KeySalesRevenue, "")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestProvisionEntity_InvalidEntity() {
	_, err := s.service.ProvisionEntity(s.ctx, domain.EntityRef{Type: domain.EntityVendor}, adminActor)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestSystemAccountsAreImmutable() {
	s.allow()
	_, err := s.service.ProvisionEntity(s.ctx, s.vendor, adminActor)
	s.Require().NoError(err)
	sales, err := s.service.ResolveAccount(s.ctx, s.vendor, domain.KeySalesRevenue, "")
	s.Require().NoError(err)

	name := "Revenue"
	_, err = s.service.UpdateAccount(s.ctx, sales.AccountID, portssvc.UpdateAccountCmd{Name: &name}, adminActor)
	s.ErrorIs(err, apperrors.ErrImmutable)

	err = s.service.DeleteAccount(s.ctx, sales.AccountID, adminActor)
	s.ErrorIs(err, apperrors.ErrImmutable)
}

func (s *AccountServiceTestSuite) TestUpdateAccount() {
	s.allow()
	account, err := s.service.CreateAccount(s.ctx, portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Expense, Name: "Rent"}, adminActor)
	s.Require().NoError(err)

	name, inactive := "Office Rent", false
	updated, err := s.service.UpdateAccount(s.ctx, account.AccountID, portssvc.UpdateAccountCmd{Name: &name, IsActive: &inactive}, adminActor)
	s.Require().NoError(err)
	s.Equal("Office Rent", updated.Name)
	s.False(updated.IsActive)
	s.Equal(account.Code, updated.Code)

	blank := " "
	_, err = s.service.UpdateAccount(s.ctx, account.AccountID, portssvc.UpdateAccountCmd{Name: &blank}, adminActor)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.UpdateAccount(s.ctx, "missing", portssvc.UpdateAccountCmd{Name: &name}, adminActor)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestDeleteAccount() {
	s.allow()
	parent, err := s.service.CreateAccount(s.ctx, portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Asset, Name: "Current Assets"}, adminActor)
	s.Require().NoError(err)
	_, err = s.service.CreateAccount(s.ctx, portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Asset, Name: "Till", ParentAccountID: &parent.AccountID}, adminActor)
	s.Require().NoError(err)
	loose, err := s.service.CreateAccount(s.ctx, portssvc.CreateAccountCmd{Entity: s.vendor, Class: domain.Asset, Name: "Unused"}, adminActor)
	s.Require().NoError(err)

	err = s.service.DeleteAccount(s.ctx, parent.AccountID, adminActor)
	s.ErrorIs(err, apperrors.ErrConflict, "an account with children is referenced")

	s.Require().NoError(s.service.DeleteAccount(s.ctx, loose.AccountID, adminActor))
	_, err = s.service.GetAccount(s.ctx, loose.AccountID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

// Draft and ledger lines both keep an account alive.
func TestDeleteAccount_ReferencedByLedger(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision()
	admin := domain.AdminEntity()
	cash := f.userAccount(admin, domain.Asset, "Cash")
	equity := f.account(admin, domain.KeyOwnerEquity, "")

	v, err := f.svc.Voucher.CreateVoucher(f.ctx, domain.VoucherSpec{
		Entity:      admin,
		VoucherType: domain.VoucherJournal,
		Entries:     []domain.EntrySpec{entry(cash.AccountID, "5", "0"), entry(equity.AccountID, "0", "5")},
	}, adminActor)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Account.DeleteAccount(f.ctx, cash.AccountID, adminActor); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("draft reference: got %v", err)
	}
	if _, err := f.svc.Voucher.PostVoucher(f.ctx, v.VoucherID, adminActor); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Account.DeleteAccount(f.ctx, cash.AccountID, adminActor); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("ledger reference: got %v", err)
	}
}
