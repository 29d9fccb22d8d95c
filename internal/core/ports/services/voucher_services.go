package services

import (
	"context"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
)

// VoucherReaderSvc defines read operations for vouchers
type VoucherReaderSvc interface {
	GetVoucher(ctx context.Context, voucherID string) (*domain.Voucher, error)
	ListVouchers(ctx context.Context, filter domain.VoucherFilter, page domain.PageRequest) ([]domain.Voucher, int, error)
}

// VoucherWriterSvc drives the voucher state machine. Each call is one transaction.
type VoucherWriterSvc interface {
	// CreateVoucher validates the entry set and stores a DRAFT voucher.
	CreateVoucher(ctx context.Context, spec domain.VoucherSpec, actorID string) (*domain.Voucher, error)

	// PostVoucher materializes the draft entries into the ledger.
	PostVoucher(ctx context.Context, voucherID string, actorID string) (*domain.Voucher, error)

	// LockVoucher freezes a posted admin voucher against reversal.
	LockVoucher(ctx context.Context, voucherID string, actorID string) (*domain.Voucher, error)

	// ReverseVoucher posts a mirror REVERSAL voucher and returns it. A nil date uses today.
	ReverseVoucher(ctx context.Context, voucherID string, reason string, date *time.Time, actorID string) (*domain.Voucher, error)

	// CancelVoucher abandons a manual DRAFT voucher.
	CancelVoucher(ctx context.Context, voucherID string, reason string, actorID string) (*domain.Voucher, error)
}

// VoucherTxSvc exposes the voucher operations inside a caller-owned transaction.
type VoucherTxSvc interface {
	CreateVoucherTx(ctx context.Context, tx portsrepo.TxRepositories, spec domain.VoucherSpec, actorID string) (*domain.Voucher, error)
	PostVoucherTx(ctx context.Context, tx portsrepo.TxRepositories, voucherID string, actorID string) (*domain.Voucher, error)
}

// VoucherSvcFacade combines all voucher service interfaces
type VoucherSvcFacade interface {
	VoucherReaderSvc
	VoucherWriterSvc
	VoucherTxSvc
}
