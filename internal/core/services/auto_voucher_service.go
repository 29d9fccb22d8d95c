package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/utils/accounting"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// eventHandler books one event type inside the event's transaction.
type eventHandler func(ctx context.Context, tx portsrepo.TxRepositories, ev domain.AccountingEvent, date time.Time, actorID string) (*domain.AutoVoucherResult, error)

// autoVoucherService turns marketplace events into posted vouchers.
type autoVoucherService struct {
	BaseService
	uow      portsrepo.UnitOfWork
	vouchers portssvc.VoucherTxSvc
	audit    portssvc.AuditRecorderSvc
	validate *validator.Validate
	handlers map[domain.EventType]eventHandler
}

// NewAutoVoucherService creates the auto-voucher engine on top of the voucher service.
func NewAutoVoucherService(uow portsrepo.UnitOfWork, vouchers portssvc.VoucherTxSvc, audit portssvc.AuditRecorderSvc, opts ...Option) portssvc.AutoVoucherSvc {
	svc := &autoVoucherService{
		uow:      uow,
		vouchers: vouchers,
		audit:    audit,
		validate: NewEventValidator(),
	}
	svc.apply(opts)
	svc.handlers = map[domain.EventType]eventHandler{
		domain.EventOrderConfirmed:     svc.orderConfirmed,
		domain.EventOrderDelivered:     svc.orderDelivered,
		domain.EventPaymentReceived:    svc.paymentReceived,
		domain.EventSettlementReceived: svc.settlementReceived,
		domain.EventVendorPayout:       svc.vendorPayout,
		domain.EventRefundInitiated:    svc.refundInitiated,
	}
	return svc
}

var _ portssvc.AutoVoucherSvc = (*autoVoucherService)(nil)

// NewEventValidator returns a validator that understands the decimal tags used on
// event payloads: dgt0 (> 0), dgte0 (>= 0), dpct (0..100) and dscale (at most
// accounting.MoneyScale decimal places).
func NewEventValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	hundred := decimal.NewFromInt(100)
	decimalRule := func(ok func(decimal.Decimal) bool) validator.Func {
		return func(fl validator.FieldLevel) bool {
			d, isDecimal := fl.Field().Interface().(decimal.Decimal)
			return isDecimal && ok(d)
		}
	}
	_ = v.RegisterValidation("dgt0", decimalRule(func(d decimal.Decimal) bool { return d.IsPositive() }))
	_ = v.RegisterValidation("dgte0", decimalRule(func(d decimal.Decimal) bool { return !d.IsNegative() }))
	_ = v.RegisterValidation("dpct", decimalRule(func(d decimal.Decimal) bool {
		return !d.IsNegative() && d.LessThanOrEqual(hundred)
	}))
	_ = v.RegisterValidation("dscale", decimalRule(accounting.WithinScale))
	return v
}

func failedTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}

func (s *autoVoucherService) SupportedEvents() []domain.EventType {
	out := make([]domain.EventType, 0, len(s.handlers))
	for _, t := range domain.AllEventTypes {
		if _, ok := s.handlers[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// CreateAutoVoucher books every voucher the event implies, or none of them.
func (s *autoVoucherService) CreateAutoVoucher(ctx context.Context, ev domain.AccountingEvent, actorID string) (*domain.AutoVoucherResult, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: event is required", apperrors.ErrValidation)
	}
	eventType := ev.EventType()
	handle, ok := s.handlers[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported event type %q", apperrors.ErrValidation, eventType)
	}
	if err := s.validate.Struct(ev); err != nil {
		s.recordEvent(eventType, "invalid")
		if failedTag(err, "dscale") {
			return nil, fmt.Errorf("%w: %s payload: %v", apperrors.ErrMalformedEntry, eventType, err)
		}
		return nil, fmt.Errorf("%w: %s payload: %v", apperrors.ErrValidation, eventType, err)
	}

	date := ev.OccurredOn()
	if date.IsZero() {
		date = s.now()
	}
	date = dateOnly(date)

	logger := s.GetLogger(ctx).With(
		slog.String("event_type", string(eventType)),
		slog.String("source_id", ev.SourceID()))

	var result *domain.AutoVoucherResult
	err := s.withSequenceRetry(ctx, "auto_voucher", func() error {
		return s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
			if err := tx.ProcessedEvents().MarkEventProcessed(ctx, eventType, ev.SourceID(), s.now()); err != nil {
				if errors.Is(err, apperrors.ErrDuplicate) {
					return fmt.Errorf("%w: %s %s", apperrors.ErrEventAlreadyProcessed, eventType, ev.SourceID())
				}
				return err
			}
			r, err := handle(ctx, tx, ev, date, actorID)
			if err != nil {
				return err
			}
			r.EventType = eventType
			r.SourceID = ev.SourceID()
			result = r
			return s.audit.Record(ctx, tx, portssvc.AuditRecord{
				Action:     domain.AuditAutoVoucherEvent,
				EntityName: "event",
				EntityID:   string(eventType) + ":" + ev.SourceID(),
				ActorID:    actorID,
				After:      ev,
			})
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrEventAlreadyProcessed) {
			s.recordEvent(eventType, "replayed")
			logger.Info("Event already processed")
		} else {
			s.recordEvent(eventType, "failed")
			logger.Error("Failed to book event", slog.String("error", err.Error()))
		}
		return nil, err
	}

	s.recordEvent(eventType, "booked")
	for _, v := range result.Vouchers {
		s.posted(ctx, v)
	}
	logger.Info("Event booked", slog.Int("vouchers", len(result.Vouchers)))
	return result, nil
}

func (s *autoVoucherService) recordEvent(eventType domain.EventType, outcome string) {
	if s.metrics != nil {
		s.metrics.EventHandled(string(eventType), outcome)
	}
}

// payloadAs accepts both the value and the pointer form of an event payload.
func payloadAs[T any](ev domain.AccountingEvent) (T, error) {
	switch p := any(ev).(type) {
	case T:
		return p, nil
	case *T:
		if p != nil {
			return *p, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: unexpected payload %T for %s", apperrors.ErrValidation, ev, ev.EventType())
}

// booking collects the vouchers of one event.
type booking struct {
	svc     *autoVoucherService
	tx      portsrepo.TxRepositories
	actorID string
	date    time.Time
	event   domain.EventType
	result  *domain.AutoVoucherResult
}

func (s *autoVoucherService) newBooking(tx portsrepo.TxRepositories, eventType domain.EventType, date time.Time, actorID string) *booking {
	return &booking{
		svc:     s,
		tx:      tx,
		actorID: actorID,
		date:    date,
		event:   eventType,
		result:  &domain.AutoVoucherResult{Vouchers: []domain.Voucher{}},
	}
}

func (b *booking) account(ctx context.Context, entity domain.EntityRef, key domain.AccountKey, subject string) (string, error) {
	account, err := resolveAccount(ctx, b.tx.Accounts(), entity, key, subject)
	if err != nil {
		return "", err
	}
	return account.AccountID, nil
}

// post creates and posts one voucher of the event.
func (b *booking) post(ctx context.Context, entity domain.EntityRef, voucherType domain.VoucherType, vendorID, sourceRef, narration string, entries ...domain.EntrySpec) (*domain.Voucher, error) {
	eventType := b.event
	draft, err := b.svc.vouchers.CreateVoucherTx(ctx, b.tx, domain.VoucherSpec{
		Entity:      entity,
		VoucherType: voucherType,
		VoucherDate: b.date,
		Narration:   narration,
		SourceRef:   sourceRef,
		VendorID:    vendorID,
		IsAuto:      true,
		EventType:   &eventType,
		Entries:     entries,
	}, b.actorID)
	if err != nil {
		return nil, err
	}
	posted, err := b.svc.vouchers.PostVoucherTx(ctx, b.tx, draft.VoucherID, b.actorID)
	if err != nil {
		return nil, err
	}
	b.result.Vouchers = append(b.result.Vouchers, *posted)
	return posted, nil
}

// positive drops zero-amount lines, which a voucher may not carry.
func positive(lines ...domain.EntrySpec) []domain.EntrySpec {
	out := make([]domain.EntrySpec, 0, len(lines))
	for _, l := range lines {
		if l.Debit.IsPositive() || l.Credit.IsPositive() {
			out = append(out, l)
		}
	}
	return out
}

// orderConfirmed: vendor SALES Dr Customer Receivable / Cr Sales; admin COMMISSION
// Dr Commission Receivable / Cr Commission Income.
func (s *autoVoucherService) orderConfirmed(ctx context.Context, tx portsrepo.TxRepositories, ev domain.AccountingEvent, date time.Time, actorID string) (*domain.AutoVoucherResult, error) {
	e, err := payloadAs[domain.OrderConfirmed](ev)
	if err != nil {
		return nil, err
	}
	b := s.newBooking(tx, e.EventType(), date, actorID)
	vendor := domain.VendorEntity(e.VendorID)
	admin := domain.AdminEntity()

	receivable, err := b.account(ctx, vendor, domain.KeyCustomerReceivable, "")
	if err != nil {
		return nil, err
	}
	sales, err := b.account(ctx, vendor, domain.KeySalesRevenue, "")
	if err != nil {
		return nil, err
	}
	if _, err := b.post(ctx, vendor, domain.VoucherSales, e.VendorID, e.OrderID,
		fmt.Sprintf("Sale for order %s", e.OrderID),
		accounting.Dr(receivable, e.Amount),
		accounting.Cr(sales, e.Amount),
	); err != nil {
		return nil, err
	}

	commission := accounting.CommissionAmount(e.Amount, e.CommissionRate)
	if !commission.IsPositive() {
		return b.result, nil
	}
	commissionReceivable, err := b.account(ctx, admin, domain.KeyCommissionReceivable, "")
	if err != nil {
		return nil, err
	}
	commissionIncome, err := b.account(ctx, admin, domain.KeyCommissionIncome, "")
	if err != nil {
		return nil, err
	}
	cv, err := b.post(ctx, admin, domain.VoucherCommission, e.VendorID, e.OrderID,
		fmt.Sprintf("Commission %s%% on order %s", e.CommissionRate.String(), e.OrderID),
		accounting.Dr(commissionReceivable, commission),
		accounting.Cr(commissionIncome, commission),
	)
	if err != nil {
		return nil, err
	}

	record := domain.CommissionRecord{
		CommissionID: uuid.NewString(),
		OrderID:      e.OrderID,
		VendorID:     e.VendorID,
		OrderAmount:  e.Amount,
		Rate:         e.CommissionRate,
		Amount:       commission,
		VoucherID:    cv.VoucherID,
		Status:       domain.CommissionRecognized,
		CreatedAt:    s.now(),
	}
	if err := tx.Commissions().SaveCommission(ctx, record); err != nil {
		return nil, err
	}
	b.result.Commissions = append(b.result.Commissions, record)
	return b.result, nil
}

// orderDelivered: vendor DELIVERY Dr Cost of Goods Sold / Cr Inventory.
func (s *autoVoucherService) orderDelivered(ctx context.Context, tx portsrepo.TxRepositories, ev domain.AccountingEvent, date time.Time, actorID string) (*domain.AutoVoucherResult, error) {
	e, err := payloadAs[domain.OrderDelivered](ev)
	if err != nil {
		return nil, err
	}
	b := s.newBooking(tx, e.EventType(), date, actorID)
	vendor := domain.VendorEntity(e.VendorID)

	cogs, err := b.account(ctx, vendor, domain.KeyCostOfGoodsSold, "")
	if err != nil {
		return nil, err
	}
	inventory, err := b.account(ctx, vendor, domain.KeyInventory, "")
	if err != nil {
		return nil, err
	}
	if _, err := b.post(ctx, vendor, domain.VoucherDelivery, e.VendorID, e.OrderID,
		fmt.Sprintf("Goods delivered for order %s", e.OrderID),
		accounting.Dr(cogs, e.CostAmount),
		accounting.Cr(inventory, e.CostAmount),
	); err != nil {
		return nil, err
	}
	return b.result, nil
}

// paymentReceived: admin RECEIPT Dr Gateway Clearing / Cr Customer Advances; vendor
// RECEIPT Dr Platform Receivable (net) + Dr Commission Expense / Cr Customer Receivable.
// The payment is kept PENDING until a settlement picks it up.
func (s *autoVoucherService) paymentReceived(ctx context.Context, tx portsrepo.TxRepositories, ev domain.AccountingEvent, date time.Time, actorID string) (*domain.AutoVoucherResult, error) {
	e, err := payloadAs[domain.PaymentReceived](ev)
	if err != nil {
		return nil, err
	}
	b := s.newBooking(tx, e.EventType(), date, actorID)
	vendor := domain.VendorEntity(e.VendorID)
	admin := domain.AdminEntity()
	commission := accounting.CommissionAmount(e.Amount, e.CommissionRate)
	net := e.Amount.Sub(commission)

	clearing, err := b.account(ctx, admin, domain.KeyGatewayClearing, "")
	if err != nil {
		return nil, err
	}
	advances, err := b.account(ctx, admin, domain.KeyCustomerAdvances, "")
	if err != nil {
		return nil, err
	}
	platformReceivable, err := b.account(ctx, vendor, domain.KeyPlatformReceivable, "")
	if err != nil {
		return nil, err
	}
	commissionExpense, err := b.account(ctx, vendor, domain.KeyCommissionExpense, "")
	if err != nil {
		return nil, err
	}
	customerReceivable, err := b.account(ctx, vendor, domain.KeyCustomerReceivable, "")
	if err != nil {
		return nil, err
	}

	narration := fmt.Sprintf("Payment %s for order %s", e.PaymentID, e.OrderID)
	adminVoucher, err := b.post(ctx, admin, domain.VoucherReceipt, e.VendorID, e.PaymentID, narration,
		accounting.Dr(clearing, e.Amount),
		accounting.Cr(advances, e.Amount),
	)
	if err != nil {
		return nil, err
	}
	if _, err := b.post(ctx, vendor, domain.VoucherReceipt, e.VendorID, e.PaymentID, narration,
		positive(
			accounting.Dr(platformReceivable, net),
			accounting.Dr(commissionExpense, commission),
			accounting.Cr(customerReceivable, e.Amount),
		)...,
	); err != nil {
		return nil, err
	}

	payment := domain.PaymentTransaction{
		PaymentID:  e.PaymentID,
		OrderID:    e.OrderID,
		VendorID:   e.VendorID,
		Amount:     e.Amount,
		Commission: commission,
		Status:     domain.PaymentPending,
		VoucherID:  adminVoucher.VoucherID,
		CreatedAt:  s.now(),
	}
	if err := tx.Payments().SavePayment(ctx, payment); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: payment %s is already recorded", apperrors.ErrConflict, e.PaymentID)
		}
		return nil, err
	}
	return b.result, nil
}

// settlementReceived: admin SETTLEMENT moving the gross out of Gateway Clearing into
// the bank net of the fee, and releasing Customer Advances into each vendor's payable
// and the collected commission.
func (s *autoVoucherService) settlementReceived(ctx context.Context, tx portsrepo.TxRepositories, ev domain.AccountingEvent, date time.Time, actorID string) (*domain.AutoVoucherResult, error) {
	e, err := payloadAs[domain.SettlementReceived](ev)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(e.PaymentIDs))
	for _, id := range e.PaymentIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: payment %s listed twice", apperrors.ErrValidation, id)
		}
		seen[id] = true
	}

	payments, err := tx.Payments().FindPaymentsForUpdate(ctx, e.PaymentIDs)
	if err != nil {
		return nil, err
	}
	gross, commission := decimal.Zero, decimal.Zero
	netByVendor := make(map[string]decimal.Decimal)
	for _, id := range e.PaymentIDs {
		p, ok := payments[id]
		if !ok {
			return nil, fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, id)
		}
		if p.Status != domain.PaymentPending {
			return nil, fmt.Errorf("%w: payment %s is %s", apperrors.ErrInvalidState, id, p.Status)
		}
		gross = gross.Add(p.Amount)
		commission = commission.Add(p.Commission)
		netByVendor[p.VendorID] = netByVendor[p.VendorID].Add(p.NetAmount())
	}
	if e.GatewayFee.GreaterThan(gross) {
		return nil, fmt.Errorf("%w: gateway fee %s exceeds settled gross %s", apperrors.ErrValidation, e.GatewayFee, gross)
	}

	b := s.newBooking(tx, e.EventType(), date, actorID)
	admin := domain.AdminEntity()
	bank, err := b.account(ctx, admin, domain.KeyPlatformBank, "")
	if err != nil {
		return nil, err
	}
	fees, err := b.account(ctx, admin, domain.KeyGatewayFees, "")
	if err != nil {
		return nil, err
	}
	clearing, err := b.account(ctx, admin, domain.KeyGatewayClearing, "")
	if err != nil {
		return nil, err
	}
	advances, err := b.account(ctx, admin, domain.KeyCustomerAdvances, "")
	if err != nil {
		return nil, err
	}
	commissionReceivable, err := b.account(ctx, admin, domain.KeyCommissionReceivable, "")
	if err != nil {
		return nil, err
	}

	lines := []domain.EntrySpec{
		accounting.Dr(bank, gross.Sub(e.GatewayFee)),
		accounting.Dr(fees, e.GatewayFee),
		accounting.Cr(clearing, gross),
		accounting.Dr(advances, gross),
	}
	vendors := make([]string, 0, len(netByVendor))
	for v := range netByVendor {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)
	for _, v := range vendors {
		payable, err := b.account(ctx, admin, domain.KeyVendorPayable, v)
		if err != nil {
			return nil, err
		}
		lines = append(lines, accounting.Cr(payable, netByVendor[v]))
	}
	lines = append(lines, accounting.Cr(commissionReceivable, commission))

	if _, err := b.post(ctx, admin, domain.VoucherSettlement, "", e.SettlementID,
		fmt.Sprintf("Gateway settlement %s (%d payments)", e.SettlementID, len(e.PaymentIDs)),
		positive(lines...)...,
	); err != nil {
		return nil, err
	}
	if err := tx.Payments().MarkPaymentsSettled(ctx, e.PaymentIDs, e.SettlementID, s.now()); err != nil {
		return nil, err
	}
	return b.result, nil
}

// vendorPayout: admin PAYOUT Dr Vendor Payable / Cr Platform Bank; vendor PAYOUT
// Dr Bank / Cr Platform Receivable.
func (s *autoVoucherService) vendorPayout(ctx context.Context, tx portsrepo.TxRepositories, ev domain.AccountingEvent, date time.Time, actorID string) (*domain.AutoVoucherResult, error) {
	e, err := payloadAs[domain.VendorPayout](ev)
	if err != nil {
		return nil, err
	}
	b := s.newBooking(tx, e.EventType(), date, actorID)
	vendor := domain.VendorEntity(e.VendorID)
	admin := domain.AdminEntity()

	payable, err := b.account(ctx, admin, domain.KeyVendorPayable, e.VendorID)
	if err != nil {
		return nil, err
	}
	platformBank, err := b.account(ctx, admin, domain.KeyPlatformBank, "")
	if err != nil {
		return nil, err
	}
	vendorBank, err := b.account(ctx, vendor, domain.KeyVendorBank, "")
	if err != nil {
		return nil, err
	}
	platformReceivable, err := b.account(ctx, vendor, domain.KeyPlatformReceivable, "")
	if err != nil {
		return nil, err
	}

	narration := fmt.Sprintf("Payout %s to vendor %s", e.PayoutID, e.VendorID)
	if _, err := b.post(ctx, admin, domain.VoucherPayout, e.VendorID, e.PayoutID, narration,
		accounting.Dr(payable, e.Amount),
		accounting.Cr(platformBank, e.Amount),
	); err != nil {
		return nil, err
	}
	if _, err := b.post(ctx, vendor, domain.VoucherPayout, e.VendorID, e.PayoutID, narration,
		accounting.Dr(vendorBank, e.Amount),
		accounting.Cr(platformReceivable, e.Amount),
	); err != nil {
		return nil, err
	}
	return b.result, nil
}

// refundInitiated: vendor REFUND Dr Sales Returns / Cr Platform Receivable; admin
// REFUND Dr Vendor Payable / Cr Platform Bank.
func (s *autoVoucherService) refundInitiated(ctx context.Context, tx portsrepo.TxRepositories, ev domain.AccountingEvent, date time.Time, actorID string) (*domain.AutoVoucherResult, error) {
	e, err := payloadAs[domain.RefundInitiated](ev)
	if err != nil {
		return nil, err
	}
	b := s.newBooking(tx, e.EventType(), date, actorID)
	vendor := domain.VendorEntity(e.VendorID)
	admin := domain.AdminEntity()

	returns, err := b.account(ctx, vendor, domain.KeySalesReturns, "")
	if err != nil {
		return nil, err
	}
	platformReceivable, err := b.account(ctx, vendor, domain.KeyPlatformReceivable, "")
	if err != nil {
		return nil, err
	}
	payable, err := b.account(ctx, admin, domain.KeyVendorPayable, e.VendorID)
	if err != nil {
		return nil, err
	}
	platformBank, err := b.account(ctx, admin, domain.KeyPlatformBank, "")
	if err != nil {
		return nil, err
	}

	narration := fmt.Sprintf("Refund %s for order %s", e.RefundID, e.OrderID)
	if _, err := b.post(ctx, vendor, domain.VoucherRefund, e.VendorID, e.RefundID, narration,
		accounting.Dr(returns, e.Amount),
		accounting.Cr(platformReceivable, e.Amount),
	); err != nil {
		return nil, err
	}
	if _, err := b.post(ctx, admin, domain.VoucherRefund, e.VendorID, e.RefundID, narration,
		accounting.Dr(payable, e.Amount),
		accounting.Cr(platformBank, e.Amount),
	); err != nil {
		return nil, err
	}
	return b.result, nil
}
