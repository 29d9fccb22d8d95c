package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers and jobs.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Voucher        VoucherSvcFacade
	AutoVoucher    AutoVoucherSvc
	Reporting      ReportingSvc
	Audit          AuditSvcFacade
	Period         PeriodSvcFacade
	VendorPayable  VendorPayableSvcFacade
	Integrity      IntegritySvc
	IntegrationKey IntegrationKeySvcFacade
}
