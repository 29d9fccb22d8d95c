package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/SscSPs/marketplace_ledger/internal/utils"
	"github.com/google/subcommands"
)

type migrateCmd struct {
	env *Env
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending database migrations" }
func (*migrateCmd) Usage() string {
	return `ledgerctl migrate

  Applies every pending migration from MIGRATIONS_PATH to PGSQL_URL.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (c *migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.env.LoadConfig()
	if err != nil {
		return c.env.fail(err)
	}
	if err := c.env.Migrate(cfg); err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintln(c.env.Out, "migrations applied")
	return subcommands.ExitSuccess
}

type provisionCmd struct {
	env *Env
	entityFlags
}

func (*provisionCmd) Name() string     { return "provision" }
func (*provisionCmd) Synopsis() string { return "create the system accounts of an entity" }
func (*provisionCmd) Usage() string {
	return `ledgerctl provision -entity-type ADMIN
ledgerctl provision -entity-type VENDOR -entity-id <vendor>

  Creates the missing system accounts. Provisioning a vendor also creates its
  payable account in the admin books. Safe to run again.
`
}
func (c *provisionCmd) SetFlags(f *flag.FlagSet) { c.register(f, string(domain.EntityAdmin)) }

func (c *provisionCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	entity, err := c.entity()
	if err != nil {
		return c.env.fail(err)
	}
	return c.env.withServices(ctx, func(ctx context.Context, svc *portssvc.ServiceContainer) error {
		created, err := svc.Account.ProvisionEntity(ctx, entity, c.env.Actor)
		if err != nil {
			return err
		}
		for _, a := range created {
			fmt.Fprintf(c.env.Out, "created %s %s (%s)\n", a.Code, a.Name, a.Entity)
		}
		fmt.Fprintf(c.env.Out, "%s provisioned, %d accounts created\n", entity, len(created))
		return nil
	})
}

type integrityCmd struct {
	env *Env
	entityFlags
}

func (*integrityCmd) Name() string     { return "integrity" }
func (*integrityCmd) Synopsis() string { return "verify the posted ledger" }
func (*integrityCmd) Usage() string {
	return `ledgerctl integrity [-entity-type <type> [-entity-id <vendor>]]

  Checks every posted voucher against its ledger lines. Exits non-zero when a
  violation is found.
`
}
func (c *integrityCmd) SetFlags(f *flag.FlagSet) { c.register(f, "") }

func (c *integrityCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var scope *domain.EntityRef
	if c.isSet() {
		entity, err := c.entity()
		if err != nil {
			return c.env.fail(err)
		}
		scope = &entity
	}
	return c.env.withServices(ctx, func(ctx context.Context, svc *portssvc.ServiceContainer) error {
		issues, err := svc.Integrity.CheckIntegrity(ctx, scope)
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Fprintln(c.env.Out, "ledger is consistent")
			return nil
		}
		for _, issue := range issues {
			fmt.Fprintf(c.env.Out, "%s %s: %s (debit %s, credit %s)\n",
				issue.VoucherNumber, issue.VoucherID, issue.Problem, issue.LedgerDebit, issue.LedgerCredit)
		}
		return fmt.Errorf("%d integrity violations", len(issues))
	})
}

type rebuildPayablesCmd struct {
	env      *Env
	vendorID string
}

func (*rebuildPayablesCmd) Name() string     { return "rebuild-payables" }
func (*rebuildPayablesCmd) Synopsis() string { return "recompute the vendor payable cache" }
func (*rebuildPayablesCmd) Usage() string {
	return `ledgerctl rebuild-payables [-vendor <vendor>]

  Replays posted vouchers into the vendor payable cache and prints every
  vendor whose cached balance had drifted.
`
}
func (c *rebuildPayablesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.vendorID, "vendor", "", "Rebuild one vendor only.")
}

func (c *rebuildPayablesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.withServices(ctx, func(ctx context.Context, svc *portssvc.ServiceContainer) error {
		drifts, err := svc.VendorPayable.RebuildVendorPayables(ctx, c.vendorID, c.env.Actor)
		if err != nil {
			return err
		}
		for _, d := range drifts {
			fmt.Fprintf(c.env.Out, "%s: cached %s, rebuilt %s, drift %s\n", d.VendorID, d.Cached, d.Rebuilt, d.Drift)
		}
		fmt.Fprintf(c.env.Out, "%d vendors corrected\n", len(drifts))
		return nil
	})
}

type createKeyCmd struct {
	env  *Env
	name string
}

func (*createKeyCmd) Name() string     { return "create-key" }
func (*createKeyCmd) Synopsis() string { return "create an integration key" }
func (*createKeyCmd) Usage() string {
	return `ledgerctl create-key -name <name>

  Creates a key for the order and payment subsystem and prints it once.
`
}
func (c *createKeyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Key name.")
}

func (c *createKeyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		return c.env.fail(errors.New("-name is required"))
	}
	return c.env.withServices(ctx, func(ctx context.Context, svc *portssvc.ServiceContainer) error {
		key, plaintext, err := svc.IntegrationKey.CreateKey(ctx, c.name, c.env.Actor)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.env.Out, "key id: %s\nkey:    %s\n", key.KeyID, plaintext)
		return nil
	})
}

type issueTokenCmd struct {
	env      *Env
	actorID  string
	role     string
	vendorID string
	ttl      time.Duration
}

func (*issueTokenCmd) Name() string     { return "issue-token" }
func (*issueTokenCmd) Synopsis() string { return "sign a JWT for local testing" }
func (*issueTokenCmd) Usage() string {
	return `ledgerctl issue-token -actor <id> [-role admin|vendor] [-vendor <vendor>] [-ttl 1h]

  Signs a token with JWT_SECRET. Vendor tokens need -vendor.
`
}
func (c *issueTokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.actorID, "actor", "", "Actor id placed in the subject.")
	f.StringVar(&c.role, "role", string(domain.RoleAdmin), "Role claim.")
	f.StringVar(&c.vendorID, "vendor", "", "Vendor id claim.")
	f.DurationVar(&c.ttl, "ttl", 0, "Token lifetime; defaults to JWT_EXPIRY_DURATION.")
}

func (c *issueTokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.actorID == "" {
		return c.env.fail(errors.New("-actor is required"))
	}
	p := domain.Principal{ActorID: c.actorID, Role: domain.Role(c.role), VendorID: c.vendorID}
	switch p.Role {
	case domain.RoleAdmin:
	case domain.RoleSystem:
		return c.env.fail(errors.New("system clients authenticate with integration keys, see create-key"))
	case domain.RoleVendor:
		if p.VendorID == "" {
			return c.env.fail(errors.New("vendor tokens need -vendor"))
		}
	default:
		return c.env.fail(fmt.Errorf("unknown role %q", c.role))
	}

	cfg, err := c.env.LoadConfig()
	if err != nil {
		return c.env.fail(err)
	}
	ttl := c.ttl
	if ttl <= 0 {
		ttl = cfg.JWTExpiryDuration
	}
	token, err := middleware.NewToken(cfg.JWTSecret, p, ttl)
	if err != nil {
		return c.env.fail(err)
	}
	fmt.Fprintln(c.env.Out, token)
	return subcommands.ExitSuccess
}

type trialBalanceCmd struct {
	env *Env
	entityFlags
	asOf     string
	currency string
}

func (*trialBalanceCmd) Name() string     { return "trial-balance" }
func (*trialBalanceCmd) Synopsis() string { return "print the trial balance of an entity" }
func (*trialBalanceCmd) Usage() string {
	return `ledgerctl trial-balance [-entity-type VENDOR -entity-id <vendor>] [-as-of YYYY-MM-DD] [-currency INR]
`
}
func (c *trialBalanceCmd) SetFlags(f *flag.FlagSet) {
	c.register(f, string(domain.EntityAdmin))
	f.StringVar(&c.asOf, "as-of", "", "Report date; defaults to today.")
	f.StringVar(&c.currency, "currency", "INR", "ISO currency used to format amounts.")
}

func (c *trialBalanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	entity, err := c.entity()
	if err != nil {
		return c.env.fail(err)
	}
	var asOf *time.Time
	if c.asOf != "" {
		t, err := time.Parse(time.DateOnly, c.asOf)
		if err != nil {
			return c.env.fail(fmt.Errorf("invalid -as-of: %w", err))
		}
		asOf = &t
	}
	return c.env.withServices(ctx, func(ctx context.Context, svc *portssvc.ServiceContainer) error {
		tb, err := svc.Reporting.TrialBalance(ctx, entity, asOf)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(c.env.Out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(w, "Code\tAccount\tDebit\tCredit\tBalance\t\n")
		for _, row := range tb.Rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", row.AccountCode, row.AccountName,
				utils.FormatAmount(row.Debit, c.currency),
				utils.FormatAmount(row.Credit, c.currency),
				utils.FormatAmount(row.Balance, c.currency))
		}
		fmt.Fprintf(w, "\tTotal\t%s\t%s\t\t\n",
			utils.FormatAmount(tb.TotalDebit, c.currency),
			utils.FormatAmount(tb.TotalCredit, c.currency))
		if err := w.Flush(); err != nil {
			return err
		}
		if !tb.Difference.IsZero() {
			return fmt.Errorf("trial balance is off by %s", tb.Difference)
		}
		return nil
	})
}
