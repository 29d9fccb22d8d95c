// Package cli holds the ledgerctl subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SscSPs/marketplace_ledger/internal/authz"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/core/services"
	"github.com/SscSPs/marketplace_ledger/internal/platform/config"
	"github.com/SscSPs/marketplace_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/marketplace_ledger/pkg/database"
	"github.com/google/subcommands"
)

// Env is what the commands run against. Tests swap Connect for an in-memory store.
type Env struct {
	LoadConfig func() (*config.Config, error)
	Connect    func(ctx context.Context, cfg *config.Config) (*portssvc.ServiceContainer, func(), error)
	Migrate    func(cfg *config.Config) error
	Out        io.Writer
	Err        io.Writer
	// Actor is recorded in the audit log for every change made from the CLI.
	Actor string
}

// DefaultEnv connects to the configured PostgreSQL database.
func DefaultEnv() *Env {
	return &Env{
		LoadConfig: config.LoadConfig,
		Connect:    connectPostgres,
		Migrate: func(cfg *config.Config) error {
			return database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, nil)
		},
		Out:   os.Stdout,
		Err:   os.Stderr,
		Actor: "ledgerctl",
	}
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*portssvc.ServiceContainer, func(), error) {
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{MaxConns: 2, Ping: true})
	if err != nil {
		return nil, nil, err
	}
	svc, err := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(pool), authz.NewRoleAccessValidator(), nil)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return svc, pool.Close, nil
}

// Commands returns every ledgerctl subcommand bound to env.
func Commands(env *Env) []subcommands.Command {
	return []subcommands.Command{
		&migrateCmd{env: env},
		&provisionCmd{env: env},
		&integrityCmd{env: env},
		&rebuildPayablesCmd{env: env},
		&createKeyCmd{env: env},
		&issueTokenCmd{env: env},
		&trialBalanceCmd{env: env},
	}
}

// withServices loads the config, connects and runs fn as the system principal.
func (e *Env) withServices(ctx context.Context, fn func(ctx context.Context, svc *portssvc.ServiceContainer) error) subcommands.ExitStatus {
	cfg, err := e.LoadConfig()
	if err != nil {
		return e.fail(err)
	}
	svc, closeFn, err := e.Connect(ctx, cfg)
	if err != nil {
		return e.fail(err)
	}
	defer closeFn()

	ctx = authz.WithPrincipal(ctx, domain.SystemPrincipal(e.Actor))
	if err := fn(ctx, svc); err != nil {
		return e.fail(err)
	}
	return subcommands.ExitSuccess
}

func (e *Env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(e.Err, err)
	return subcommands.ExitFailure
}

// entityFlags binds -entity-type and -entity-id.
type entityFlags struct {
	entityType string
	entityID   string
}

func (f *entityFlags) register(fs *flag.FlagSet, defaultType string) {
	fs.StringVar(&f.entityType, "entity-type", defaultType, "Entity type (ADMIN or VENDOR).")
	fs.StringVar(&f.entityID, "entity-id", "", "Vendor id when -entity-type is VENDOR.")
}

func (f *entityFlags) entity() (domain.EntityRef, error) {
	ref := domain.EntityRef{Type: domain.EntityType(strings.ToUpper(f.entityType)), ID: f.entityID}
	if err := ref.Validate(); err != nil {
		return ref, err
	}
	return ref, nil
}

func (f *entityFlags) isSet() bool {
	return f.entityType != ""
}
