// Command identity-backfill links counselor profiles that have no identity
// reference to identities in the identity provider, creating identities where
// none match. Run it after legacy imports or after provisioning incidents
// that left orphaned rows behind.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"counselor_admin_backend/internal/counselors/repository"
	"counselor_admin_backend/internal/events"
	"counselor_admin_backend/internal/idp"
	"counselor_admin_backend/internal/reconcile"
	"counselor_admin_backend/platform/config"
	"counselor_admin_backend/platform/db"
	"counselor_admin_backend/platform/logger"
)

func main() {
	limit := flag.Int("limit", reconcile.DefaultLimit, "maximum profile rows to repair in this run")
	maxPages := flag.Int("max-pages", reconcile.DefaultMaxPages, "identity listing pages to scan per profile")
	pageSize := flag.Int("page-size", reconcile.DefaultPageSize, "identity listing page size")
	dryRun := flag.Bool("dry-run", false, "report what would happen without writing anything")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting counselor identity backfill", "dry_run", *dryRun, "limit", *limit)

	if !cfg.IsIdentityProviderEnabled() {
		log.Error("identity provider credentials not configured")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)
	provider := idp.NewGoTrueClient(cfg)
	bus := events.NewInMemoryBus(log)

	svc := reconcile.New(repo, provider, bus, log)
	report, err := svc.Run(ctx, reconcile.Options{
		Limit:    *limit,
		MaxPages: *maxPages,
		PageSize: *pageSize,
		DryRun:   *dryRun,
	})
	if err != nil {
		log.Error("identity backfill failed", "error", err)
		os.Exit(1)
	}

	log.Info("identity backfill report",
		"scanned", report.Scanned,
		"matched", report.Matched,
		"created", report.Created,
		"repaired", report.Repaired,
		"skipped", report.Skipped,
	)
}
