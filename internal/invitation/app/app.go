// Package app wires the invitation engine: it opens the configured store,
// runs the startup prune pass, and assembles the lifecycle service with its
// transports and notification sink.
package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/twinup/pairlink/internal/deeplink"
	"github.com/twinup/pairlink/internal/invitation/domain"
	bboltstore "github.com/twinup/pairlink/internal/invitation/storage/bbolt"
	sqlitestore "github.com/twinup/pairlink/internal/invitation/storage/sqlite"
	"github.com/twinup/pairlink/internal/notify"
	"github.com/twinup/pairlink/internal/transport"
)

// Storage driver names accepted by Config.StorageDriver.
const (
	DriverBBolt  = "bbolt"
	DriverSQLite = "sqlite"
)

// Config carries engine wiring settings.
type Config struct {
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"bbolt"`
	StoragePath   string `env:"STORAGE_PATH" envDefault:"pairlink.db"`
	LinkScheme    string `env:"LINK_SCHEME" envDefault:"twinup"`
}

// Options carries optional collaborators. Nil fields fall back to defaults:
// composers report unavailable, the notifier logs, and the service uses the
// real clock and generators.
type Options struct {
	Email    transport.EmailComposer
	SMS      transport.SMSComposer
	Notifier notify.Notifier
	Service  domain.Config
}

// Store is the subset of store behavior the engine needs beyond the domain
// interface.
type Store interface {
	domain.Store
	Close() error
}

// Engine bundles the wired invitation service and deep-link router for one
// process.
type Engine struct {
	Service *domain.Service
	Router  *deeplink.Router

	store Store
}

// New opens storage, prunes stale records, and assembles the engine.
func New(ctx context.Context, cfg Config, opts Options) (*Engine, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	expired, removed, err := store.Prune(ctx, pruneClock(opts)())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("prune invitations: %w", err)
	}
	if expired > 0 || removed > 0 {
		log.Printf("invitation prune: expired %d, removed %d", expired, removed)
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}

	serviceCfg := opts.Service
	if strings.TrimSpace(serviceCfg.LinkScheme) == "" {
		serviceCfg.LinkScheme = cfg.LinkScheme
	}

	return &Engine{
		Service: domain.NewService(store, opts.Email, opts.SMS, notifier, serviceCfg),
		Router:  deeplink.NewRouter(),
		store:   store,
	}, nil
}

// Close releases the engine's storage handle.
func (e *Engine) Close() error {
	if e == nil || e.store == nil {
		return nil
	}
	return e.store.Close()
}

func openStore(cfg Config) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if driver == "" {
		driver = DriverBBolt
	}
	switch driver {
	case DriverBBolt:
		return bboltstore.Open(cfg.StoragePath)
	case DriverSQLite:
		return sqlitestore.Open(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func pruneClock(opts Options) func() time.Time {
	if opts.Service.Clock != nil {
		return opts.Service.Clock
	}
	return time.Now
}
