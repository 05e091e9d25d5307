// Package bootstrap turns a shared.Config into the wired services both
// binaries run on.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	badgerad "estates_console/internal/adapters/badger"
	redisad "estates_console/internal/adapters/redis"
	"estates_console/internal/adapters/vapi"
	"estates_console/internal/adapters/webhook"
	"estates_console/internal/app"
	"estates_console/internal/domain"
	"estates_console/internal/shared"
	mysqlrepo "estates_console/internal/storage/mysql"
)

type Services struct {
	Store    domain.Store
	Webhook  *webhook.Client
	Sync     *app.SyncService
	Settings *app.SettingsService
	Calls    *app.CallLogService

	closers []func() error
}

// Close releases the store in reverse open order.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// OpenStore selects the durable store behind the snapshot and settings.
func OpenStore(ctx context.Context, cfg shared.Config) (domain.Store, func() error, error) {
	switch cfg.StoreDriver {
	case "", "badger":
		st, err := badgerad.Open(badgerad.Config{Path: cfg.BadgerPath})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.BadgerPath).Msg("badger store open")
		return st, st.Close, nil

	case "redis":
		st := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := st.Ping(ctx); err != nil {
			_ = st.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis store ok")
		return st, st.Close, nil

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db.Ping: %w", err)
		}
		repo := mysqlrepo.New(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Msg("database connection ok")
		return repo, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q (want badger, redis or mysql)", cfg.StoreDriver)
}

// New wires every service from cfg. Callers own the returned Close.
func New(ctx context.Context, cfg shared.Config) (*Services, error) {
	policy, err := app.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return nil, err
	}

	hook, err := webhook.New(webhook.Endpoints{
		List:   cfg.WebhookListURL,
		Create: cfg.WebhookCreateURL,
		Update: cfg.WebhookUpdateURL,
		Delete: cfg.WebhookDeleteURL,
	}, cfg.WebhookTimeout, cfg.WebhookRPS)
	if err != nil {
		return nil, fmt.Errorf("webhook client: %w", err)
	}

	st, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	settings := app.NewSettingsService(st, domain.VapiSettings{
		PublicKey:   cfg.VapiPublicKey,
		AssistantID: cfg.VapiAssistantID,
		PrivateKey:  cfg.VapiPrivateKey,
	})
	opts := app.SyncOptions{
		BestEffortRemoteSync: cfg.BestEffortRemoteSync,
		OnDuplicate:          policy,
		UpsertOnMissing:      cfg.UpsertOnMissing,
	}

	return &Services{
		Store:    st,
		Webhook:  hook,
		Sync:     app.NewSyncService(ctx, hook, app.NewSnapshotCache(st), opts),
		Settings: settings,
		Calls:    app.NewCallLogService(vapi.New(cfg.VapiBase, cfg.WebhookTimeout), settings, cfg.CallLimit),
		closers:  []func() error{closeStore},
	}, nil
}
