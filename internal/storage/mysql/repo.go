package mysql

import (
	"context"
	"database/sql"
	"errors"

	"estates_console/internal/adapters/observability"
)

// Repo is a domain.Store on a single MySQL key/value table.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate creates the kv_store table if it is missing.
func (r *Repo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createKVSQL)
	return err
}

func (r *Repo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	if err := r.db.QueryRowContext(ctx, getKVSQL, key).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			observability.ObserveCache("mysql", "miss")
			return nil, false, nil
		}
		observability.ObserveCache("mysql", "error")
		return nil, false, err
	}
	observability.ObserveCache("mysql", "hit")
	return v, true, nil
}

func (r *Repo) Set(ctx context.Context, key string, value []byte) error {
	observability.ObserveCache("mysql", "set")
	if value == nil {
		value = []byte{}
	}
	_, err := r.db.ExecContext(ctx, upsertKVSQL, key, value)
	return err
}

func (r *Repo) Del(ctx context.Context, key string) error {
	observability.ObserveCache("mysql", "del")
	_, err := r.db.ExecContext(ctx, deleteKVSQL, key)
	return err
}
