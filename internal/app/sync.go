package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"estates_console/internal/adapters/observability"
	"estates_console/internal/domain"
)

// DuplicatePolicy decides what Create does with an id already present.
type DuplicatePolicy int

const (
	// DuplicateAppend keeps both records (reference behavior).
	DuplicateAppend DuplicatePolicy = iota
	// DuplicateReject refuses the create with domain.ErrDuplicateID.
	DuplicateReject
	// DuplicateReplace overwrites the existing record and syncs it as an update.
	DuplicateReplace
)

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "append":
		return DuplicateAppend, nil
	case "reject":
		return DuplicateReject, nil
	case "replace":
		return DuplicateReplace, nil
	}
	return DuplicateAppend, fmt.Errorf("unknown duplicate policy %q", s)
}

type SyncOptions struct {
	// BestEffortRemoteSync swallows remote write failures once the local
	// commit is done. When false they come back wrapped in ErrRemoteSync.
	// A completed exchange with a non-2xx status counts as a failure
	// (outcome "rejected"), not as a completed write. In best-effort mode
	// that only shows in logs and metrics; in strict mode it returns
	// ErrRemoteSync like a transport failure.
	BestEffortRemoteSync bool
	OnDuplicate          DuplicatePolicy
	// UpsertOnMissing turns Update of an unknown id into an append.
	UpsertOnMissing bool
}

func DefaultSyncOptions() SyncOptions {
	return SyncOptions{BestEffortRemoteSync: true, OnDuplicate: DuplicateAppend}
}

// SyncService owns the Cached Collection. The remote webhooks are the
// system of record; the snapshot is the fallback. Every write commits
// and persists locally before the remote leg starts.
type SyncService struct {
	remote domain.ListingRemote
	cache  *SnapshotCache
	opts   SyncOptions

	mu    sync.Mutex // guards items during the local leg only
	items []domain.Listing
}

// NewSyncService restores the last persisted collection (empty on first run).
func NewSyncService(ctx context.Context, r domain.ListingRemote, c *SnapshotCache, opts SyncOptions) *SyncService {
	s := &SyncService{remote: r, cache: c, opts: opts}
	s.items = c.Load(ctx)
	if s.items == nil {
		s.items = []domain.Listing{}
	}
	log.Debug().Int("count", len(s.items)).Msg("listing cache restored")
	return s
}

// FetchAll reads the remote collection and makes it the Cached
// Collection. On any failure it returns the cached collection instead.
// It never fails.
func (s *SyncService) FetchAll(ctx context.Context) []domain.Listing {
	fetched, err := s.remote.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("listing source unavailable; serving cached collection")
		observability.ObserveSync("fetch", "cache", err)
		return s.Snapshot()
	}

	s.mu.Lock()
	s.items = cloneListings(fetched)
	s.cache.Save(ctx, s.items)
	out := cloneListings(s.items)
	s.mu.Unlock()

	observability.ObserveSync("fetch", "remote", nil)
	return out
}

func (s *SyncService) Create(ctx context.Context, l domain.Listing) error {
	op := "create"
	push := s.remote.Create

	s.mu.Lock()
	if i := s.indexOf(l.ID); i >= 0 {
		switch s.opts.OnDuplicate {
		case DuplicateReject:
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", domain.ErrDuplicateID, l.ID)
		case DuplicateReplace:
			s.items[i] = cloneListing(l)
			op, push = "update", s.remote.Update
		default:
			// Two records now share an id; Delete removes both.
			log.Warn().Str("id", l.ID).Msg("create with an id already in the collection")
			s.items = append(s.items, cloneListing(l))
		}
	} else {
		s.items = append(s.items, cloneListing(l))
	}
	s.cache.Save(ctx, s.items)
	s.mu.Unlock()

	return s.sync(op, l.ID, push(ctx, l))
}

// Update replaces the first record with l.ID. An unknown id leaves the
// collection unchanged unless UpsertOnMissing is set; the remote update
// is attempted either way.
func (s *SyncService) Update(ctx context.Context, l domain.Listing) error {
	s.mu.Lock()
	if i := s.indexOf(l.ID); i >= 0 {
		s.items[i] = cloneListing(l)
	} else if s.opts.UpsertOnMissing {
		s.items = append(s.items, cloneListing(l))
	} else {
		log.Info().Str("id", l.ID).Msg("update for unknown id; local collection unchanged")
	}
	s.cache.Save(ctx, s.items)
	s.mu.Unlock()

	return s.sync("update", l.ID, s.remote.Update(ctx, l))
}

// Delete removes every record carrying id.
func (s *SyncService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	kept := s.items[:0:0]
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.cache.Save(ctx, s.items)
	s.mu.Unlock()

	return s.sync("delete", id, s.remote.Delete(ctx, id))
}

// Get returns the first cached record with id.
func (s *SyncService) Get(id string) (domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return cloneListing(s.items[i]), nil
	}
	return domain.Listing{}, domain.ErrNotFound
}

// Snapshot copies the Cached Collection without touching the network.
func (s *SyncService) Snapshot() []domain.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneListings(s.items)
}

// sync classifies the outcome of a remote write. The local commit has
// already happened, so in best-effort mode nothing is returned.
func (s *SyncService) sync(op, id string, err error) error {
	if err == nil {
		observability.ObserveSync(op, "synced", nil)
		return nil
	}

	var se *domain.StatusError
	outcome := "local_only"
	if errors.As(err, &se) {
		outcome = "rejected"
	}
	observability.ObserveSync(op, outcome, err)

	if s.opts.BestEffortRemoteSync {
		log.Warn().Err(err).Str("op", op).Str("id", id).Str("outcome", outcome).
			Msg("remote sync failed; local change kept")
		return nil
	}
	return fmt.Errorf("%w: %s %s: %w", domain.ErrRemoteSync, op, id, err)
}

func (s *SyncService) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneListing(l domain.Listing) domain.Listing {
	if l.Images != nil {
		l.Images = append([]string(nil), l.Images...)
	}
	return l
}

func cloneListings(in []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, len(in))
	for i := range in {
		out[i] = cloneListing(in[i])
	}
	return out
}
