package app_test

import (
	"context"
	"errors"
	"sync"

	"estates_console/internal/domain"
)

// ---- fakes ----

var errRemoteDown = errors.New("remote down")

type fakeRemote struct {
	mu      sync.Mutex
	lists   [][]domain.Listing // successive List results; last one repeats
	listErr error
	pushErr error

	created []domain.Listing
	updated []domain.Listing
	deleted []string
}

func (f *fakeRemote) List(ctx context.Context) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.lists) == 0 {
		return []domain.Listing{}, nil
	}
	out := f.lists[0]
	if len(f.lists) > 1 {
		f.lists = f.lists[1:]
	}
	return out, nil
}

func (f *fakeRemote) Create(ctx context.Context, l domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, l)
	return f.pushErr
}

func (f *fakeRemote) Update(ctx context.Context, l domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, l)
	return f.pushErr
}

func (f *fakeRemote) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.pushErr
}

type fakeStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error

	failKey string   // Set on this key fails with setErr
	written []string // keys in Set order
}

func newFakeStore() *fakeStore { return &fakeStore{data: map[string][]byte{}} }

func (s *fakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeStore) Set(ctx context.Context, key string, v []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil && (s.failKey == "" || s.failKey == key) {
		return s.setErr
	}
	s.written = append(s.written, key)
	s.data[key] = append([]byte(nil), v...)
	return nil
}

func (s *fakeStore) Del(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

type fakeCalls struct {
	calls   []domain.Call
	err     error
	gotKey  string
	gotHits int
}

func (f *fakeCalls) ListCalls(ctx context.Context, key string, limit int) ([]domain.Call, error) {
	f.gotKey = key
	f.gotHits++
	return f.calls, f.err
}

func listing(id string, price float64) domain.Listing {
	return domain.Listing{
		ID:       id,
		Title:    "Listing " + id,
		Category: domain.CategoryApartment,
		Status:   domain.StatusAvailable,
		Price:    price,
	}
}
