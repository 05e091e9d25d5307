package domain

import "context"

// ListingRemote is the remote system of record: four webhook endpoints.
type ListingRemote interface {
	List(ctx context.Context) ([]Listing, error)
	Create(ctx context.Context, l Listing) error
	Update(ctx context.Context, l Listing) error
	Delete(ctx context.Context, id string) error
}

type CallLogClient interface {
	ListCalls(ctx context.Context, key string, limit int) ([]Call, error)
}

// Store is the durable key/value layer behind the local snapshot and
// settings. Get reports found=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}
