//go:generate mockgen -source ./store.go -destination=./mocks/store.go -package=mock_recordstore
package recordstore

import (
	"context"
	"errors"
)

const (
	OrdersCollection = "Customer_Orders"
	UsersCollection  = "Users"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrUnavailable = errors.New("record store unavailable")
)

// Record is one row of a collection in the remote store. The store keeps
// every attribute as a string; numeric fields are numeric strings.
type Record map[string]string

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Store is the key-value service holding named collections. Transient
// service failures are reported wrapped in ErrUnavailable and are not
// retried here.
type Store interface {
	Get(ctx context.Context, collection, key string) (Record, error)
	ScanAll(ctx context.Context, collection string) ([]Record, error)
	Put(ctx context.Context, collection, key string, record Record) error
	UpdateFields(ctx context.Context, collection, key string, fields Record) (Record, error)
	Delete(ctx context.Context, collection, key string) error
}
