// Package kvstore is the durable key-value surface the repositories persist
// their collections to. Values are opaque JSON blobs under fixed logical keys;
// the engine does not care how durability is implemented.
package kvstore

import "context"

// Logical keys for the persisted collections.
const (
	KeyTransactions = "transactions"
	KeyGoals        = "goals"
)

type Store interface {
	// Read returns the value stored under key, or ok=false when the key has
	// never been written.
	Read(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Write durably replaces the value stored under key.
	Write(ctx context.Context, key string, value []byte) error

	Close() error
}
