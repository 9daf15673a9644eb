package storage

import "errors"

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Store is a durable string key-value store. The favorites store persists
// its serialized identifier list through this interface so the backing
// medium (flat file, embedded database) can substitute without changing the
// favorites contract.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}
