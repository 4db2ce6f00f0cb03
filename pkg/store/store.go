// Package store persists the last tuned station across restarts.
package store

// Store is a minimal durable key-value store, the shape of the NVS-style
// flash stores this daemon targets. Put must be atomic with respect to
// process crashes.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
}
