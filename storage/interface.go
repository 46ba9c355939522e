// Package storage defines the cache for compiled runtime bytecode.
package storage

// CodeStore caches runtime bytecode keyed by compilation identity. Lookups
// that fail for any reason report a miss. Implementations must be safe for
// concurrent use.
type CodeStore interface {
	GetCode(key [32]byte) ([]byte, bool)
	PutCode(key [32]byte, code []byte) error
	Close() error
}
