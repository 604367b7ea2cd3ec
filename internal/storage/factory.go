package storage

import "fmt"

// DefaultStoreKind is the backend used when the caller does not choose one.
func DefaultStoreKind() string {
	return "memory"
}

func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}
