// Package store provides the key/value persistence the tray uses for its
// remembered hotbar membership.
package store

import (
	"context"
	"fmt"
	"sync"
)

// Store persists opaque blobs under fixed keys.
type Store interface {
	// Get returns the blob for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the blob for key.
	Set(ctx context.Context, key string, blob []byte) error
}

// Kind names a Store implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindJSON   Kind = "json"
	KindSQLite Kind = "sqlite"
)

// Open returns the store of the given kind at path. The returned close
// function releases any underlying handle.
func Open(kind Kind, path string) (Store, func() error, error) {
	noop := func() error { return nil }
	switch kind {
	case KindMemory:
		return NewMemory(), noop, nil
	case KindJSON, "":
		s, err := OpenJSONFile(path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case KindSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

// Memory is an in-process Store. Values do not survive a restart.
type Memory struct {
	values sync.Map
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, ok := m.values.Load(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v.([]byte)...), true, nil
}

func (m *Memory) Set(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.values.Store(key, append([]byte(nil), blob...))
	return nil
}
