package storage

import (
	"context"
)

type memKV struct {
	data map[string][]byte
}

// New returns the in-memory backend. Everything is lost on restart.
func New() *KVStorage {
	return &KVStorage{kv: &memKV{data: make(map[string][]byte)}}
}

func (m *memKV) get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) put(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memKV) del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memKV) close() error {
	return nil
}
