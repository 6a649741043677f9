// Package memory implements the store driver in process memory. Used for
// ephemeral mode and tests; nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/musubi-chat/musubi/store"
)

type DB struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewDB() store.Driver {
	return &DB{values: make(map[string]string)}
}

func (d *DB) Get(_ context.Context, key string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	value, ok := d.values[key]
	return value, ok, nil
}

func (d *DB) Set(_ context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[key] = value
	return nil
}

func (d *DB) Remove(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.values, key)
	return nil
}

func (d *DB) Close() error {
	return nil
}
