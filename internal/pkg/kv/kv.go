// Package kv provides durable named slots: a byte value per key, overwritten
// as a whole. Implementations exist for memory, local files, Redis and SQLite.
package kv

import (
	"context"
	"fmt"
	"strings"
)

// Store is a key/value slot store. Get reports found=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Key joins a namespace and a name into a slot key, e.g. "cart:3f2a...".
func Key(namespace, name string) string {
	if name == "" {
		return namespace
	}
	return fmt.Sprintf("%s:%s", namespace, name)
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend    string
	Dir        string // file
	RedisAddr  string // redis
	Namespace  string // redis key prefix
	SQLitePath string // sqlite
}

// Open builds the configured Store. The returned close function releases the
// backend's resources and is never nil.
func Open(opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(opts.Backend) {
	case BackendMemory, "":
		return NewMemory(), noop, nil
	case BackendFile:
		s, err := NewFile(opts.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case BackendRedis:
		s := NewRedis(opts.RedisAddr, opts.Namespace)
		return s, s.Close, nil
	case BackendSQLite:
		s, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("kv: unknown backend %q", opts.Backend)
	}
}
