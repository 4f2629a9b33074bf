// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package kv provides the key-value stores behind draft persistence.
//
// Values are opaque byte slices. Implementations: in-memory, a directory of
// files, SQLite and PostgreSQL.
package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotFound is returned by Get for keys that have no value.
var ErrNotFound = errors.New("kv: not found")

// Store is a minimal key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns a store for a URL:
//
//	memory:                      in-memory store
//	file:///var/lib/ggedit       directory store
//	sqlite:///var/lib/ggedit.db  SQLite database
//	postgres://user@host/db      PostgreSQL (also postgresql://)
func Open(ctx context.Context, rawURL string) (Store, error) {
	scheme, rest, ok := strings.Cut(rawURL, ":")
	if !ok {
		return nil, fmt.Errorf("kv: store URL %q has no scheme", rawURL)
	}
	switch scheme {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewDir(pathOf(rawURL, rest))
	case "sqlite", "sqlite3":
		return OpenSQLite(ctx, pathOf(rawURL, rest))
	case "postgres", "postgresql":
		return OpenPostgres(ctx, rawURL)
	}
	return nil, fmt.Errorf("kv: unknown store scheme %q", scheme)
}

func pathOf(rawURL, rest string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		if u.Host != "" {
			return u.Host + u.Path
		}
		return u.Path
	}
	return strings.TrimPrefix(rest, "//")
}
