package kvstore

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidKey = errors.New("invalid key")

// Store is a durable key-value string store. Writes replace the whole
// value.
type Store interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}

type namespaced struct {
	Store
	prefix string
}

// Namespace scopes every key of s under prefix.
func Namespace(s Store, prefix string) Store {
	return &namespaced{Store: s, prefix: strings.TrimRight(prefix, "/") + "/"}
}

func (n *namespaced) Read(ctx context.Context, key string) (string, bool, error) {
	return n.Store.Read(ctx, n.prefix+key)
}

func (n *namespaced) Write(ctx context.Context, key, value string) error {
	return n.Store.Write(ctx, n.prefix+key, value)
}
