package storage

import "context"

// KV is a string-valued key-value store. Values carry no schema.
type KV interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Write applies every op or none of them.
	Write(ctx context.Context, ops ...Op) error
}

// Op is a single mutation inside Write. Delete ignores Value.
type Op struct {
	Key    string
	Value  string
	Delete bool
}

// Put builds a set op.
func Put(key, value string) Op { return Op{Key: key, Value: value} }

// Remove builds a delete op.
func Remove(key string) Op { return Op{Key: key, Delete: true} }
