// Package memkv is a minimal in-memory cosmossdk.io/core/store.KVStoreService
// implementation for local development and tests: bridgectl and the bridge
// package's own test suite need something satisfying that interface without
// pulling in a full Cosmos SDK application and its IAVL-backed store, since
// this repo is a library plus a local CLI, not a chain binary.
package memkv

import (
	"bytes"
	"context"
	"sort"

	corestore "cosmossdk.io/core/store"
)

// Store is a sorted in-memory key-value store.
type Store struct {
	data map[string][]byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: map[string][]byte{}}
}

// FromSnapshot rebuilds a Store from a previously captured Snapshot, for
// persisting CLI state across process invocations.
func FromSnapshot(snapshot map[string][]byte) *Store {
	if snapshot == nil {
		snapshot = map[string][]byte{}
	}
	return &Store{data: snapshot}
}

// Snapshot returns the store's current contents for persisting to disk.
func (s *Store) Snapshot() map[string][]byte {
	return s.data
}

// OpenKVStore satisfies corestore.KVStoreService. The context is unused: a
// process-local map has no per-request scoping to apply.
func (s *Store) OpenKVStore(_ context.Context) corestore.KVStore {
	return s
}

func (s *Store) Get(key []byte) ([]byte, error) {
	v, ok := s.data[string(key)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Has(key []byte) (bool, error) {
	_, ok := s.data[string(key)]
	return ok, nil
}

func (s *Store) Set(key, value []byte) error {
	s.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(key []byte) error {
	delete(s.data, string(key))
	return nil
}

func (s *Store) Iterator(start, end []byte) (corestore.Iterator, error) {
	return newIterator(s.data, start, end, false), nil
}

func (s *Store) ReverseIterator(start, end []byte) (corestore.Iterator, error) {
	return newIterator(s.data, start, end, true), nil
}

type iterator struct {
	keys    []string
	values  [][]byte
	pos     int
	reverse bool
}

func newIterator(data map[string][]byte, start, end []byte, reverse bool) *iterator {
	keys := make([]string, 0, len(data))
	for k := range data {
		kb := []byte(k)
		if start != nil && bytes.Compare(kb, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(kb, end) >= 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if reverse {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}

	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = data[k]
	}
	return &iterator{keys: keys, values: values, reverse: reverse}
}

func (it *iterator) Domain() (start, end []byte) { return nil, nil }
func (it *iterator) Valid() bool                 { return it.pos < len(it.keys) }
func (it *iterator) Next()                       { it.pos++ }
func (it *iterator) Key() []byte                 { return []byte(it.keys[it.pos]) }
func (it *iterator) Value() []byte               { return it.values[it.pos] }
func (it *iterator) Error() error                { return nil }
func (it *iterator) Close() error                { return nil }
