/*
Package store provides in-memory stores and cache wraps for the poolweave
state. Every operation runs inside a cache wrap, so that its writes are either
all applied to the parent store or all dropped.
*/
package store

import "github.com/iov-one/poolweave"

// Aliases for all storage types, for shorter names everywhere in this
// package.
type (
	ReadOnlyKVStore  = poolweave.ReadOnlyKVStore
	SetDeleter       = poolweave.SetDeleter
	KVStore          = poolweave.KVStore
	Iterator         = poolweave.Iterator
	CacheableKVStore = poolweave.CacheableKVStore
	KVCacheWrap      = poolweave.KVCacheWrap
	CommitKVStore    = poolweave.CommitKVStore
	CommitID         = poolweave.CommitID
	Model            = poolweave.Model
)
