// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Routemark Network
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache - read-your-writes layer shared by direct and transactional access
type Cache interface {
	Get(string) ([]byte, bool)
	Op(string) (int, bool)
	Set(int, string, []byte)
	Clear()
}

// cached operation markers
const (
	dbPut = iota
	dbDelete
)

const (
	defaultCleanup    = 1 * time.Minute
	defaultExpiration = 2 * time.Minute
)

type dbCache struct {
	cache *gocache.Cache
}

type cacheData struct {
	op    int
	value []byte
}

func newCache() Cache {
	return &dbCache{
		cache: gocache.New(defaultExpiration, defaultCleanup),
	}
}

func (c *dbCache) Get(key string) ([]byte, bool) {
	obj, found := c.cache.Get(key)
	if !found {
		return nil, false
	}

	data := obj.(cacheData)
	// a pending delete reads as present but nil so the caller does
	// not fall back to the stale database record
	if dbDelete == data.op {
		return nil, true
	}
	return data.value, true
}

// Op - the raw cached operation for a key
//
// unlike Get this reports a pending delete, so Has can distinguish
// "deleted here" from "never cached"
func (c *dbCache) Op(key string) (int, bool) {
	obj, found := c.cache.Get(key)
	if !found {
		return 0, false
	}
	return obj.(cacheData).op, true
}

func (c *dbCache) Set(op int, key string, value []byte) {
	c.cache.Set(key, cacheData{op: op, value: value}, defaultExpiration)
}

func (c *dbCache) Clear() {
	c.cache.Flush()
}
