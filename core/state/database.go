// Copyright 2025 The levm-go Authors
// This file is part of the levm-go library.
//
// The levm-go library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The levm-go library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the levm-go library. If not, see <http://www.gnu.org/licenses/>.

// Package state provides the account store the interpreter executes
// against: a durable read-only provider fronted by a mutable in-memory
// cache overlay.
package state

import (
	"github.com/holiman/uint256"

	"github.com/lambdaclass/levm-go/common"
	"github.com/lambdaclass/levm-go/core/types"
)

// Database is the durable state provider backing a transaction. GetAccount
// returns a fresh copy the caller may own; missing accounts are reported
// as (nil, nil).
type Database interface {
	GetAccount(addr common.Address) (*types.Account, error)
	GetStorageValue(addr common.Address, key common.Hash) (uint256.Int, error)
	GetBlockHash(number uint64) (common.Hash, error)
}

// Cache is the per-transaction account overlay. Accounts land here on
// first access and every mutation happens in place; the durable store is
// never written by the interpreter.
type Cache map[common.Address]*types.Account

// InsertAccount places an account into the cache, replacing any prior
// entry.
func (c Cache) InsertAccount(addr common.Address, acc *types.Account) {
	c[addr] = acc
}

// RemoveAccount drops the cache entry for addr, if any.
func (c Cache) RemoveAccount(addr common.Address) {
	delete(c, addr)
}

// GetAccount returns the cached account for addr, if present.
func (c Cache) GetAccount(addr common.Address) (*types.Account, bool) {
	acc, ok := c[addr]
	return acc, ok
}

// Copy returns a deep copy of the cache, used by stateless execution to
// restore the overlay wholesale.
func (c Cache) Copy() Cache {
	cp := make(Cache, len(c))
	for addr, acc := range c {
		cp[addr] = acc.Copy()
	}
	return cp
}

// GeneralizedDatabase couples the durable store with the transaction
// cache. One instance is exclusively borrowed by a single VM at a time.
type GeneralizedDatabase struct {
	Store Database
	Cache Cache
}

// NewGeneralizedDatabase builds an empty overlay over the given store.
func NewGeneralizedDatabase(store Database) *GeneralizedDatabase {
	return &GeneralizedDatabase{
		Store: store,
		Cache: make(Cache),
	}
}

// GetAccount returns the account for addr, pulling it into the cache on
// first access. Missing accounts materialize as empty ones; EIP-161
// emptiness decides whether they persist afterwards.
func (db *GeneralizedDatabase) GetAccount(addr common.Address) (*types.Account, error) {
	if acc, ok := db.Cache.GetAccount(addr); ok {
		return acc, nil
	}
	acc, err := db.Store.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		acc = types.NewAccount(nil, 0, nil)
	}
	if acc.Storage == nil {
		acc.Storage = make(map[common.Hash]*types.StorageSlot)
	}
	db.Cache.InsertAccount(addr, acc)
	return acc, nil
}

// InCache reports whether addr has already been pulled into the overlay.
func (db *GeneralizedDatabase) InCache(addr common.Address) bool {
	_, ok := db.Cache.GetAccount(addr)
	return ok
}

// GetStorageSlot returns the slot entry for (addr, key), loading the value
// from the durable store on first observation. The loaded value seeds both
// the original and the current field.
func (db *GeneralizedDatabase) GetStorageSlot(addr common.Address, key common.Hash) (*types.StorageSlot, error) {
	acc, err := db.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if slot, ok := acc.Storage[key]; ok {
		return slot, nil
	}
	value, err := db.Store.GetStorageValue(addr, key)
	if err != nil {
		return nil, err
	}
	slot := &types.StorageSlot{OriginalValue: value, CurrentValue: value}
	acc.Storage[key] = slot
	return slot, nil
}
