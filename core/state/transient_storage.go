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

package state

import (
	"github.com/holiman/uint256"

	"github.com/lambdaclass/levm-go/common"
)

// TransientStorage is the EIP-1153 per-transaction storage. It lives in
// the execution environment, is snapshotted into state backups, and is
// discarded at the transaction boundary; it never reaches the durable
// store.
type TransientStorage map[common.Address]map[common.Hash]uint256.Int

// NewTransientStorage creates an empty transient store.
func NewTransientStorage() TransientStorage {
	return make(TransientStorage)
}

// Set sets the transient value for key at the given addr.
func (t TransientStorage) Set(addr common.Address, key common.Hash, value uint256.Int) {
	if _, ok := t[addr]; !ok {
		t[addr] = make(map[common.Hash]uint256.Int)
	}
	t[addr][key] = value
}

// Get gets the transient value for key at the given addr; unset slots read
// as zero.
func (t TransientStorage) Get(addr common.Address, key common.Hash) uint256.Int {
	val, ok := t[addr]
	if !ok {
		return uint256.Int{}
	}
	return val[key]
}

// Copy does a deep copy of the transientStorage.
func (t TransientStorage) Copy() TransientStorage {
	storage := make(TransientStorage, len(t))
	for key, value := range t {
		inner := make(map[common.Hash]uint256.Int, len(value))
		for k, v := range value {
			inner[k] = v
		}
		storage[key] = inner
	}
	return storage
}
