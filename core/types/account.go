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

// Package types holds the account and transaction data model consumed by
// the interpreter.
package types

import (
	"github.com/holiman/uint256"

	"github.com/lambdaclass/levm-go/common"
	"github.com/lambdaclass/levm-go/crypto"
)

// AccountInfo is the balance/nonce/code-hash triple of an account.
type AccountInfo struct {
	Balance  uint256.Int
	Nonce    uint64
	CodeHash common.Hash
}

// StorageSlot tracks a storage value together with the value it held when
// first observed in the current transaction. The pair drives dirty-write
// gas pricing and refunds.
type StorageSlot struct {
	OriginalValue uint256.Int
	CurrentValue  uint256.Int
}

// Account is the in-cache representation of an account: its info, its
// bytecode and every storage slot touched so far.
type Account struct {
	Info    AccountInfo
	Code    []byte
	Storage map[common.Hash]*StorageSlot
}

// NewAccount returns an account with the given fields and an empty storage
// map.
func NewAccount(balance *uint256.Int, nonce uint64, code []byte) *Account {
	acc := &Account{
		Info: AccountInfo{
			Nonce:    nonce,
			CodeHash: crypto.Keccak256Hash(code),
		},
		Code:    code,
		Storage: make(map[common.Hash]*StorageSlot),
	}
	if balance != nil {
		acc.Info.Balance = *balance
	}
	return acc
}

// HasCode reports whether the account carries bytecode.
func (a *Account) HasCode() bool {
	return len(a.Code) > 0 || (!a.Info.CodeHash.IsZero() && a.Info.CodeHash != crypto.EmptyCodeHash)
}

// HasCodeOrNonce reports whether the account is occupied for the purposes
// of contract creation (EIP-684).
func (a *Account) HasCodeOrNonce() bool {
	return a.HasCode() || a.Info.Nonce != 0
}

// IsEmpty reports whether the account is empty per EIP-161: zero balance,
// zero nonce and no code.
func (a *Account) IsEmpty() bool {
	return a.Info.Balance.IsZero() && a.Info.Nonce == 0 && !a.HasCode()
}

// Copy returns a deep copy of the account, including its storage map.
func (a *Account) Copy() *Account {
	cp := &Account{
		Info:    a.Info,
		Code:    common.CopyBytes(a.Code),
		Storage: make(map[common.Hash]*StorageSlot, len(a.Storage)),
	}
	for k, v := range a.Storage {
		slot := *v
		cp.Storage[k] = &slot
	}
	return cp
}
