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

package vm

import (
	"github.com/holiman/uint256"

	"github.com/lambdaclass/levm-go/common"
	"github.com/lambdaclass/levm-go/core/types"
	"github.com/lambdaclass/levm-go/crypto"
)

// Account access goes through the helpers below. Reads pull accounts into
// the cache overlay; every mutation first records the prior cache entry
// (or its absence) into the current frame's backup, which is what makes
// per-frame rollback cheap and exact.

// GetAccount returns the account for addr via the cache, for reading.
func (vm *VM) GetAccount(addr common.Address) (*types.Account, error) {
	return vm.DB.GetAccount(addr)
}

// backupAccount captures the first-touch state of addr in the current
// frame's backup. It must run before the mutation materializes the account
// in the cache. Finalize-phase mutations (gas return, coinbase payment)
// run with the frame stack already drained; they are final and record no
// backup.
func (vm *VM) backupAccount(addr common.Address) error {
	if len(vm.CallFrames) == 0 {
		return nil
	}
	frame := vm.CallFrames[len(vm.CallFrames)-1]
	if _, done := frame.Backup[addr]; done {
		return nil
	}
	if account, ok := vm.DB.Cache.GetAccount(addr); ok {
		frame.Backup[addr] = account.Copy()
	} else {
		frame.Backup[addr] = nil
	}
	return nil
}

// getAccountMut returns the account for addr for mutation, recording its
// first-touch backup.
func (vm *VM) getAccountMut(addr common.Address) (*types.Account, error) {
	if err := vm.backupAccount(addr); err != nil {
		return nil, err
	}
	return vm.DB.GetAccount(addr)
}

func (vm *VM) increaseBalance(addr common.Address, amount *uint256.Int) error {
	account, err := vm.getAccountMut(addr)
	if err != nil {
		return err
	}
	account.Info.Balance.Add(&account.Info.Balance, amount)
	vm.Substate.TouchAccount(addr)
	return nil
}

func (vm *VM) decreaseBalance(addr common.Address, amount *uint256.Int) error {
	account, err := vm.getAccountMut(addr)
	if err != nil {
		return err
	}
	if account.Info.Balance.Lt(amount) {
		return ErrInsufficientBalance
	}
	account.Info.Balance.Sub(&account.Info.Balance, amount)
	vm.Substate.TouchAccount(addr)
	return nil
}

// transferValue moves amount from sender to recipient, both mutations
// landing in the current frame's backup.
func (vm *VM) transferValue(from, to common.Address, amount *uint256.Int) error {
	if err := vm.decreaseBalance(from, amount); err != nil {
		return err
	}
	return vm.increaseBalance(to, amount)
}

func (vm *VM) incrementNonce(addr common.Address) error {
	account, err := vm.getAccountMut(addr)
	if err != nil {
		return err
	}
	if account.Info.Nonce+1 < account.Info.Nonce {
		return ErrNonceUintOverflow
	}
	account.Info.Nonce++
	return nil
}

// setCode installs code on addr, refreshing the code hash.
func (vm *VM) setCode(addr common.Address, code []byte) error {
	account, err := vm.getAccountMut(addr)
	if err != nil {
		return err
	}
	account.Code = code
	account.Info.CodeHash = crypto.Keccak256Hash(code)
	return nil
}

// getStorageSlot reads (addr, key), loading the before-image from the
// durable store on first observation.
func (vm *VM) getStorageSlot(addr common.Address, key common.Hash) (*types.StorageSlot, error) {
	return vm.DB.GetStorageSlot(addr, key)
}

// setStorageSlot writes (addr, key), recording the account's first-touch
// backup so the write unwinds with the frame.
func (vm *VM) setStorageSlot(addr common.Address, key common.Hash, value *uint256.Int) error {
	if err := vm.backupAccount(addr); err != nil {
		return err
	}
	slot, err := vm.DB.GetStorageSlot(addr, key)
	if err != nil {
		return err
	}
	slot.CurrentValue = *value
	return nil
}

// accountExistsForCall reports whether addr counts as existing for the
// CALL new-account surcharge: post-SpuriousDragon an empty account is as
// good as absent.
func (vm *VM) accountExistsForCall(addr common.Address) (bool, error) {
	account, err := vm.GetAccount(addr)
	if err != nil {
		return false, err
	}
	return !account.IsEmpty(), nil
}

// mergeBackupToParent folds a successful child frame's first-touch map
// into its parent's: only addresses the parent has not already recorded
// are adopted, preserving the parent's older before-images.
func mergeBackupToParent(parent, child *CallFrame) {
	for addr, account := range child.Backup {
		if _, ok := parent.Backup[addr]; !ok {
			parent.Backup[addr] = account
		}
	}
}
