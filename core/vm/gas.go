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
	"github.com/lambdaclass/levm-go/params"
)

// memoryCost returns the total gas cost of a memory of the given byte
// size: linear plus quadratic particle.
func memoryCost(size uint64) uint64 {
	words := toWordSize(size)
	return words*params.MemoryGas + words*words/params.QuadCoeffDiv
}

// chargeMemoryExpansion bills the frame for growing its memory to cover
// [offset, offset+size) and reports the resolved uint64 window. A zero
// size never expands nor bills.
func chargeMemoryExpansion(frame *CallFrame, offset, size *uint256.Int) (uint64, uint64, error) {
	if size.IsZero() {
		if !offset.IsUint64() {
			return 0, 0, nil
		}
		return offset.Uint64(), 0, nil
	}
	if !offset.IsUint64() || !size.IsUint64() {
		return 0, 0, ErrOffsetOutOfBounds
	}
	off, sz := offset.Uint64(), size.Uint64()
	end := off + sz
	if end < off {
		return 0, 0, ErrGasUintOverflow
	}
	if err := chargeMemorySize(frame, end); err != nil {
		return 0, 0, err
	}
	return off, sz, nil
}

// chargeMemorySize bills the expansion up to the given absolute size.
func chargeMemorySize(frame *CallFrame, size uint64) error {
	current := frame.Memory.Len()
	if size <= current {
		return nil
	}
	if !frame.UseGas(memoryCost(size) - memoryCost(current)) {
		return ErrOutOfGas
	}
	return nil
}

// chargeCopyWords bills the per-word copy cost of the *COPY family.
func chargeCopyWords(frame *CallFrame, size uint64) error {
	if !frame.UseGas(toWordSize(size) * params.CopyGas) {
		return ErrOutOfGas
	}
	return nil
}

// chargeAccountAccess bills the EIP-2929 warm or cold account access cost
// for addr and marks it warm.
func (vm *VM) chargeAccountAccess(frame *CallFrame, addr common.Address) error {
	cost := params.WarmStorageReadCost
	if vm.Substate.TouchAccount(addr) {
		cost = params.ColdAccountAccessCost
	}
	if !frame.UseGas(cost) {
		return ErrOutOfGas
	}
	return nil
}

// chargeSlotAccess bills the EIP-2929 warm or cold storage access cost
// for (addr, key) and marks the slot warm.
func (vm *VM) chargeSlotAccess(frame *CallFrame, addr common.Address, key common.Hash) error {
	cost := params.WarmStorageReadCost
	if vm.Substate.TouchSlot(addr, key) {
		cost = params.ColdSloadCost
	}
	if !frame.UseGas(cost) {
		return ErrOutOfGas
	}
	return nil
}

// chargeSstore implements the net-metered SSTORE schedule (EIP-2200 with
// the EIP-2929 cold surcharge and EIP-3529 refunds). The slot carries the
// original/current pair the rules are written against.
func (vm *VM) chargeSstore(frame *CallFrame, addr common.Address, key common.Hash, slot *types.StorageSlot, value *uint256.Int) error {
	// EIP-2200: never allow an SSTORE to run on the stipend.
	if frame.Gas <= params.CallStipend {
		return ErrOutOfGas
	}
	if vm.Substate.TouchSlot(addr, key) {
		if !frame.UseGas(params.ColdSloadCost) {
			return ErrOutOfGas
		}
	}

	original, current := &slot.OriginalValue, &slot.CurrentValue
	var cost uint64
	switch {
	case current.Eq(value): // no-op write
		cost = params.WarmStorageReadCost
	case original.Eq(current): // clean slot, first dirty write
		if original.IsZero() {
			cost = params.SstoreSetGas
		} else {
			cost = params.SstoreResetGas - params.ColdSloadCost
			if value.IsZero() {
				vm.Env.RefundedGas += params.SstoreClearsScheduleRefund
			}
		}
	default: // dirty slot
		cost = params.WarmStorageReadCost
		if !original.IsZero() {
			if current.IsZero() {
				// Recreating a slot this transaction deleted.
				vm.Env.RefundedGas -= params.SstoreClearsScheduleRefund
			} else if value.IsZero() {
				vm.Env.RefundedGas += params.SstoreClearsScheduleRefund
			}
		}
		if original.Eq(value) {
			// Restored to the before-image: refund the difference against
			// the charge the first dirty write paid.
			if original.IsZero() {
				vm.Env.RefundedGas += params.SstoreSetGas - params.WarmStorageReadCost
			} else {
				vm.Env.RefundedGas += params.SstoreResetGas - params.ColdSloadCost - params.WarmStorageReadCost
			}
		}
	}
	if !frame.UseGas(cost) {
		return ErrOutOfGas
	}
	return nil
}

// IntrinsicGas computes the gas a transaction pays before a single opcode
// runs: base cost, calldata, access list, create surcharges and
// authorization tuples.
func IntrinsicGas(tx *types.Transaction, fork params.Fork) (uint64, error) {
	gas := params.TxGas
	if tx.IsCreate() {
		gas = params.TxGasContractCreation
		if fork >= params.Shanghai {
			if uint64(len(tx.Data)) > params.MaxInitCodeSize {
				return 0, ErrMaxInitCodeSizeExceeded
			}
			gas += toWordSize(uint64(len(tx.Data))) * params.InitCodeWordGas
		}
	}
	for _, b := range tx.Data {
		if b == 0 {
			gas += params.TxDataZeroGas
		} else {
			gas += params.TxDataNonZeroGas
		}
	}
	for _, tuple := range tx.AccessList {
		gas += params.TxAccessListAddressGas
		gas += uint64(len(tuple.StorageKeys)) * params.TxAccessListStorageKeyGas
	}
	gas += uint64(len(tx.AuthorizationList)) * params.PerEmptyAccountCost
	return gas, nil
}

// CalldataFloorGas returns the EIP-7623 lower bound on transaction gas,
// measured in calldata tokens.
func CalldataFloorGas(data []byte) uint64 {
	var tokens uint64
	for _, b := range data {
		if b == 0 {
			tokens++
		} else {
			tokens += params.TxTokenPerNonZeroByte
		}
	}
	return params.TxGas + tokens*params.TxCostFloorPerToken
}
