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

	"github.com/lambdaclass/levm-go/core/types"
	"github.com/lambdaclass/levm-go/params"
)

// Hook brackets transaction execution. Prepare runs before the interpreter
// loop (validation, gas purchase, nonce and delegation bookkeeping);
// Finalize runs after it (refunds, fee routing, self-destruct processing)
// and may adjust the report. Prepare failures reject the transaction with
// no surviving state change.
type Hook interface {
	Prepare(vm *VM) error
	Finalize(vm *VM, report *ExecutionReport) error
}

// selectHooks picks the hook strategy for the transaction kind. Privileged
// (system-minted deposit) transactions skip the EOA validations and the
// gas purchase entirely.
func selectHooks(tx *types.Transaction) []Hook {
	if tx.Privileged {
		return []Hook{&PrivilegedHook{}}
	}
	return []Hook{&DefaultHook{}}
}

// DefaultHook implements mainnet transaction semantics.
type DefaultHook struct{}

func (h *DefaultHook) Prepare(vm *VM) error {
	tx, env := vm.Tx, vm.Env
	fork := env.Config.Fork

	if tx.GasLimit > env.BlockGasLimit {
		return ErrGasLimitTooHigh
	}
	if env.TxMaxFeePerGas != nil && env.TxMaxFeePerGas.Lt(&env.BaseFeePerGas) {
		return ErrFeeCapTooLow
	}

	sender, err := vm.GetAccount(env.Origin)
	if err != nil {
		return err
	}
	// EIP-3607, relaxed by EIP-7702: accounts holding a delegation
	// designator still count as EOAs.
	if sender.HasCode() && !isDelegationDesignator(sender.Code) {
		return ErrSenderNotEOA
	}
	if tx.Nonce < sender.Info.Nonce {
		return ErrNonceTooLow
	}
	if tx.Nonce > sender.Info.Nonce {
		return ErrNonceTooHigh
	}

	if err := h.validateBlobFields(vm); err != nil {
		return err
	}
	if tx.AuthorizationList != nil {
		if tx.IsCreate() {
			return ErrCreateWithAuthorizations
		}
		if len(tx.AuthorizationList) == 0 {
			return ErrEmptyAuthorizationList
		}
	}

	// Up-front cost: the full gas purchase, the blob fee and the value.
	upfront := new(uint256.Int).Mul(&env.GasPrice, uint256.NewInt(tx.GasLimit))
	blobFee := h.blobFee(vm)
	upfront.Add(upfront, blobFee)
	total := new(uint256.Int).Add(upfront, &tx.Value)
	if sender.Info.Balance.Lt(total) {
		return ErrInsufficientFunds
	}
	if err := vm.decreaseBalance(env.Origin, upfront); err != nil {
		return err
	}
	if err := vm.incrementNonce(env.Origin); err != nil {
		return err
	}

	if fork >= params.Prague && len(tx.AuthorizationList) > 0 {
		if err := vm.processAuthorizations(); err != nil {
			return err
		}
	}

	return h.chargeIntrinsicGas(vm)
}

func (h *DefaultHook) validateBlobFields(vm *VM) error {
	tx, env := vm.Tx, vm.Env
	isBlobTx := env.TxMaxFeePerBlobGas != nil
	if !isBlobTx {
		return nil
	}
	if len(tx.BlobHashes) == 0 {
		return ErrBlobTxWithoutBlobs
	}
	if uint64(len(tx.BlobHashes)) > env.Config.BlobSchedule.Max {
		return ErrBlobTxBlobCountExceeded
	}
	for _, hash := range tx.BlobHashes {
		if hash.Bytes()[0] != params.BlobTxHashVersion {
			return ErrBlobTxInvalidHashVersion
		}
	}
	if env.TxMaxFeePerBlobGas.Lt(&env.BlobGasPrice) {
		return ErrFeeCapTooLow
	}
	return nil
}

// blobFee returns the burned blob fee of the transaction at the block's
// blob gas price.
func (h *DefaultHook) blobFee(vm *VM) *uint256.Int {
	blobs := uint64(len(vm.Tx.BlobHashes))
	if blobs == 0 {
		return new(uint256.Int)
	}
	gas := uint256.NewInt(blobs * params.BlobTxBlobGasPerBlob)
	return gas.Mul(gas, &vm.Env.BlobGasPrice)
}

// chargeIntrinsicGas bills the pre-execution cost against the root frame
// and enforces the EIP-7623 calldata floor from Prague on.
func (h *DefaultHook) chargeIntrinsicGas(vm *VM) error {
	root, err := vm.currentFrame()
	if err != nil {
		return err
	}
	intrinsic, err := IntrinsicGas(vm.Tx, vm.Env.Config.Fork)
	if err != nil {
		return err
	}
	if !root.UseGas(intrinsic) {
		return ErrIntrinsicGas
	}
	if vm.Env.Config.Fork >= params.Prague {
		if vm.Tx.GasLimit < CalldataFloorGas(vm.Tx.Data) {
			return ErrIntrinsicGas
		}
	}
	return nil
}

func (h *DefaultHook) Finalize(vm *VM, report *ExecutionReport) error {
	applyGasRefund(vm, report)

	// EIP-7623: the transaction never pays less than the calldata floor.
	if vm.Env.Config.Fork >= params.Prague {
		if floor := CalldataFloorGas(vm.Tx.Data); report.GasUsed < floor {
			report.GasUsed = floor
		}
	}

	// Unused gas back to the sender, the tip to the coinbase.
	remaining := vm.Tx.GasLimit - report.GasUsed
	if remaining > 0 {
		back := new(uint256.Int).Mul(&vm.Env.GasPrice, uint256.NewInt(remaining))
		if err := vm.increaseBalance(vm.Env.Origin, back); err != nil {
			return err
		}
	}
	tip := new(uint256.Int).Mul(vm.Env.PriorityFeePerGas(), uint256.NewInt(report.GasUsed))
	if !tip.IsZero() {
		if err := vm.increaseBalance(vm.Env.Coinbase, tip); err != nil {
			return err
		}
	}

	return processSelfDestructs(vm, report)
}

// PrivilegedHook executes system deposit transactions: the value is minted
// to the recipient, no gas is purchased and no fee reaches the coinbase.
type PrivilegedHook struct{}

func (h *PrivilegedHook) Prepare(vm *VM) error {
	if !vm.Tx.Value.IsZero() {
		if err := vm.increaseBalance(vm.Tx.Recipient, &vm.Tx.Value); err != nil {
			return err
		}
	}
	if err := vm.incrementNonce(vm.Env.Origin); err != nil {
		return err
	}
	root, err := vm.currentFrame()
	if err != nil {
		return err
	}
	intrinsic, err := IntrinsicGas(vm.Tx, vm.Env.Config.Fork)
	if err != nil {
		return err
	}
	if !root.UseGas(intrinsic) {
		return ErrIntrinsicGas
	}
	return nil
}

func (h *PrivilegedHook) Finalize(vm *VM, report *ExecutionReport) error {
	applyGasRefund(vm, report)
	return processSelfDestructs(vm, report)
}

// applyGasRefund folds the accrued refund counter into the report, capped
// at the fork's quotient of the gas actually used.
func applyGasRefund(vm *VM, report *ExecutionReport) {
	quotient := params.RefundQuotient
	if vm.Env.Config.Fork >= params.London {
		quotient = params.RefundQuotientEIP3529
	}
	refund := report.GasUsed / quotient
	if vm.Env.RefundedGas < refund {
		refund = vm.Env.RefundedGas
	}
	report.GasUsed -= refund
	report.GasRefunded = refund
}

// processSelfDestructs wipes the accounts scheduled for deletion. They were
// only ever schedulable under EIP-6780 rules, so at this point deletion is
// unconditional.
func processSelfDestructs(vm *VM, report *ExecutionReport) error {
	if !report.IsSuccess() {
		return nil
	}
	for _, addr := range vm.Substate.SelfDestructSet.ToSlice() {
		vm.DB.Cache.InsertAccount(addr, types.NewAccount(new(uint256.Int), 0, nil))
	}
	return nil
}
