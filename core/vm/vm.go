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

// Package vm implements the deterministic EVM interpreter: an explicit
// call-frame stack driven by a fetch-decode-execute loop, with per-frame
// cache rollback and transaction-scoped substate backups.
package vm

import (
	"github.com/lambdaclass/levm-go/common"
	"github.com/lambdaclass/levm-go/core/state"
	"github.com/lambdaclass/levm-go/core/types"
	"github.com/lambdaclass/levm-go/crypto"
	"github.com/lambdaclass/levm-go/log"
	"github.com/lambdaclass/levm-go/params"
)

// VM executes exactly one transaction. It exclusively owns its frame
// stack, substate and backup stack, and exclusively borrows the database
// handle for the duration of Execute; it must never be reused.
type VM struct {
	CallFrames []*CallFrame
	Env        *Environment
	// Substate is acted upon immediately following the transaction.
	Substate *Substate
	DB       *state.GeneralizedDatabase
	Tx       *types.Transaction

	Hooks   []Hook
	RetData []RetData
	Backups []StateBackup

	table *JumpTable
}

// NewVM seeds the warm sets, builds the root call frame for the
// transaction kind and selects the hook strategy. Construction never
// mutates balances or nonces.
func NewVM(env *Environment, db *state.GeneralizedDatabase, tx *types.Transaction) (*VM, error) {
	fork := env.Config.Fork

	substate := NewSubstate()
	substate.TouchAccount(env.Origin)

	// EIP-3651: the coinbase starts warm from Shanghai on.
	if fork >= params.Shanghai {
		substate.TouchAccount(env.Coinbase)
	}

	for _, tuple := range tx.AccessList {
		substate.TouchAccount(tuple.Address)
		for _, key := range tuple.StorageKeys {
			substate.TouchSlot(tuple.Address, key)
		}
	}

	maxPrecompile, err := precompileCount(fork)
	if err != nil {
		return nil, err
	}
	for i := uint64(1); i <= maxPrecompile; i++ {
		substate.TouchAccount(common.Uint64ToAddress(i))
	}

	// A new transaction has not observed any slot yet, so every cached
	// slot's before-image is refreshed from its current value.
	for _, account := range db.Cache {
		for _, slot := range account.Storage {
			slot.OriginalValue = slot.CurrentValue
		}
	}

	vm := &VM{
		Env:      env,
		Substate: substate,
		DB:       db,
		Tx:       tx,
		Hooks:    selectHooks(tx),
		table:    jumpTableForFork(fork),
	}

	if tx.IsCreate() {
		sender, err := db.GetAccount(env.Origin)
		if err != nil {
			return nil, err
		}
		contractAddr := crypto.CreateAddress(env.Origin, sender.Info.Nonce)
		substate.TouchAccount(contractAddr)
		substate.CreatedAccounts.Add(contractAddr)

		// Bytecode is assigned after the creation validations pass; until
		// then the initcode travels as calldata.
		frame := NewCallFrame(env.Origin, contractAddr, contractAddr, nil, &tx.Value, tx.Data, false, env.GasLimit, 0, true)
		vm.CallFrames = []*CallFrame{frame}
		return vm, nil
	}

	to := *tx.To
	substate.TouchAccount(to)

	_, _, code, codeHash, err := vm.resolveCode(to)
	if err != nil {
		return nil, err
	}
	frame := NewCallFrame(env.Origin, to, to, code, &tx.Value, tx.Data, false, env.GasLimit, 0, false)
	frame.codeHash = codeHash
	frame.isPrecompile = isPrecompile(to, fork)
	vm.CallFrames = []*CallFrame{frame}
	return vm, nil
}

// IsCreate reports whether the transaction deploys a contract.
func (vm *VM) IsCreate() bool { return vm.Tx.IsCreate() }

func (vm *VM) currentFrame() (*CallFrame, error) {
	if len(vm.CallFrames) == 0 {
		return nil, internalError("no call frame on stack")
	}
	return vm.CallFrames[len(vm.CallFrames)-1], nil
}

func (vm *VM) popFrame() (*CallFrame, error) {
	if len(vm.CallFrames) == 0 {
		return nil, internalError("pop on empty call frame stack")
	}
	frame := vm.CallFrames[len(vm.CallFrames)-1]
	vm.CallFrames = vm.CallFrames[:len(vm.CallFrames)-1]
	return frame, nil
}

func (vm *VM) pushBackup() {
	vm.Backups = append(vm.Backups, NewStateBackup(vm.Substate, vm.Env.RefundedGas, vm.Env.TransientStorage))
}

func (vm *VM) popBackup() (StateBackup, error) {
	if len(vm.Backups) == 0 {
		return StateBackup{}, internalError("pop on empty backup stack")
	}
	backup := vm.Backups[len(vm.Backups)-1]
	vm.Backups = vm.Backups[:len(vm.Backups)-1]
	return backup, nil
}

// Execute runs the transaction to completion: prepare hooks, create-target
// validation, the interpreter loop and the finalize hooks. Transaction
// failures (reverts, exceptional halts) come back inside the report; an
// error return means the transaction was rejected before running or the
// engine hit an internal defect.
func (vm *VM) Execute() (*ExecutionReport, error) {
	root, err := vm.currentFrame()
	if err != nil {
		return nil, err
	}

	if err := vm.prepareExecution(); err != nil {
		if IsInternal(err) {
			return nil, err
		}
		// No state mutation survives a prepare-phase failure.
		vm.restoreCacheState(root.Backup)
		log.Debug("transaction rejected in prepare phase", "err", err)
		return nil, err
	}

	// Hook mutations (nonce increment, gas purchase, delegation
	// bookkeeping) are pre-committed: they stick even if the body reverts.
	root.Backup = make(CallFrameBackup)

	if vm.IsCreate() {
		newAccount, err := vm.GetAccount(root.To)
		if err != nil {
			return nil, err
		}
		if newAccount.HasCodeOrNonce() {
			return vm.handleCreateCollision()
		}
		// Privileged transactions never fund the sender; their value was
		// minted to the recipient in the prepare phase.
		if !vm.Tx.Privileged {
			if err := vm.transferValue(vm.Env.Origin, root.To, &root.MsgValue); err != nil {
				return nil, internalError("create value transfer failed after validation: %v", err)
			}
		}
		// EIP-161: fresh contracts start at nonce 1.
		if vm.Env.Config.Fork >= params.SpuriousDragon {
			if err := vm.incrementNonce(root.To); err != nil {
				return nil, err
			}
		}
		// The validated initcode becomes the frame's code; a create frame
		// observes empty calldata.
		root.Code = root.Calldata
		root.Calldata = nil
	} else if !vm.Tx.Privileged && !root.MsgValue.IsZero() {
		// Recorded in the root frame's fresh backup, so a top-level revert
		// returns the value.
		if err := vm.transferValue(vm.Env.Origin, root.To, &root.MsgValue); err != nil {
			return nil, internalError("call value transfer failed after validation: %v", err)
		}
	}

	vm.pushBackup()

	report, err := vm.runExecution()
	if err != nil {
		return nil, err
	}
	if err := vm.finalizeExecution(report); err != nil {
		return nil, err
	}
	return report, nil
}

// StatelessExecute runs the transaction and unconditionally restores the
// database cache afterwards, regardless of outcome. Used for simulation
// where no result may ever be observable.
func (vm *VM) StatelessExecute() (*ExecutionReport, error) {
	snapshot := vm.DB.Cache.Copy()
	report, err := vm.Execute()
	vm.DB.Cache = snapshot
	return report, err
}

// handleCreateCollision is the deterministic revert for creating at an
// occupied address: fixed reason, the whole gas limit consumed, normal
// finalize processing.
func (vm *VM) handleCreateCollision() (*ExecutionReport, error) {
	log.Debug("create target occupied", "address", vm.CallFrames[len(vm.CallFrames)-1].To)
	report := &ExecutionReport{
		Result:  Revert,
		Err:     ErrAddressAlreadyOccupied,
		GasUsed: vm.Env.GasLimit,
	}
	if err := vm.finalizeExecution(report); err != nil {
		return nil, err
	}
	return report, nil
}

func (vm *VM) prepareExecution() error {
	for _, hook := range vm.Hooks {
		if err := hook.Prepare(vm); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) finalizeExecution(report *ExecutionReport) error {
	for _, hook := range vm.Hooks {
		if err := hook.Finalize(vm, report); err != nil {
			return err
		}
	}
	return nil
}

// restoreState reverts one frame's effects: the value-level cache rollback
// plus the substate/refund/transient-storage trio from its backup.
func (vm *VM) restoreState(backup StateBackup, frameBackup CallFrameBackup) {
	vm.restoreCacheState(frameBackup)
	vm.Substate = backup.Substate
	vm.Env.RefundedGas = backup.RefundedGas
	vm.Env.TransientStorage = backup.TransientStorage
}

// restoreCacheState replays a frame backup verbatim: prior entries are
// re-inserted, absence markers delete.
func (vm *VM) restoreCacheState(frameBackup CallFrameBackup) {
	for addr, account := range frameBackup {
		if account != nil {
			vm.DB.Cache.InsertAccount(addr, account)
		} else {
			vm.DB.Cache.RemoveAccount(addr)
		}
	}
}
