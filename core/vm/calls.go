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
	"github.com/lambdaclass/levm-go/crypto"
	"github.com/lambdaclass/levm-go/params"
)

// The call family never recurses: each op pushes a fresh frame (plus its
// state backup and continuation record) and yields back to the run loop
// with a zero pc delta, so the loop picks the child up next. Recoverable
// pre-flight failures (depth, balance) push 0 and carry on in the caller.

// callKind distinguishes the four message-call shapes.
type callKind int

const (
	kindCall callKind = iota
	kindCallCode
	kindDelegateCall
	kindStaticCall
)

func opCall(vm *VM, frame *CallFrame) (opResult, error) {
	return vm.genericCall(frame, kindCall)
}

func opCallCode(vm *VM, frame *CallFrame) (opResult, error) {
	return vm.genericCall(frame, kindCallCode)
}

func opDelegateCall(vm *VM, frame *CallFrame) (opResult, error) {
	return vm.genericCall(frame, kindDelegateCall)
}

func opStaticCall(vm *VM, frame *CallFrame) (opResult, error) {
	return vm.genericCall(frame, kindStaticCall)
}

func (vm *VM) genericCall(frame *CallFrame, kind callKind) (opResult, error) {
	stack := frame.Stack
	gasReq, addrWord := stack.pop2()
	target := common.Address(addrWord.Bytes20())

	var value uint256.Int
	switch kind {
	case kindCall, kindCallCode:
		value = stack.pop()
	case kindDelegateCall:
		value = frame.MsgValue
	}
	argsOffset, argsSize := stack.pop2()
	retOffset, retSize := stack.pop2()

	if kind == kindCall && frame.IsStatic && !value.IsZero() {
		return opResult{}, ErrWriteProtection
	}

	if err := vm.chargeAccountAccess(frame, target); err != nil {
		return opResult{}, err
	}
	inOff, inSize, err := chargeMemoryExpansion(frame, &argsOffset, &argsSize)
	if err != nil {
		return opResult{}, err
	}
	outOff, outSize, err := chargeMemoryExpansion(frame, &retOffset, &retSize)
	if err != nil {
		return opResult{}, err
	}

	isDelegated, delegate, code, codeHash, err := vm.resolveCode(target)
	if err != nil {
		return opResult{}, err
	}
	if isDelegated {
		// EIP-7702: following the designator is one more account access.
		if err := vm.chargeAccountAccess(frame, delegate); err != nil {
			return opResult{}, err
		}
	}

	transfersValue := kind == kindCall && !value.IsZero()
	var extra uint64
	if kind == kindCall || kind == kindCallCode {
		if !value.IsZero() {
			extra += params.CallValueTransferGas
		}
	}
	if transfersValue {
		exists, err := vm.accountExistsForCall(target)
		if err != nil {
			return opResult{}, err
		}
		if !exists {
			extra += params.CallNewAccountGas
		}
	}
	if !frame.UseGas(extra) {
		return opResult{}, ErrOutOfGas
	}

	// EIP-150: at most 63/64 of what remains can be forwarded.
	gas := frame.Gas - frame.Gas/64
	if gasReq.IsUint64() && gasReq.Uint64() < gas {
		gas = gasReq.Uint64()
	}
	frame.Gas -= gas
	childGas := gas
	if kind != kindStaticCall && !value.IsZero() {
		childGas += params.CallStipend
	}

	if frame.Depth+1 > int(params.CallCreateDepth) {
		frame.Gas += childGas
		stack.push(new(uint256.Int))
		frame.ReturnData = nil
		return next(1)
	}
	if transfersValue || (kind == kindCallCode && !value.IsZero()) {
		sender, err := vm.GetAccount(frame.To)
		if err != nil {
			return opResult{}, err
		}
		if sender.Info.Balance.Lt(&value) {
			frame.Gas += childGas
			stack.push(new(uint256.Int))
			frame.ReturnData = nil
			return next(1)
		}
	}

	calldata := frame.Memory.GetCopy(inOff, inSize)

	var child *CallFrame
	switch kind {
	case kindCall:
		child = NewCallFrame(frame.To, target, target, code, &value, calldata, frame.IsStatic, childGas, frame.Depth+1, false)
	case kindCallCode:
		// Target code runs against the caller's own storage and balance.
		child = NewCallFrame(frame.To, frame.To, target, code, &value, calldata, frame.IsStatic, childGas, frame.Depth+1, false)
	case kindDelegateCall:
		// Caller's sender and value pass straight through.
		child = NewCallFrame(frame.Sender, frame.To, target, code, &value, calldata, frame.IsStatic, childGas, frame.Depth+1, false)
	case kindStaticCall:
		child = NewCallFrame(frame.To, target, target, code, nil, calldata, true, childGas, frame.Depth+1, false)
	}
	child.codeHash = codeHash
	child.isPrecompile = isPrecompile(target, vm.Env.Config.Fork)

	vm.CallFrames = append(vm.CallFrames, child)
	vm.pushBackup()
	vm.RetData = append(vm.RetData, RetData{
		RetOffset: outOff,
		RetSize:   outSize,
		To:        child.To,
		MsgSender: child.Sender,
		Value:     value,
		Gas:       childGas,
	})

	// The transfer lands in the child frame's backup, so a child revert
	// undoes it with everything else.
	if transfersValue && target != frame.To {
		if err := vm.transferValue(frame.To, target, &value); err != nil {
			return opResult{}, internalError("call value transfer failed after balance check: %v", err)
		}
	}
	return next(0)
}

func opCreate(vm *VM, frame *CallFrame) (opResult, error) {
	return vm.genericCreate(frame, false)
}

func opCreate2(vm *VM, frame *CallFrame) (opResult, error) {
	return vm.genericCreate(frame, true)
}

func (vm *VM) genericCreate(frame *CallFrame, isCreate2 bool) (opResult, error) {
	stack := frame.Stack
	value, offset := stack.pop2()
	size := stack.pop()
	var salt uint256.Int
	if isCreate2 {
		salt = stack.pop()
	}

	off, sz, err := chargeMemoryExpansion(frame, &offset, &size)
	if err != nil {
		return opResult{}, err
	}
	if vm.Env.Config.Fork >= params.Shanghai {
		if sz > params.MaxInitCodeSize {
			return opResult{}, ErrMaxInitCodeSizeExceeded
		}
		if !frame.UseGas(toWordSize(sz) * params.InitCodeWordGas) {
			return opResult{}, ErrOutOfGas
		}
	}
	if isCreate2 {
		// Hashing the initcode for the address derivation.
		if !frame.UseGas(toWordSize(sz) * params.Keccak256WordGas) {
			return opResult{}, ErrOutOfGas
		}
	}

	if frame.Depth+1 > int(params.CallCreateDepth) {
		stack.push(new(uint256.Int))
		frame.ReturnData = nil
		return next(1)
	}
	creator, err := vm.GetAccount(frame.To)
	if err != nil {
		return opResult{}, err
	}
	if creator.Info.Balance.Lt(&value) {
		stack.push(new(uint256.Int))
		frame.ReturnData = nil
		return next(1)
	}

	// EIP-150 all-but-one-64th; CREATE has no explicit gas argument.
	childGas := frame.Gas - frame.Gas/64
	frame.Gas -= childGas

	initcode := frame.Memory.GetCopy(off, sz)
	nonce := creator.Info.Nonce
	// The creator's nonce bump is recorded in this (the parent) frame, so
	// it survives a failing child but unwinds with the parent.
	if err := vm.incrementNonce(frame.To); err != nil {
		return opResult{}, err
	}

	var contractAddr common.Address
	if isCreate2 {
		contractAddr = crypto.CreateAddress2(frame.To, common.Uint256ToHash(&salt), crypto.Keccak256(initcode))
	} else {
		contractAddr = crypto.CreateAddress(frame.To, nonce)
	}
	// The target becomes warm no matter how the creation ends.
	vm.Substate.TouchAccount(contractAddr)

	occupant, err := vm.GetAccount(contractAddr)
	if err != nil {
		return opResult{}, err
	}
	if occupant.HasCodeOrNonce() {
		// Collision: the forwarded gas is burned, the caller carries on.
		stack.push(new(uint256.Int))
		frame.ReturnData = nil
		return next(1)
	}

	child := NewCallFrame(frame.To, contractAddr, contractAddr, initcode, &value, nil, frame.IsStatic, childGas, frame.Depth+1, true)
	vm.CallFrames = append(vm.CallFrames, child)
	vm.pushBackup()
	// Recorded after the backup push, so a failed creation forgets it.
	vm.Substate.CreatedAccounts.Add(contractAddr)
	vm.RetData = append(vm.RetData, RetData{
		IsCreate:  true,
		To:        contractAddr,
		MsgSender: frame.To,
		Value:     value,
		Gas:       childGas,
	})

	if !value.IsZero() {
		if err := vm.transferValue(frame.To, contractAddr, &value); err != nil {
			return opResult{}, internalError("create value transfer failed after balance check: %v", err)
		}
	}
	// EIP-161: the fresh contract starts life at nonce 1.
	if vm.Env.Config.Fork >= params.SpuriousDragon {
		if err := vm.incrementNonce(contractAddr); err != nil {
			return opResult{}, err
		}
	}
	return next(0)
}
