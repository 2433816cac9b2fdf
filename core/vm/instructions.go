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
	"github.com/lambdaclass/levm-go/params"
)

// Handlers follow the pop/peek idiom: binary ops pop the top operand and
// overwrite the next in place, so no new stack slot is allocated. Stack
// depth was validated by the dispatch loop.

func opAdd(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Add(&x, y)
	return next(1)
}

func opSub(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Sub(&x, y)
	return next(1)
}

func opMul(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Mul(&x, y)
	return next(1)
}

func opDiv(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Div(&x, y)
	return next(1)
}

func opSdiv(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.SDiv(&x, y)
	return next(1)
}

func opMod(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Mod(&x, y)
	return next(1)
}

func opSmod(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.SMod(&x, y)
	return next(1)
}

func opAddmod(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop2()
	z := frame.Stack.peek()
	z.AddMod(&x, &y, z)
	return next(1)
}

func opMulmod(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop2()
	z := frame.Stack.peek()
	z.MulMod(&x, &y, z)
	return next(1)
}

func opExp(vm *VM, frame *CallFrame) (opResult, error) {
	base, exponent := frame.Stack.pop(), frame.Stack.peek()
	if !frame.UseGas(uint64(exponent.ByteLen()) * params.ExpByteGas) {
		return opResult{}, ErrOutOfGas
	}
	exponent.Exp(&base, exponent)
	return next(1)
}

func opSignExtend(vm *VM, frame *CallFrame) (opResult, error) {
	back, num := frame.Stack.pop(), frame.Stack.peek()
	num.ExtendSign(num, &back)
	return next(1)
}

func opLt(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return next(1)
}

func opGt(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return next(1)
}

func opSlt(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return next(1)
}

func opSgt(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return next(1)
}

func opEq(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return next(1)
}

func opIszero(vm *VM, frame *CallFrame) (opResult, error) {
	x := frame.Stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return next(1)
}

func opAnd(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.And(&x, y)
	return next(1)
}

func opOr(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Or(&x, y)
	return next(1)
}

func opXor(vm *VM, frame *CallFrame) (opResult, error) {
	x, y := frame.Stack.pop(), frame.Stack.peek()
	y.Xor(&x, y)
	return next(1)
}

func opNot(vm *VM, frame *CallFrame) (opResult, error) {
	x := frame.Stack.peek()
	x.Not(x)
	return next(1)
}

func opByte(vm *VM, frame *CallFrame) (opResult, error) {
	th, val := frame.Stack.pop(), frame.Stack.peek()
	val.Byte(&th)
	return next(1)
}

func opSHL(vm *VM, frame *CallFrame) (opResult, error) {
	shift, value := frame.Stack.pop(), frame.Stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return next(1)
}

func opSHR(vm *VM, frame *CallFrame) (opResult, error) {
	shift, value := frame.Stack.pop(), frame.Stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return next(1)
}

func opSAR(vm *VM, frame *CallFrame) (opResult, error) {
	shift, value := frame.Stack.pop(), frame.Stack.peek()
	if shift.GtUint64(255) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return next(1)
	}
	value.SRsh(value, uint(shift.Uint64()))
	return next(1)
}

func opKeccak256(vm *VM, frame *CallFrame) (opResult, error) {
	offset, size := frame.Stack.pop2()
	off, sz, err := chargeMemoryExpansion(frame, &offset, &size)
	if err != nil {
		return opResult{}, err
	}
	if !frame.UseGas(toWordSize(sz) * params.Keccak256WordGas) {
		return opResult{}, ErrOutOfGas
	}
	hash := crypto.Keccak256(frame.Memory.GetPtr(off, sz))
	frame.Stack.push(new(uint256.Int).SetBytes(hash))
	return next(1)
}

func opAddress(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(new(uint256.Int).SetBytes(frame.To.Bytes()))
	return next(1)
}

func opBalance(vm *VM, frame *CallFrame) (opResult, error) {
	slot := frame.Stack.peek()
	addr := common.Address(slot.Bytes20())
	if err := vm.chargeAccountAccess(frame, addr); err != nil {
		return opResult{}, err
	}
	account, err := vm.GetAccount(addr)
	if err != nil {
		return opResult{}, err
	}
	slot.Set(&account.Info.Balance)
	return next(1)
}

func opOrigin(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(new(uint256.Int).SetBytes(vm.Env.Origin.Bytes()))
	return next(1)
}

func opCaller(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(new(uint256.Int).SetBytes(frame.Sender.Bytes()))
	return next(1)
}

func opCallValue(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(&frame.MsgValue)
	return next(1)
}

func opCallDataLoad(vm *VM, frame *CallFrame) (opResult, error) {
	x := frame.Stack.peek()
	if !x.IsUint64() {
		x.Clear()
		return next(1)
	}
	data := getData(frame.Calldata, x.Uint64(), 32)
	x.SetBytes(data)
	return next(1)
}

func opCallDataSize(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(uint256.NewInt(uint64(len(frame.Calldata))))
	return next(1)
}

func opCallDataCopy(vm *VM, frame *CallFrame) (opResult, error) {
	memOffset, dataOffset := frame.Stack.pop2()
	size := frame.Stack.pop()
	return copyToMemory(frame, frame.Calldata, &memOffset, &dataOffset, &size)
}

func opCodeSize(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(uint256.NewInt(uint64(len(frame.Code))))
	return next(1)
}

func opCodeCopy(vm *VM, frame *CallFrame) (opResult, error) {
	memOffset, codeOffset := frame.Stack.pop2()
	size := frame.Stack.pop()
	return copyToMemory(frame, frame.Code, &memOffset, &codeOffset, &size)
}

func opGasprice(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(&vm.Env.GasPrice)
	return next(1)
}

func opExtCodeSize(vm *VM, frame *CallFrame) (opResult, error) {
	slot := frame.Stack.peek()
	addr := common.Address(slot.Bytes20())
	if err := vm.chargeAccountAccess(frame, addr); err != nil {
		return opResult{}, err
	}
	account, err := vm.GetAccount(addr)
	if err != nil {
		return opResult{}, err
	}
	slot.SetUint64(uint64(len(account.Code)))
	return next(1)
}

func opExtCodeCopy(vm *VM, frame *CallFrame) (opResult, error) {
	a := frame.Stack.pop()
	addr := common.Address(a.Bytes20())
	memOffset, codeOffset := frame.Stack.pop2()
	size := frame.Stack.pop()
	if err := vm.chargeAccountAccess(frame, addr); err != nil {
		return opResult{}, err
	}
	account, err := vm.GetAccount(addr)
	if err != nil {
		return opResult{}, err
	}
	return copyToMemory(frame, account.Code, &memOffset, &codeOffset, &size)
}

func opExtCodeHash(vm *VM, frame *CallFrame) (opResult, error) {
	slot := frame.Stack.peek()
	addr := common.Address(slot.Bytes20())
	if err := vm.chargeAccountAccess(frame, addr); err != nil {
		return opResult{}, err
	}
	account, err := vm.GetAccount(addr)
	if err != nil {
		return opResult{}, err
	}
	if account.IsEmpty() {
		slot.Clear()
		return next(1)
	}
	if len(account.Code) == 0 {
		slot.SetBytes32(crypto.EmptyCodeHash.Bytes())
	} else {
		slot.SetBytes32(crypto.Keccak256(account.Code))
	}
	return next(1)
}

func opReturnDataSize(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(uint256.NewInt(uint64(len(frame.ReturnData))))
	return next(1)
}

func opReturnDataCopy(vm *VM, frame *CallFrame) (opResult, error) {
	memOffset, dataOffset := frame.Stack.pop2()
	size := frame.Stack.pop()

	// Unlike the other copies, reads past the return buffer are an error,
	// not zero padding.
	var end uint256.Int
	end.Add(&dataOffset, &size)
	if !end.IsUint64() || end.Uint64() > uint64(len(frame.ReturnData)) {
		return opResult{}, ErrReturnDataOutOfBounds
	}

	off, sz, err := chargeMemoryExpansion(frame, &memOffset, &size)
	if err != nil {
		return opResult{}, err
	}
	if err := chargeCopyWords(frame, sz); err != nil {
		return opResult{}, err
	}
	frame.Memory.Set(off, sz, frame.ReturnData[dataOffset.Uint64():end.Uint64()])
	return next(1)
}

func opBlockhash(vm *VM, frame *CallFrame) (opResult, error) {
	num := frame.Stack.peek()
	current := vm.Env.BlockNumber
	if !num.IsUint64() {
		num.Clear()
		return next(1)
	}
	n := num.Uint64()
	// Only the 256 most recent complete blocks are addressable.
	if n >= current || current-n > 256 {
		num.Clear()
		return next(1)
	}
	hash, err := vm.DB.Store.GetBlockHash(n)
	if err != nil {
		return opResult{}, internalError("block hash lookup failed: %v", err)
	}
	num.SetBytes32(hash.Bytes())
	return next(1)
}

func opCoinbase(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(new(uint256.Int).SetBytes(vm.Env.Coinbase.Bytes()))
	return next(1)
}

func opTimestamp(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(uint256.NewInt(vm.Env.Timestamp))
	return next(1)
}

func opNumber(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(uint256.NewInt(vm.Env.BlockNumber))
	return next(1)
}

func opPrevRandao(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(new(uint256.Int).SetBytes32(vm.Env.PrevRandao.Bytes()))
	return next(1)
}

func opGasLimit(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(uint256.NewInt(vm.Env.BlockGasLimit))
	return next(1)
}

func opChainID(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(uint256.NewInt(vm.Env.ChainID))
	return next(1)
}

func opSelfBalance(vm *VM, frame *CallFrame) (opResult, error) {
	account, err := vm.GetAccount(frame.To)
	if err != nil {
		return opResult{}, err
	}
	frame.Stack.push(new(uint256.Int).Set(&account.Info.Balance))
	return next(1)
}

func opBaseFee(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(&vm.Env.BaseFeePerGas)
	return next(1)
}

func opBlobHash(vm *VM, frame *CallFrame) (opResult, error) {
	index := frame.Stack.peek()
	if index.LtUint64(uint64(len(vm.Tx.BlobHashes))) {
		hash := vm.Tx.BlobHashes[index.Uint64()]
		index.SetBytes32(hash.Bytes())
	} else {
		index.Clear()
	}
	return next(1)
}

func opBlobBaseFee(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(&vm.Env.BlobGasPrice)
	return next(1)
}

func opPop(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.pop()
	return next(1)
}

func opMload(vm *VM, frame *CallFrame) (opResult, error) {
	offset := frame.Stack.peek()
	size := uint256.NewInt(32)
	off, _, err := chargeMemoryExpansion(frame, offset, size)
	if err != nil {
		return opResult{}, err
	}
	offset.SetBytes(frame.Memory.GetPtr(off, 32))
	return next(1)
}

func opMstore(vm *VM, frame *CallFrame) (opResult, error) {
	offset, value := frame.Stack.pop2()
	size := uint256.NewInt(32)
	off, _, err := chargeMemoryExpansion(frame, &offset, size)
	if err != nil {
		return opResult{}, err
	}
	frame.Memory.Set32(off, &value)
	return next(1)
}

func opMstore8(vm *VM, frame *CallFrame) (opResult, error) {
	offset, value := frame.Stack.pop2()
	size := uint256.NewInt(1)
	off, _, err := chargeMemoryExpansion(frame, &offset, size)
	if err != nil {
		return opResult{}, err
	}
	frame.Memory.SetByte(off, byte(value.Uint64()))
	return next(1)
}

func opSload(vm *VM, frame *CallFrame) (opResult, error) {
	loc := frame.Stack.peek()
	key := common.Uint256ToHash(loc)
	if err := vm.chargeSlotAccess(frame, frame.To, key); err != nil {
		return opResult{}, err
	}
	slot, err := vm.getStorageSlot(frame.To, key)
	if err != nil {
		return opResult{}, err
	}
	loc.Set(&slot.CurrentValue)
	return next(1)
}

func opSstore(vm *VM, frame *CallFrame) (opResult, error) {
	loc, value := frame.Stack.pop2()
	key := common.Uint256ToHash(&loc)
	slot, err := vm.getStorageSlot(frame.To, key)
	if err != nil {
		return opResult{}, err
	}
	if err := vm.chargeSstore(frame, frame.To, key, slot, &value); err != nil {
		return opResult{}, err
	}
	if err := vm.setStorageSlot(frame.To, key, &value); err != nil {
		return opResult{}, err
	}
	return next(1)
}

func opTload(vm *VM, frame *CallFrame) (opResult, error) {
	loc := frame.Stack.peek()
	value := vm.Env.TransientStorage.Get(frame.To, common.Uint256ToHash(loc))
	loc.Set(&value)
	return next(1)
}

func opTstore(vm *VM, frame *CallFrame) (opResult, error) {
	loc, value := frame.Stack.pop2()
	vm.Env.TransientStorage.Set(frame.To, common.Uint256ToHash(&loc), value)
	return next(1)
}

func opMcopy(vm *VM, frame *CallFrame) (opResult, error) {
	dst, src := frame.Stack.pop2()
	length := frame.Stack.pop()
	dstOff, sz, err := chargeMemoryExpansion(frame, &dst, &length)
	if err != nil {
		return opResult{}, err
	}
	srcOff, _, err := chargeMemoryExpansion(frame, &src, &length)
	if err != nil {
		return opResult{}, err
	}
	if err := chargeCopyWords(frame, sz); err != nil {
		return opResult{}, err
	}
	frame.Memory.Copy(dstOff, srcOff, sz)
	return next(1)
}

func opJump(vm *VM, frame *CallFrame) (opResult, error) {
	dest := frame.Stack.pop()
	if !dest.IsUint64() || !frame.validJumpdest(dest.Uint64()) {
		return opResult{}, ErrInvalidJump
	}
	frame.PC = dest.Uint64()
	return next(0)
}

func opJumpi(vm *VM, frame *CallFrame) (opResult, error) {
	dest, cond := frame.Stack.pop2()
	if cond.IsZero() {
		return next(1)
	}
	if !dest.IsUint64() || !frame.validJumpdest(dest.Uint64()) {
		return opResult{}, ErrInvalidJump
	}
	frame.PC = dest.Uint64()
	return next(0)
}

func opPc(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(uint256.NewInt(frame.PC))
	return next(1)
}

func opMsize(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(uint256.NewInt(frame.Memory.Len()))
	return next(1)
}

func opGas(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(uint256.NewInt(frame.Gas))
	return next(1)
}

func opJumpdest(vm *VM, frame *CallFrame) (opResult, error) {
	return next(1)
}

func opPush0(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Stack.push(new(uint256.Int))
	return next(1)
}

// makePush builds the handler for PUSH1..PUSH32, reading size immediate
// bytes and zero-extending past the end of code.
func makePush(size uint64) executionFunc {
	return func(vm *VM, frame *CallFrame) (opResult, error) {
		codeLen := uint64(len(frame.Code))
		start := frame.PC + 1
		if start > codeLen {
			start = codeLen
		}
		end := frame.PC + 1 + size
		if end > codeLen {
			end = codeLen
		}
		frame.Stack.push(new(uint256.Int).SetBytes(
			common.RightPadBytes(frame.Code[start:end], int(size))))
		return next(size + 1)
	}
}

func makeDup(n int) executionFunc {
	return func(vm *VM, frame *CallFrame) (opResult, error) {
		frame.Stack.dup(n)
		return next(1)
	}
}

func makeSwap(n int) executionFunc {
	return func(vm *VM, frame *CallFrame) (opResult, error) {
		frame.Stack.swap(n)
		return next(1)
	}
}

// makeLog builds the handler for LOG0..LOG4. Logs ride on the frame and
// are only adopted by the parent when the frame succeeds.
func makeLog(topicCount int) executionFunc {
	return func(vm *VM, frame *CallFrame) (opResult, error) {
		offset, size := frame.Stack.pop2()
		topics := make([]common.Hash, topicCount)
		for i := 0; i < topicCount; i++ {
			t := frame.Stack.pop()
			topics[i] = common.Uint256ToHash(&t)
		}

		off, sz, err := chargeMemoryExpansion(frame, &offset, &size)
		if err != nil {
			return opResult{}, err
		}
		cost := params.LogGas + params.LogTopicGas*uint64(topicCount) + params.LogDataGas*sz
		if !frame.UseGas(cost) {
			return opResult{}, ErrOutOfGas
		}

		frame.Logs = append(frame.Logs, types.Log{
			Address: frame.To,
			Topics:  topics,
			Data:    frame.Memory.GetCopy(off, sz),
		})
		return next(1)
	}
}

func opStop(vm *VM, frame *CallFrame) (opResult, error) {
	frame.Output = nil
	return resHalt, nil
}

func opReturn(vm *VM, frame *CallFrame) (opResult, error) {
	offset, size := frame.Stack.pop2()
	off, sz, err := chargeMemoryExpansion(frame, &offset, &size)
	if err != nil {
		return opResult{}, err
	}
	frame.Output = frame.Memory.GetCopy(off, sz)
	return resHalt, nil
}

func opRevert(vm *VM, frame *CallFrame) (opResult, error) {
	offset, size := frame.Stack.pop2()
	off, sz, err := chargeMemoryExpansion(frame, &offset, &size)
	if err != nil {
		return opResult{}, err
	}
	frame.Output = frame.Memory.GetCopy(off, sz)
	return opResult{}, ErrExecutionReverted
}

func opInvalid(vm *VM, frame *CallFrame) (opResult, error) {
	return opResult{}, &ErrInvalidOpcode{opcode: INVALID}
}

// opSelfdestruct transfers the whole balance to the beneficiary and, when
// the contract was created within this same transaction (EIP-6780, Cancun
// onward), schedules the account for deletion at transaction end.
func opSelfdestruct(vm *VM, frame *CallFrame) (opResult, error) {
	b := frame.Stack.pop()
	beneficiary := common.Address(b.Bytes20())
	fork := vm.Env.Config.Fork

	if vm.Substate.TouchAccount(beneficiary) {
		if !frame.UseGas(params.ColdAccountAccessCost) {
			return opResult{}, ErrOutOfGas
		}
	}

	account, err := vm.GetAccount(frame.To)
	if err != nil {
		return opResult{}, err
	}
	balance := account.Info.Balance

	if !balance.IsZero() {
		exists, err := vm.accountExistsForCall(beneficiary)
		if err != nil {
			return opResult{}, err
		}
		if !exists {
			if !frame.UseGas(params.CallNewAccountGas) {
				return opResult{}, ErrOutOfGas
			}
		}
		if err := vm.transferValue(frame.To, beneficiary, &balance); err != nil {
			return opResult{}, err
		}
	}

	marked := false
	if fork >= params.Cancun {
		if vm.Substate.CreatedAccounts.Contains(frame.To) {
			marked = vm.Substate.SelfDestructSet.Add(frame.To)
		}
	} else {
		marked = vm.Substate.SelfDestructSet.Add(frame.To)
	}
	if marked && fork < params.London {
		vm.Env.RefundedGas += params.SelfdestructRefundGas
	}

	frame.Output = nil
	return resHalt, nil
}

// getData returns size bytes of data starting at start, zero padded past
// the end.
func getData(data []byte, start, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	return common.RightPadBytes(data[start:end], int(size))
}

// copyToMemory is the shared body of the zero-padding *COPY family.
func copyToMemory(frame *CallFrame, src []byte, memOffset, srcOffset, size *uint256.Int) (opResult, error) {
	off, sz, err := chargeMemoryExpansion(frame, memOffset, size)
	if err != nil {
		return opResult{}, err
	}
	if err := chargeCopyWords(frame, sz); err != nil {
		return opResult{}, err
	}
	if sz == 0 {
		return next(1)
	}
	start := uint64(len(src))
	if srcOffset.IsUint64() && srcOffset.Uint64() < start {
		start = srcOffset.Uint64()
	}
	frame.Memory.Set(off, sz, getData(src, start, sz))
	return next(1)
}
