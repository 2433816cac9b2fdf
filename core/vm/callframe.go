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
)

// CallFrameBackup records, per address, the cache entry as it stood before
// this frame's first mutation of it. A nil entry marks an account that was
// absent from the cache; restoring replays the map verbatim, re-inserting
// copies or deleting entries.
type CallFrameBackup map[common.Address]*types.Account

// CallFrame is one activation record of the explicit call stack. Frames
// are created on call/create entry and destroyed when popped; the backup
// is either discarded into the parent (success) or replayed (revert).
type CallFrame struct {
	// Sender is msg.sender as seen by this frame.
	Sender common.Address
	// To is the recipient and storage context.
	To common.Address
	// CodeAddress is where the running code lives; it differs from To
	// under DELEGATECALL/CALLCODE and is what precompile dispatch keys on.
	CodeAddress common.Address

	Code     []byte
	codeHash common.Hash
	bitmap   bitvec

	Calldata []byte
	MsgValue uint256.Int

	// GasLimit is the budget handed to this frame; Gas is what remains.
	GasLimit uint64
	Gas      uint64

	PC     uint64
	Stack  *Stack
	Memory *Memory

	Depth    int
	IsStatic bool
	IsCreate bool

	// ReturnData is the child-call return buffer visible to
	// RETURNDATASIZE/RETURNDATACOPY inside this frame.
	ReturnData []byte
	// Output is what this frame hands upward on RETURN/REVERT.
	Output []byte

	Logs   []types.Log
	Backup CallFrameBackup

	isPrecompile bool
}

// NewCallFrame builds a frame with fresh stack, memory and backup.
func NewCallFrame(sender, to, codeAddress common.Address, code []byte, value *uint256.Int, calldata []byte, isStatic bool, gas uint64, depth int, isCreate bool) *CallFrame {
	f := &CallFrame{
		Sender:      sender,
		To:          to,
		CodeAddress: codeAddress,
		Code:        code,
		Calldata:    calldata,
		GasLimit:    gas,
		Gas:         gas,
		Stack:       newStack(),
		Memory:      NewMemory(),
		Depth:       depth,
		IsStatic:    isStatic,
		IsCreate:    isCreate,
		Backup:      make(CallFrameBackup),
	}
	if value != nil {
		f.MsgValue = *value
	}
	return f
}

// release returns pooled resources; the frame must not be used afterwards.
func (f *CallFrame) release() {
	if f.Stack != nil {
		returnStack(f.Stack)
		f.Stack = nil
	}
}

// NextOpcode fetches the instruction at the program counter; past the end
// of code it reads as STOP.
func (f *CallFrame) NextOpcode() OpCode {
	if f.PC < uint64(len(f.Code)) {
		return OpCode(f.Code[f.PC])
	}
	return STOP
}

// UseGas deducts amount from the frame's remaining gas, reporting whether
// the budget covered it.
func (f *CallFrame) UseGas(amount uint64) bool {
	if f.Gas < amount {
		return false
	}
	f.Gas -= amount
	return true
}

// GasUsed returns the gas this frame has consumed so far.
func (f *CallFrame) GasUsed() uint64 {
	return f.GasLimit - f.Gas
}

// ConsumeAllGas zeroes the remaining budget, the billing rule of every
// exceptional halt.
func (f *CallFrame) ConsumeAllGas() {
	f.Gas = 0
}

// validJumpdest reports whether dest is a valid jump target in this
// frame's code, analyzing it on first use.
func (f *CallFrame) validJumpdest(dest uint64) bool {
	if f.bitmap == nil {
		f.bitmap = jumpdestBitmap(f.codeHash, f.Code)
	}
	return validJumpdest(f.Code, f.bitmap, dest)
}

// RetData is the pending continuation recorded when a call or create is
// initiated, consumed exactly once when the pushed frame concludes.
type RetData struct {
	IsCreate  bool
	RetOffset uint64
	RetSize   uint64
	To        common.Address
	MsgSender common.Address
	Value     uint256.Int
	Gas       uint64
}
