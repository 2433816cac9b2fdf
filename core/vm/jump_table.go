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
	"github.com/lambdaclass/levm-go/params"
)

type executionFunc func(vm *VM, frame *CallFrame) (opResult, error)

// operation is one jump-table entry: the handler, the constant gas billed
// by the loop before dispatch, and the stack/staticness validation bounds.
// Dynamic gas (memory expansion, access lists, copies) is billed inside
// the handler.
type operation struct {
	execute     executionFunc
	constantGas uint64
	minStack    int
	maxStack    int
	// writes marks ops forbidden inside static call contexts. Value-bearing
	// CALLs are additionally rejected in their handler.
	writes bool
}

// JumpTable contains the EVM instructions supported at a given fork.
type JumpTable [256]*operation

func minStack(pops, _ int) int { return pops }
func maxStack(pops, pushes int) int {
	return int(params.StackLimit) + pops - pushes
}

var jumpTables [params.Osaka + 1]*JumpTable

func init() {
	for fork := params.London; fork <= params.Osaka; fork++ {
		jumpTables[fork] = newInstructionSet(fork)
	}
}

// jumpTableForFork returns the shared instruction set of the fork. The
// gas schedules assume EIP-2929 access lists and EIP-3529 refunds, so
// London is the oldest supported fork; earlier configurations execute
// with its tables.
func jumpTableForFork(fork params.Fork) *JumpTable {
	if fork < params.London {
		fork = params.London
	}
	if int(fork) >= len(jumpTables) {
		fork = params.Osaka
	}
	return jumpTables[fork]
}

// newInstructionSet builds the table for one fork. The baseline is the
// Berlin/London rule set; later forks splice their additions in.
func newInstructionSet(fork params.Fork) *JumpTable {
	tbl := &JumpTable{
		STOP:       {execute: opStop, constantGas: 0, minStack: minStack(0, 0), maxStack: maxStack(0, 0)},
		ADD:        {execute: opAdd, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		MUL:        {execute: opMul, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SUB:        {execute: opSub, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		DIV:        {execute: opDiv, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SDIV:       {execute: opSdiv, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		MOD:        {execute: opMod, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SMOD:       {execute: opSmod, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		ADDMOD:     {execute: opAddmod, constantGas: GasMidStep, minStack: minStack(3, 1), maxStack: maxStack(3, 1)},
		MULMOD:     {execute: opMulmod, constantGas: GasMidStep, minStack: minStack(3, 1), maxStack: maxStack(3, 1)},
		EXP:        {execute: opExp, constantGas: params.ExpGas, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SIGNEXTEND: {execute: opSignExtend, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},

		LT:     {execute: opLt, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		GT:     {execute: opGt, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SLT:    {execute: opSlt, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SGT:    {execute: opSgt, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		EQ:     {execute: opEq, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		ISZERO: {execute: opIszero, constantGas: GasFastestStep, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		AND:    {execute: opAnd, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		OR:     {execute: opOr, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		XOR:    {execute: opXor, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		NOT:    {execute: opNot, constantGas: GasFastestStep, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		BYTE:   {execute: opByte, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SHL:    {execute: opSHL, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SHR:    {execute: opSHR, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},
		SAR:    {execute: opSAR, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},

		KECCAK256: {execute: opKeccak256, constantGas: params.Keccak256Gas, minStack: minStack(2, 1), maxStack: maxStack(2, 1)},

		ADDRESS:        {execute: opAddress, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		BALANCE:        {execute: opBalance, constantGas: 0, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		ORIGIN:         {execute: opOrigin, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		CALLER:         {execute: opCaller, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		CALLVALUE:      {execute: opCallValue, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		CALLDATALOAD:   {execute: opCallDataLoad, constantGas: GasFastestStep, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		CALLDATASIZE:   {execute: opCallDataSize, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		CALLDATACOPY:   {execute: opCallDataCopy, constantGas: GasFastestStep, minStack: minStack(3, 0), maxStack: maxStack(3, 0)},
		CODESIZE:       {execute: opCodeSize, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		CODECOPY:       {execute: opCodeCopy, constantGas: GasFastestStep, minStack: minStack(3, 0), maxStack: maxStack(3, 0)},
		GASPRICE:       {execute: opGasprice, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		EXTCODESIZE:    {execute: opExtCodeSize, constantGas: 0, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		EXTCODECOPY:    {execute: opExtCodeCopy, constantGas: 0, minStack: minStack(4, 0), maxStack: maxStack(4, 0)},
		RETURNDATASIZE: {execute: opReturnDataSize, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		RETURNDATACOPY: {execute: opReturnDataCopy, constantGas: GasFastestStep, minStack: minStack(3, 0), maxStack: maxStack(3, 0)},
		EXTCODEHASH:    {execute: opExtCodeHash, constantGas: 0, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},

		BLOCKHASH:   {execute: opBlockhash, constantGas: GasExtStep, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		COINBASE:    {execute: opCoinbase, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		TIMESTAMP:   {execute: opTimestamp, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		NUMBER:      {execute: opNumber, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		PREVRANDAO:  {execute: opPrevRandao, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		GASLIMIT:    {execute: opGasLimit, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		CHAINID:     {execute: opChainID, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		SELFBALANCE: {execute: opSelfBalance, constantGas: GasFastStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},

		POP:      {execute: opPop, constantGas: GasQuickStep, minStack: minStack(1, 0), maxStack: maxStack(1, 0)},
		MLOAD:    {execute: opMload, constantGas: GasFastestStep, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		MSTORE:   {execute: opMstore, constantGas: GasFastestStep, minStack: minStack(2, 0), maxStack: maxStack(2, 0)},
		MSTORE8:  {execute: opMstore8, constantGas: GasFastestStep, minStack: minStack(2, 0), maxStack: maxStack(2, 0)},
		SLOAD:    {execute: opSload, constantGas: 0, minStack: minStack(1, 1), maxStack: maxStack(1, 1)},
		SSTORE:   {execute: opSstore, constantGas: 0, minStack: minStack(2, 0), maxStack: maxStack(2, 0), writes: true},
		JUMP:     {execute: opJump, constantGas: GasMidStep, minStack: minStack(1, 0), maxStack: maxStack(1, 0)},
		JUMPI:    {execute: opJumpi, constantGas: GasSlowStep, minStack: minStack(2, 0), maxStack: maxStack(2, 0)},
		PC:       {execute: opPc, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		MSIZE:    {execute: opMsize, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		GAS:      {execute: opGas, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)},
		JUMPDEST: {execute: opJumpdest, constantGas: params.JumpdestGas, minStack: minStack(0, 0), maxStack: maxStack(0, 0)},

		CREATE:       {execute: opCreate, constantGas: params.CreateGas, minStack: minStack(3, 1), maxStack: maxStack(3, 1), writes: true},
		CALL:         {execute: opCall, constantGas: 0, minStack: minStack(7, 1), maxStack: maxStack(7, 1)},
		CALLCODE:     {execute: opCallCode, constantGas: 0, minStack: minStack(7, 1), maxStack: maxStack(7, 1)},
		RETURN:       {execute: opReturn, constantGas: 0, minStack: minStack(2, 0), maxStack: maxStack(2, 0)},
		DELEGATECALL: {execute: opDelegateCall, constantGas: 0, minStack: minStack(6, 1), maxStack: maxStack(6, 1)},
		CREATE2:      {execute: opCreate2, constantGas: params.CreateGas, minStack: minStack(4, 1), maxStack: maxStack(4, 1), writes: true},
		STATICCALL:   {execute: opStaticCall, constantGas: 0, minStack: minStack(6, 1), maxStack: maxStack(6, 1)},
		REVERT:       {execute: opRevert, constantGas: 0, minStack: minStack(2, 0), maxStack: maxStack(2, 0)},
		INVALID:      {execute: opInvalid, constantGas: 0, minStack: minStack(0, 0), maxStack: maxStack(0, 0)},
		SELFDESTRUCT: {execute: opSelfdestruct, constantGas: params.SelfdestructGas, minStack: minStack(1, 0), maxStack: maxStack(1, 0), writes: true},
	}

	for i := 0; i < 32; i++ {
		n := i + 1
		tbl[PUSH1+OpCode(i)] = &operation{execute: makePush(uint64(n)), constantGas: GasFastestStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	}
	for i := 0; i < 16; i++ {
		n := i + 1
		tbl[DUP1+OpCode(i)] = &operation{execute: makeDup(n), constantGas: GasFastestStep, minStack: minStack(n, n+1), maxStack: maxStack(n, n+1)}
		tbl[SWAP1+OpCode(i)] = &operation{execute: makeSwap(n + 1), constantGas: GasFastestStep, minStack: minStack(n+1, n+1), maxStack: maxStack(n+1, n+1)}
	}
	for i := 0; i <= 4; i++ {
		n := i
		tbl[LOG0+OpCode(i)] = &operation{execute: makeLog(n), constantGas: 0, minStack: minStack(n+2, 0), maxStack: maxStack(n+2, 0), writes: true}
	}

	if fork >= params.London {
		tbl[BASEFEE] = &operation{execute: opBaseFee, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	}
	if fork >= params.Shanghai {
		tbl[PUSH0] = &operation{execute: opPush0, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	}
	if fork >= params.Cancun {
		tbl[TLOAD] = &operation{execute: opTload, constantGas: params.TloadGas, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
		tbl[TSTORE] = &operation{execute: opTstore, constantGas: params.TstoreGas, minStack: minStack(2, 0), maxStack: maxStack(2, 0), writes: true}
		tbl[MCOPY] = &operation{execute: opMcopy, constantGas: GasFastestStep, minStack: minStack(3, 0), maxStack: maxStack(3, 0)}
		tbl[BLOBHASH] = &operation{execute: opBlobHash, constantGas: GasFastestStep, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
		tbl[BLOBBASEFEE] = &operation{execute: opBlobBaseFee, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	}
	return tbl
}

// Tiered constant-gas buckets, named as the yellow paper groups them.
const (
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasExtStep     uint64 = 20
)
