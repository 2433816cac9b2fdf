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
	"github.com/lambdaclass/levm-go/core/types"
)

// TxResult is the outcome class of an execution.
type TxResult byte

const (
	// Success: the frame (or transaction) ran to a normal halt.
	Success TxResult = iota
	// Revert: intentional unwind. State is rolled back, gas up to the
	// failure point stays billed, Err carries the reason and Output may
	// carry revert data.
	Revert
	// Failure: exceptional halt (out of gas, invalid opcode, ...). State
	// is rolled back and the frame's entire gas budget is consumed.
	Failure
)

// String implements fmt.Stringer.
func (r TxResult) String() string {
	switch r {
	case Success:
		return "success"
	case Revert:
		return "revert"
	default:
		return "failure"
	}
}

// ExecutionReport is the externally visible result of executing one
// transaction (or, internally, one call frame).
type ExecutionReport struct {
	Result      TxResult
	Err         error // reason for Revert/Failure, nil on Success
	GasUsed     uint64
	GasRefunded uint64
	Logs        []types.Log
	Output      []byte
}

// IsSuccess reports whether execution ran to a normal halt.
func (r *ExecutionReport) IsSuccess() bool {
	return r.Result == Success
}
