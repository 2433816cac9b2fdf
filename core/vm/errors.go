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
	"errors"
	"fmt"
)

// Transaction-level outcomes. These are ordinary protocol behavior: the
// failing frame is rolled back, gas is billed per the specific rule, and
// execution reports them through the ExecutionReport rather than an error
// return from Execute.
var (
	ErrOutOfGas                 = errors.New("out of gas")
	ErrGasUintOverflow          = errors.New("gas uint64 overflow")
	ErrDepth                    = errors.New("max call depth exceeded")
	ErrInsufficientBalance      = errors.New("insufficient balance for transfer")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrAddressAlreadyOccupied   = errors.New("AddressAlreadyOccupied")
	ErrExecutionReverted        = errors.New("execution reverted")
	ErrMaxCodeSizeExceeded      = errors.New("max code size exceeded")
	ErrMaxInitCodeSizeExceeded  = errors.New("max initcode size exceeded")
	ErrInvalidJump              = errors.New("invalid jump destination")
	ErrWriteProtection          = errors.New("write protection")
	ErrReturnDataOutOfBounds    = errors.New("return data out of bounds")
	ErrInvalidCode              = errors.New("invalid code: must not begin with 0xef")
	ErrNonceUintOverflow        = errors.New("nonce uint64 overflow")
	ErrStackUnderflow           = errors.New("stack underflow")
	ErrStackOverflow            = errors.New("stack limit reached")
	ErrOffsetOutOfBounds        = errors.New("offset out of bounds")
	ErrPrecompileInputTooShort  = errors.New("precompile input too short")
	ErrPrecompileBadCalldata    = errors.New("precompile invalid calldata")
)

// Transaction validation failures raised by the prepare phase of the
// default hook. No state mutation survives them.
var (
	ErrInsufficientFunds        = errors.New("insufficient funds for gas * price + value")
	ErrNonceTooLow              = errors.New("nonce too low")
	ErrNonceTooHigh             = errors.New("nonce too high")
	ErrSenderNotEOA             = errors.New("sender not an eoa")
	ErrIntrinsicGas             = errors.New("intrinsic gas too low")
	ErrGasLimitTooHigh          = errors.New("transaction gas limit exceeds block gas limit")
	ErrFeeCapTooLow             = errors.New("max fee per gas less than block base fee")
	ErrBlobTxWithoutBlobs       = errors.New("blob transaction without blobs")
	ErrBlobTxBlobCountExceeded  = errors.New("blob transaction exceeds max blobs per block")
	ErrBlobTxInvalidHashVersion = errors.New("blob transaction with invalid versioned hash")
	ErrEmptyAuthorizationList   = errors.New("set code transaction with empty authorization list")
	ErrCreateWithAuthorizations = errors.New("create transaction with authorization list")
)

// ErrInvalidOpcode is returned when the contract executes an undefined
// instruction.
type ErrInvalidOpcode struct {
	opcode OpCode
}

func (e *ErrInvalidOpcode) Error() string {
	return fmt.Sprintf("invalid opcode: %s", e.opcode)
}

// InternalError reports a broken invariant inside the engine itself:
// frame-stack underflow, unknown fork configuration, unpaired backups.
// It is always fatal to the call and must never be downgraded into a
// Revert.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return "internal: " + e.Reason
}

func internalError(format string, args ...interface{}) error {
	return &InternalError{Reason: fmt.Sprintf(format, args...)}
}

// IsInternal reports whether err belongs to the fatal engine-defect class.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
