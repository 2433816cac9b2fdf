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
	"github.com/lambdaclass/levm-go/core/state"
	"github.com/lambdaclass/levm-go/params"
)

// EVMConfig pins the rule set of one VM instance: the active fork plus the
// blob schedule ruling under it. Immutable for the VM's lifetime.
type EVMConfig struct {
	Fork         params.Fork
	BlobSchedule params.ForkBlobSchedule
}

// NewEVMConfig builds a config from explicit parameters. Chains following
// EIP-7840 defaults should use NewEVMConfigFromChain instead.
func NewEVMConfig(fork params.Fork, schedule params.ForkBlobSchedule) EVMConfig {
	return EVMConfig{Fork: fork, BlobSchedule: schedule}
}

// NewEVMConfigFromChain derives the config ruling at the given block
// timestamp from a chain configuration.
func NewEVMConfigFromChain(chain *params.ChainConfig, time uint64) EVMConfig {
	return EVMConfig{
		Fork:         chain.ForkAt(time),
		BlobSchedule: chain.BlobScheduleAt(time),
	}
}

// CanonicalEVMConfig returns the config with protocol-default blob values
// for the fork.
func CanonicalEVMConfig(fork params.Fork) EVMConfig {
	return EVMConfig{Fork: fork, BlobSchedule: params.CanonicalBlobSchedule(fork)}
}

// Environment is the per-transaction execution context: immutable block
// and pricing information, plus the two transaction-scoped mutable pieces
// (refund counter, transient storage) that participate in the backup
// protocol.
type Environment struct {
	Origin   common.Address
	GasLimit uint64
	Config   EVMConfig
	ChainID  uint64

	// Block context.
	Coinbase      common.Address
	BlockNumber   uint64
	Timestamp     uint64
	PrevRandao    common.Hash
	BlockGasLimit uint64
	BaseFeePerGas uint256.Int
	BlobGasPrice  uint256.Int

	// Effective pricing of this transaction.
	GasPrice           uint256.Int
	TxMaxFeePerGas     *uint256.Int
	TxMaxFeePerBlobGas *uint256.Int

	// Mutable transaction-scoped state. Both are captured into every
	// StateBackup and restored on revert; transient storage is cleared at
	// the transaction boundary and never persisted.
	RefundedGas      uint64
	TransientStorage state.TransientStorage
}

// NewEnvironment fills in the mutable fields; callers set the rest.
func NewEnvironment() Environment {
	return Environment{TransientStorage: state.NewTransientStorage()}
}

// PriorityFeePerGas returns the tip the coinbase collects per gas unit:
// the effective gas price minus the base fee, floored at zero for
// pre-London style pricing.
func (env *Environment) PriorityFeePerGas() *uint256.Int {
	if env.GasPrice.Lt(&env.BaseFeePerGas) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(&env.GasPrice, &env.BaseFeePerGas)
}
