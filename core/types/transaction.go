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

package types

import (
	"github.com/holiman/uint256"

	"github.com/lambdaclass/levm-go/common"
)

// AccessTuple is one entry of an EIP-2930 access list.
type AccessTuple struct {
	Address     common.Address `json:"address"`
	StorageKeys []common.Hash  `json:"storageKeys"`
}

// AccessList is the pre-declared warm addresses/slots of a transaction.
type AccessList []AccessTuple

// AuthorizationTuple is one EIP-7702 account-delegation directive.
type AuthorizationTuple struct {
	ChainID uint64
	Address common.Address
	Nonce   uint64
	YParity byte
	R       uint256.Int
	S       uint256.Int
}

// Transaction is the engine's view of a transaction: everything execution
// needs, nothing the wire format carries.
type Transaction struct {
	// To is the call target; nil means contract creation.
	To     *common.Address
	Sender common.Address
	Nonce  uint64
	Value  uint256.Int
	Data   []byte

	GasLimit   uint64
	AccessList AccessList

	// AuthorizationList is only set on EIP-7702 set-code transactions.
	AuthorizationList []AuthorizationTuple

	// BlobHashes is only set on EIP-4844 blob transactions.
	BlobHashes []common.Hash

	// Privileged marks system transactions executed under the privileged
	// hook (minted deposits on L2 chains); Recipient is where the minted
	// value lands.
	Privileged bool
	Recipient  common.Address
}

// IsCreate reports whether the transaction deploys a contract.
func (tx *Transaction) IsCreate() bool { return tx.To == nil }

// Log is one emitted event: address, topics and payload, in emission order
// within the report.
type Log struct {
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics"`
	Data    []byte         `json:"data"`
}
