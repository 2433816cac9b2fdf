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
	"bytes"
	"math"

	"github.com/lambdaclass/levm-go/common"
	"github.com/lambdaclass/levm-go/crypto"
	"github.com/lambdaclass/levm-go/log"
	"github.com/lambdaclass/levm-go/params"
)

// EIP-7702 delegation designators: an EOA whose code is
// 0xef0100 || address executes the delegate's code when called.
var delegationPrefix = []byte{0xef, 0x01, 0x00}

const delegationCodeLen = 23

func isDelegationDesignator(code []byte) bool {
	return len(code) == delegationCodeLen && bytes.HasPrefix(code, delegationPrefix)
}

func delegationTarget(code []byte) common.Address {
	return common.BytesToAddress(code[len(delegationPrefix):])
}

// resolveCode returns the code that actually runs when target is called,
// following a delegation designator at most one hop. A designator pointing
// at a precompile resolves to empty code; a designator found at the
// delegate is executed verbatim, never followed again.
func (vm *VM) resolveCode(target common.Address) (isDelegated bool, delegate common.Address, code []byte, codeHash common.Hash, err error) {
	account, err := vm.GetAccount(target)
	if err != nil {
		return false, common.Address{}, nil, common.Hash{}, err
	}
	if !isDelegationDesignator(account.Code) {
		return false, common.Address{}, account.Code, accountCodeHash(account.Code, account.Info.CodeHash), nil
	}

	delegate = delegationTarget(account.Code)
	if isPrecompile(delegate, vm.Env.Config.Fork) {
		return true, delegate, nil, crypto.EmptyCodeHash, nil
	}
	delegateAccount, err := vm.GetAccount(delegate)
	if err != nil {
		return false, common.Address{}, nil, common.Hash{}, err
	}
	code = delegateAccount.Code
	return true, delegate, code, accountCodeHash(code, delegateAccount.Info.CodeHash), nil
}

func accountCodeHash(code []byte, stored common.Hash) common.Hash {
	if !stored.IsZero() {
		return stored
	}
	if len(code) == 0 {
		return crypto.EmptyCodeHash
	}
	return crypto.Keccak256Hash(code)
}

// processAuthorizations applies the transaction's EIP-7702 tuples in order.
// Invalid tuples are skipped, never fatal; each valid one installs (or
// clears) a delegation designator on the authority and bumps its nonce.
func (vm *VM) processAuthorizations() error {
	env := vm.Env
	for i := range vm.Tx.AuthorizationList {
		auth := &vm.Tx.AuthorizationList[i]

		if auth.ChainID != 0 && auth.ChainID != env.ChainID {
			continue
		}
		if auth.Nonce == math.MaxUint64 {
			continue
		}
		if !crypto.ValidateSignatureValues(auth.YParity, &auth.R, &auth.S, true) {
			continue
		}

		digest := crypto.Keccak256(crypto.EncodeAuthorizationPreimage(auth.ChainID, auth.Address, auth.Nonce))
		sig := make([]byte, crypto.SignatureLength)
		r, s := auth.R.Bytes32(), auth.S.Bytes32()
		copy(sig[:32], r[:])
		copy(sig[32:64], s[:])
		sig[64] = auth.YParity
		authority, err := crypto.RecoverAddress(digest, sig)
		if err != nil {
			log.Trace("authorization recovery failed", "index", i, "err", err)
			continue
		}

		// The authority is warm from here on, valid tuple or not.
		vm.Substate.TouchAccount(authority)

		account, err := vm.GetAccount(authority)
		if err != nil {
			return err
		}
		if account.HasCode() && !isDelegationDesignator(account.Code) {
			continue
		}
		if account.Info.Nonce != auth.Nonce {
			continue
		}
		if !account.IsEmpty() {
			env.RefundedGas += params.PerEmptyAccountCost - params.PerAuthBaseCost
		}

		var designator []byte
		if auth.Address != (common.Address{}) {
			designator = make([]byte, 0, delegationCodeLen)
			designator = append(designator, delegationPrefix...)
			designator = append(designator, auth.Address.Bytes()...)
		}
		if err := vm.setCode(authority, designator); err != nil {
			return err
		}
		if err := vm.incrementNonce(authority); err != nil {
			return err
		}
	}
	return nil
}
