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

package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/lambdaclass/levm-go/common"
)

func TestKeccak256KnownVectors(t *testing.T) {
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Keccak256(nil)))
	assert.Equal(t,
		"4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		hex.EncodeToString(Keccak256([]byte("abc"))))
}

func TestEmptyCodeHash(t *testing.T) {
	assert.Equal(t, common.BytesToHash(Keccak256(nil)), EmptyCodeHash)
}

func TestCreateAddress(t *testing.T) {
	// Canonical vectors for rlp([sender, nonce]) derivation.
	sender := common.HexToAddress("0x970e8128ab834e8eac17ab8e3812f010678cf791")
	assert.Equal(t,
		common.HexToAddress("0x333c3310824b7c685133f2bedb2ca4b8b4df633d"),
		CreateAddress(sender, 0))
	assert.Equal(t,
		common.HexToAddress("0x8bda78331c916a08481428e4b07c96d3e916d165"),
		CreateAddress(sender, 1))
	assert.Equal(t,
		common.HexToAddress("0xc9ddedf451bc62ce88bf9292afb13df35b670699"),
		CreateAddress(sender, 2))
}

func TestCreateAddressNonceWidth(t *testing.T) {
	sender := common.HexToAddress("0x0000000000000000000000000000000000000001")
	// Distinct nonce widths must give distinct addresses.
	seen := map[common.Address]bool{}
	for _, nonce := range []uint64{0, 1, 127, 128, 255, 256, 1 << 16, 1 << 32} {
		addr := CreateAddress(sender, nonce)
		assert.False(t, seen[addr], "collision at nonce %d", nonce)
		seen[addr] = true
	}
}

func TestCreateAddress2(t *testing.T) {
	// EIP-1014 example 0: address(0), salt 0, initcode 0x00.
	sender := common.Address{}
	salt := common.Hash{}
	initHash := Keccak256([]byte{0x00})
	assert.Equal(t,
		common.HexToAddress("0x4d1a2e2bb4f88f0250f26ffff098b0b30b26bf38"),
		CreateAddress2(sender, salt, initHash))

	// EIP-1014 example 4: deadbeef sender, salt with cafebabe prefix.
	sender = common.HexToAddress("0x00000000000000000000000000000000deadbeef")
	salt = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000cafebabe")
	initHash = Keccak256(common.FromHex("deadbeef"))
	assert.Equal(t,
		common.HexToAddress("0x60f3f640a8508fc6a86d45df051962668e1e8ac7"),
		CreateAddress2(sender, salt, initHash))
}

func TestValidateSignatureValues(t *testing.T) {
	one := uint256.NewInt(1)
	zero := new(uint256.Int)

	curveN := uint256.MustFromHex("0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	halfN := new(uint256.Int).Rsh(curveN, 1)

	assert.True(t, ValidateSignatureValues(0, one, one, true))
	assert.True(t, ValidateSignatureValues(1, one, one, true))
	assert.False(t, ValidateSignatureValues(2, one, one, true), "recovery id must be 0 or 1")
	assert.False(t, ValidateSignatureValues(0, zero, one, true), "zero r")
	assert.False(t, ValidateSignatureValues(0, one, zero, true), "zero s")
	assert.False(t, ValidateSignatureValues(0, curveN, one, true), "r at N")

	// Homestead rejects the upper half of the s range; Frontier allows it.
	upperS := new(uint256.Int).Add(halfN, one)
	assert.False(t, ValidateSignatureValues(0, one, upperS, true))
	assert.True(t, ValidateSignatureValues(0, one, upperS, false))
}

func TestRecoverAddressRejectsGarbage(t *testing.T) {
	msg := Keccak256([]byte("recovery test message"))
	sig := make([]byte, SignatureLength)
	_, err := RecoverAddress(msg, sig)
	assert.Error(t, err)
}
