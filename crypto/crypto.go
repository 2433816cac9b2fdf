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

// Package crypto implements the hashing and signature-recovery primitives
// the interpreter depends on.
package crypto

import (
	"errors"
	"fmt"
	"hash"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/lambdaclass/levm-go/common"
)

// SignatureLength is the byte length of an [R || S || V] signature with the
// recovery id in its 0/1 form.
const SignatureLength = 65

// KeccakState wraps sha3.state. In addition to the usual hash methods, it
// also supports Read to get a variable amount of data from the hash state.
// Read is faster than Sum because it doesn't copy the internal state.
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// NewKeccakState creates a new KeccakState.
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	b := make([]byte, 32)
	d := NewKeccakState()
	for _, bs := range data {
		d.Write(bs)
	}
	d.Read(b)
	return b
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input data,
// converting it to an internal Hash data structure.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := NewKeccakState()
	for _, bs := range data {
		d.Write(bs)
	}
	d.Read(h[:])
	return h
}

// EmptyCodeHash is the known hash of empty bytecode.
var EmptyCodeHash = Keccak256Hash(nil)

// CreateAddress creates an ethereum address given the creating account and
// its nonce at creation time.
func CreateAddress(sender common.Address, nonce uint64) common.Address {
	enc := encodeList(encodeBytes(sender.Bytes()), encodeUint(nonce))
	return common.BytesToAddress(Keccak256(enc)[12:])
}

// CreateAddress2 creates an ethereum address given the address bytes, the
// initialization code hash and a salt, per CREATE2 (EIP-1014).
func CreateAddress2(sender common.Address, salt common.Hash, initCodeHash []byte) common.Address {
	return common.BytesToAddress(Keccak256([]byte{0xff}, sender.Bytes(), salt.Bytes(), initCodeHash)[12:])
}

// secp256k1N is the order of the secp256k1 curve, used for malleability
// checks on recovered signatures.
var secp256k1N = uint256.MustFromHex("0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")

var secp256k1HalfN = new(uint256.Int).Rsh(secp256k1N, 1)

// ValidateSignatureValues verifies whether the signature values are valid
// with the given chain rules. The v value is assumed to be either 0 or 1.
func ValidateSignatureValues(v byte, r, s *uint256.Int, homestead bool) bool {
	if r.IsZero() || s.IsZero() {
		return false
	}
	if homestead && s.Gt(secp256k1HalfN) {
		return false
	}
	return r.Lt(secp256k1N) && s.Lt(secp256k1N) && (v == 0 || v == 1)
}

// Ecrecover returns the uncompressed public key that created the given
// signature. The signature must be in [R || S || V] format with V = 0/1.
func Ecrecover(hash []byte, sig []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("recovery requires a 32 byte digest, have %d", len(hash))
	}
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes long, have %d", SignatureLength, len(sig))
	}
	// btcec expects the compact form with the recovery id up front.
	compact := make([]byte, SignatureLength)
	compact[0] = sig[64] + 27
	copy(compact[1:], sig[:64])
	pub, _, err := btcecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, err
	}
	return pub.SerializeUncompressed(), nil
}

// RecoverAddress recovers the signing address from a 32 byte digest and an
// [R || S || V] signature.
func RecoverAddress(hash []byte, sig []byte) (common.Address, error) {
	pub, err := Ecrecover(hash, sig)
	if err != nil {
		return common.Address{}, err
	}
	if len(pub) == 0 || pub[0] != 4 {
		return common.Address{}, errors.New("invalid public key")
	}
	return common.BytesToAddress(Keccak256(pub[1:])[12:]), nil
}

// compile-time check that btcec is linked; DecompressPubkey-style helpers
// are not needed by the engine.
var _ = btcec.S256
