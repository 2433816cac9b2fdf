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

// Package common contains the word-sized value types shared by every layer
// of the engine.
package common

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// HashLength is the expected length of a hash in bytes.
	HashLength = 32
	// AddressLength is the expected length of an address in bytes.
	AddressLength = 20
)

// Hash represents the 32 byte Keccak256 hash of arbitrary data, and doubles
// as the storage-slot key/value word.
type Hash [HashLength]byte

// BytesToHash sets b to hash, left-padding with zeros if b is shorter than
// 32 bytes and cropping from the left if it is longer.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash returns the hash whose bytes are represented by s, with or
// without the 0x prefix.
func HexToHash(s string) Hash { return BytesToHash(FromHex(s)) }

// Uint256ToHash converts a 256-bit integer to its big-endian hash form.
func Uint256ToHash(v *uint256.Int) Hash { return v.Bytes32() }

// Bytes returns the byte representation of the underlying hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex converts a hash to a 0x-prefixed hex string.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// Uint256 interprets the hash as a big-endian 256-bit integer.
func (h Hash) Uint256() *uint256.Int { return new(uint256.Int).SetBytes32(h[:]) }

// IsZero reports whether the hash is the all-zero word.
func (h Hash) IsZero() bool { return h == Hash{} }

// SetBytes sets the hash to the value of b. If b is larger than 32 bytes,
// b will be cropped from the left.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// Address represents the 20 byte address of an Ethereum account.
type Address [AddressLength]byte

// BytesToAddress returns Address with value b, left-padded or left-cropped
// to 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress returns Address with byte values of s.
func HexToAddress(s string) Address { return BytesToAddress(FromHex(s)) }

// Uint64ToAddress returns the address holding n in its low 8 bytes. It is
// mainly used to name precompiled contracts.
func Uint64ToAddress(n uint64) Address {
	var a Address
	a[12] = byte(n >> 56)
	a[13] = byte(n >> 48)
	a[14] = byte(n >> 40)
	a[15] = byte(n >> 32)
	a[16] = byte(n >> 24)
	a[17] = byte(n >> 16)
	a[18] = byte(n >> 8)
	a[19] = byte(n)
	return a
}

// Bytes returns the byte representation of the underlying address.
func (a Address) Bytes() []byte { return a[:] }

// Hash converts the address to a left-padded 32 byte word.
func (a Address) Hash() Hash { return BytesToHash(a[:]) }

// Hex returns a 0x-prefixed hex string representation of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// SetBytes sets the address to the value of b. If b is larger than 20 bytes,
// b will be cropped from the left.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// FromHex returns the bytes represented by the hexadecimal string s, which
// may be 0x-prefixed and of odd length.
func FromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("invalid hex string %q: %v", s, err))
	}
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Hex2Bytes is FromHex without prefix handling, kept for test fixtures.
func Hex2Bytes(s string) []byte {
	b, _ := hex.DecodeString(s)
	return b
}

// LeftPadBytes zero-pads slice to the left up to length l.
func LeftPadBytes(slice []byte, l int) []byte {
	if l <= len(slice) {
		return slice
	}
	padded := make([]byte, l)
	copy(padded[l-len(slice):], slice)
	return padded
}

// RightPadBytes zero-pads slice to the right up to length l.
func RightPadBytes(slice []byte, l int) []byte {
	if l <= len(slice) {
		return slice
	}
	padded := make([]byte, l)
	copy(padded, slice)
	return padded
}

// CopyBytes returns an exact copy of the provided bytes.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
