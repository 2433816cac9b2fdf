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

// The engine only ever RLP-encodes two fixed shapes: [sender, nonce] for
// CREATE address derivation and [chain_id, address, nonce] for EIP-7702
// authority hashing. The tiny encoder below covers exactly those.

func encodeUint(v uint64) []byte {
	if v == 0 {
		return encodeBytes(nil)
	}
	var be []byte
	for x := v; x > 0; x >>= 8 {
		be = append([]byte{byte(x)}, be...)
	}
	return encodeBytes(be)
}

func encodeBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	return append(encodeLength(len(b), 0x80), b...)
}

func encodeList(items ...[]byte) []byte {
	var payload []byte
	for _, it := range items {
		payload = append(payload, it...)
	}
	return append(encodeLength(len(payload), 0xc0), payload...)
}

func encodeLength(n int, offset byte) []byte {
	if n <= 55 {
		return []byte{offset + byte(n)}
	}
	var be []byte
	for v := n; v > 0; v >>= 8 {
		be = append([]byte{byte(v)}, be...)
	}
	return append([]byte{offset + 55 + byte(len(be))}, be...)
}

// EncodeAuthorizationPreimage builds the EIP-7702 signing preimage
// 0x05 || rlp([chain_id, address, nonce]).
func EncodeAuthorizationPreimage(chainID uint64, addr [20]byte, nonce uint64) []byte {
	body := encodeList(encodeUint(chainID), encodeBytes(addr[:]), encodeUint(nonce))
	return append([]byte{0x05}, body...)
}
