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
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lambdaclass/levm-go/common"
	"github.com/lambdaclass/levm-go/crypto"
)

// bitvec is a bit vector which maps bytes in a program. An unset bit means
// the byte is an opcode, a set bit means it's data (the argument of a
// PUSHxx).
type bitvec []byte

func (bits bitvec) set1(pos uint64) {
	bits[pos/8] |= 1 << (pos % 8)
}

func (bits bitvec) setN(flag uint16, pos uint64) {
	a := flag << (pos % 8)
	bits[pos/8] |= byte(a)
	if b := byte(a >> 8); b != 0 {
		bits[pos/8+1] = b
	}
}

func (bits bitvec) set8(pos uint64) {
	a := byte(0xFF << (pos % 8))
	bits[pos/8] |= a
	bits[pos/8+1] = ^a
}

func (bits bitvec) set16(pos uint64) {
	a := byte(0xFF << (pos % 8))
	bits[pos/8] |= a
	bits[pos/8+1] = 0xFF
	bits[pos/8+2] = ^a
}

// codeSegment checks if the position is in a code segment.
func (bits bitvec) codeSegment(pos uint64) bool {
	return ((bits[pos/8] >> (pos % 8)) & 1) == 0
}

// codeBitmap collects data locations in code. The bitmap is 4 bytes longer
// than necessary: if the code ends with a PUSH32, bits are set past the end
// of the actual code.
func codeBitmap(code []byte) bitvec {
	bits := make(bitvec, len(code)/8+1+4)
	for pc := uint64(0); pc < uint64(len(code)); {
		op := OpCode(code[pc])
		pc++
		if !op.IsPush() {
			continue
		}
		numbits := uint64(op - PUSH1 + 1)
		for ; numbits >= 16; numbits -= 16 {
			bits.set16(pc)
			pc += 16
		}
		for ; numbits >= 8; numbits -= 8 {
			bits.set8(pc)
			pc += 8
		}
		switch numbits {
		case 0:
		case 1:
			bits.set1(pc)
		default:
			bits.setN(uint16(1)<<numbits-1, pc)
		}
		pc += numbits
	}
	return bits
}

// analysisCacheSize bounds the number of per-codehash JUMPDEST bitmaps
// kept across frames and transactions.
const analysisCacheSize = 4096

var analysisCache, _ = lru.New[common.Hash, bitvec](analysisCacheSize)

// jumpdestBitmap returns the data-byte bitmap for code, memoized by code
// hash. Initcode passes a zero hash and is analyzed on every run, since
// its hash is not worth computing for a single use.
func jumpdestBitmap(codeHash common.Hash, code []byte) bitvec {
	if codeHash.IsZero() {
		return codeBitmap(code)
	}
	if codeHash == crypto.EmptyCodeHash {
		return bitvec{}
	}
	if bits, ok := analysisCache.Get(codeHash); ok {
		return bits
	}
	bits := codeBitmap(code)
	analysisCache.Add(codeHash, bits)
	return bits
}

// validJumpdest reports whether dest is a JUMPDEST byte on an opcode
// boundary of code.
func validJumpdest(code []byte, bits bitvec, dest uint64) bool {
	if dest >= uint64(len(code)) {
		return false
	}
	return OpCode(code[dest]) == JUMPDEST && bits.codeSegment(dest)
}
