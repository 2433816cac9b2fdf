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
)

// Memory is the byte-addressed scratch memory of a call frame. It only
// ever grows, in 32 byte words; expansion gas is charged before any
// resize through memoryExpansionCost.
type Memory struct {
	store []byte
}

// NewMemory returns a new, empty memory model.
func NewMemory() *Memory {
	return &Memory{}
}

// Resize grows the memory to size bytes, rounded up to a word boundary.
func (m *Memory) Resize(size uint64) {
	size = toWordSize(size) * 32
	if uint64(len(m.store)) < size {
		m.store = append(m.store, make([]byte, size-uint64(len(m.store)))...)
	}
}

// Set writes value to memory at offset. The necessary expansion gas must
// already have been charged.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	m.Resize(offset + size)
	copy(m.store[offset:offset+size], value)
}

// Set32 writes the 32 byte big-endian form of val at offset.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	m.Resize(offset + 32)
	b32 := val.Bytes32()
	copy(m.store[offset:], b32[:])
}

// SetByte writes a single byte at offset.
func (m *Memory) SetByte(offset uint64, b byte) {
	m.Resize(offset + 1)
	m.store[offset] = b
}

// GetCopy returns size bytes from offset as a fresh slice, zero-extended
// past the current memory size.
func (m *Memory) GetCopy(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	m.Resize(offset + size)
	cpy := make([]byte, size)
	copy(cpy, m.store[offset:offset+size])
	return cpy
}

// GetPtr returns a view over size bytes at offset. Callers must not hold
// the slice across further expansion.
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	m.Resize(offset + size)
	return m.store[offset : offset+size]
}

// Copy moves length bytes from src to dst, with the overlap semantics of
// MCOPY (EIP-5656).
func (m *Memory) Copy(dst, src, length uint64) {
	if length == 0 {
		return
	}
	end := dst
	if src > dst {
		end = src
	}
	m.Resize(end + length)
	copy(m.store[dst:dst+length], m.store[src:src+length])
}

// Len returns the current size of the memory.
func (m *Memory) Len() uint64 {
	return uint64(len(m.store))
}

// Data returns the backing slice.
func (m *Memory) Data() []byte {
	return m.store
}

// toWordSize returns the number of 32 byte words the given byte size
// occupies.
func toWordSize(size uint64) uint64 {
	if size > (1<<64)-32 {
		return ((1 << 64) - 1) / 32
	}
	return (size + 31) / 32
}
