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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestMemoryResizeWordAligned(t *testing.T) {
	m := NewMemory()
	m.Resize(1)
	assert.Equal(t, uint64(32), m.Len())
	m.Resize(33)
	assert.Equal(t, uint64(64), m.Len())
	// Shrinking never happens.
	m.Resize(10)
	assert.Equal(t, uint64(64), m.Len())
}

func TestMemorySet32(t *testing.T) {
	m := NewMemory()
	m.Resize(64)
	m.Set32(32, uint256.NewInt(0xdead))

	got := m.GetCopy(32, 32)
	want := make([]byte, 32)
	want[30], want[31] = 0xde, 0xad
	assert.Equal(t, want, got)
}

func TestMemoryGetCopyIsDetached(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.SetByte(0, 0x01)

	snap := m.GetCopy(0, 32)
	m.SetByte(0, 0x02)
	assert.Equal(t, byte(0x01), snap[0])
	assert.Equal(t, byte(0x02), m.GetPtr(0, 1)[0])
}

func TestMemoryCopyOverlapping(t *testing.T) {
	m := NewMemory()
	m.Resize(64)
	m.Set(0, 4, []byte{1, 2, 3, 4})

	m.Copy(2, 0, 4)
	assert.Equal(t, []byte{1, 2, 1, 2, 3, 4}, m.GetCopy(0, 6))
}

func TestToWordSize(t *testing.T) {
	tests := []struct{ size, words uint64 }{
		{0, 0}, {1, 1}, {32, 1}, {33, 2}, {64, 2}, {65, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.words, toWordSize(tt.size), "size %d", tt.size)
	}
}
