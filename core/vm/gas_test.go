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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambdaclass/levm-go/common"
	"github.com/lambdaclass/levm-go/core/types"
	"github.com/lambdaclass/levm-go/params"
)

func TestMemoryCost(t *testing.T) {
	tests := []struct{ size, cost uint64 }{
		{0, 0},
		{32, 3},
		{64, 6},
		{1024, 32*3 + 32*32/512},
		{32 * 1024, 1024*3 + 1024*1024/512},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.cost, memoryCost(tt.size), "size %d", tt.size)
	}
}

func TestIntrinsicGas(t *testing.T) {
	to := testTarget
	tests := []struct {
		name string
		tx   *types.Transaction
		fork params.Fork
		want uint64
	}{
		{
			name: "plain transfer",
			tx:   &types.Transaction{To: &to},
			fork: params.Cancun,
			want: 21000,
		},
		{
			name: "one zero one nonzero byte",
			tx:   &types.Transaction{To: &to, Data: []byte{0, 1}},
			fork: params.Cancun,
			want: 21000 + 4 + 16,
		},
		{
			name: "access list",
			tx: &types.Transaction{To: &to, AccessList: types.AccessList{
				{Address: testTarget, StorageKeys: make([]common.Hash, 2)},
			}},
			fork: params.Cancun,
			want: 21000 + 2400 + 2*1900,
		},
		{
			name: "create one byte pre-shanghai",
			tx:   &types.Transaction{Data: []byte{1}},
			fork: params.Paris,
			want: 53000 + 16,
		},
		{
			name: "create one byte shanghai adds initcode word gas",
			tx:   &types.Transaction{Data: []byte{1}},
			fork: params.Shanghai,
			want: 53000 + 16 + 2,
		},
		{
			name: "authorization tuples",
			tx: &types.Transaction{To: &to, AuthorizationList: []types.AuthorizationTuple{
				{}, {},
			}},
			fork: params.Prague,
			want: 21000 + 2*params.PerEmptyAccountCost,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntrinsicGas(tt.tx, tt.fork)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntrinsicGasRejectsOversizedInitcode(t *testing.T) {
	tx := &types.Transaction{Data: make([]byte, params.MaxInitCodeSize+1)}
	_, err := IntrinsicGas(tx, params.Shanghai)
	assert.ErrorIs(t, err, ErrMaxInitCodeSizeExceeded)

	// Pre-Shanghai the cap does not exist.
	_, err = IntrinsicGas(tx, params.Paris)
	assert.NoError(t, err)
}

func TestCalldataFloorGas(t *testing.T) {
	// floor = 21000 + tokens * 10, a zero byte is one token, non-zero four.
	assert.Equal(t, uint64(21000), CalldataFloorGas(nil))
	assert.Equal(t, uint64(21000+10), CalldataFloorGas([]byte{0}))
	assert.Equal(t, uint64(21000+40), CalldataFloorGas([]byte{1}))
	assert.Equal(t, uint64(21000+50), CalldataFloorGas([]byte{0, 0xff}))
}
