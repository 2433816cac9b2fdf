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
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambdaclass/levm-go/common"
	"github.com/lambdaclass/levm-go/params"
)

func newPrecompileFrame(gas uint64) *CallFrame {
	value := new(uint256.Int)
	return NewCallFrame(testSender, common.Uint64ToAddress(1), common.Uint64ToAddress(1), nil, value, nil, false, gas, 1, false)
}

func TestIsPrecompileBounds(t *testing.T) {
	assert.False(t, isPrecompile(common.Uint64ToAddress(0), params.Prague))
	assert.True(t, isPrecompile(common.Uint64ToAddress(1), params.Prague))
	assert.True(t, isPrecompile(common.Uint64ToAddress(9), params.Paris))
	assert.False(t, isPrecompile(common.Uint64ToAddress(10), params.Paris))
	assert.True(t, isPrecompile(common.Uint64ToAddress(10), params.Cancun))
	assert.False(t, isPrecompile(common.Uint64ToAddress(11), params.Cancun))
	assert.True(t, isPrecompile(common.Uint64ToAddress(17), params.Prague))
	assert.False(t, isPrecompile(common.Uint64ToAddress(18), params.Prague))

	// Non-zero high bytes disqualify even a small low word.
	var tainted common.Address
	tainted[0] = 0x01
	binary.BigEndian.PutUint64(tainted[12:], 1)
	assert.False(t, isPrecompile(tainted, params.Prague))
}

func TestIdentityPrecompile(t *testing.T) {
	frame := newPrecompileFrame(100)
	input := []byte("hello world precompile")

	out, err := runIdentity(frame, input)
	require.NoError(t, err)
	assert.Equal(t, input, out)
	// base 15 + ceil(22/32) word * 3
	assert.Equal(t, uint64(18), frame.GasUsed())
}

func TestIdentityOutOfGas(t *testing.T) {
	frame := newPrecompileFrame(14)
	_, err := runIdentity(frame, []byte{1})
	assert.ErrorIs(t, err, ErrOutOfGas)
}

func TestSha256Precompile(t *testing.T) {
	frame := newPrecompileFrame(100)
	out, err := runSha256(frame, []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		hex.EncodeToString(out))
	assert.Equal(t, params.Sha256BaseGas+params.Sha256PerWordGas, frame.GasUsed())
}

func TestRipemd160Padding(t *testing.T) {
	frame := newPrecompileFrame(1000)
	out, err := runRipemd160(frame, nil)
	require.NoError(t, err)
	require.Len(t, out, 32)
	// Left-padded to 32 bytes: the first 12 bytes stay zero.
	assert.Equal(t, make([]byte, 12), out[:12])
	// RIPEMD-160 of the empty string.
	assert.Equal(t, "9c1185a5c5e9fc54612808977ee8f548b2258d31", hex.EncodeToString(out[12:]))
}

func TestEcrecoverInvalidSignatureIsEmptySuccess(t *testing.T) {
	frame := newPrecompileFrame(10_000)

	// v = 29 is out of range: the call succeeds with empty output.
	input := make([]byte, 128)
	input[63] = 29
	out, err := runEcrecover(frame, input)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, params.EcrecoverGas, frame.GasUsed())
}

func TestEcrecoverRejectsDirtyUpperBytes(t *testing.T) {
	frame := newPrecompileFrame(10_000)
	input := make([]byte, 128)
	input[63] = 27
	input[40] = 0x01 // garbage above the v byte
	out, err := runEcrecover(frame, input)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestModExp(t *testing.T) {
	frame := newPrecompileFrame(10_000)

	// 3^5 mod 7 = 5, all operands one byte.
	input := make([]byte, 96, 99)
	input[31] = 1
	input[63] = 1
	input[95] = 1
	input = append(input, 3, 5, 7)

	out, err := runModExp(frame, input)
	require.NoError(t, err)
	assert.Equal(t, []byte{5}, out)
	assert.Equal(t, params.ModExpMinGas, frame.GasUsed(), "small inputs pay the floor")
}

func TestModExpZeroModulus(t *testing.T) {
	frame := newPrecompileFrame(10_000)

	// Zero-length modulus yields empty output.
	input := make([]byte, 96, 98)
	input[31] = 1
	input[63] = 1
	input = append(input, 3, 5)

	out, err := runModExp(frame, input)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestModExpShortInputIsZeroPadded(t *testing.T) {
	frame := newPrecompileFrame(10_000)
	out, err := runModExp(frame, nil)
	require.NoError(t, err)
	assert.Empty(t, out, "all lengths zero")
}

func TestBn256AddIdentity(t *testing.T) {
	frame := newPrecompileFrame(10_000)

	// G1 generator (1, 2) plus the point at infinity is the generator.
	input := make([]byte, 128)
	input[31] = 1
	input[63] = 2

	out, err := runBn256Add(frame, input)
	require.NoError(t, err)
	require.Len(t, out, 64)
	assert.Equal(t, input[:64], out)
	assert.Equal(t, params.Bn256AddGas, frame.GasUsed())
}

func TestBn256AddRejectsOffCurve(t *testing.T) {
	frame := newPrecompileFrame(10_000)
	input := make([]byte, 128)
	input[31] = 1
	input[63] = 3 // (1, 3) is not on the curve

	_, err := runBn256Add(frame, input)
	assert.Error(t, err)
}

func TestBn256ScalarMulByOne(t *testing.T) {
	frame := newPrecompileFrame(10_000)

	input := make([]byte, 96)
	input[31] = 1
	input[63] = 2
	input[95] = 1 // scalar 1

	out, err := runBn256ScalarMul(frame, input)
	require.NoError(t, err)
	assert.Equal(t, input[:64], out)
	assert.Equal(t, params.Bn256ScalarMulGas, frame.GasUsed())
}

func TestBn256PairingEmptyInputIsTrue(t *testing.T) {
	frame := newPrecompileFrame(100_000)
	out, err := runBn256Pairing(frame, nil)
	require.NoError(t, err)
	require.Len(t, out, 32)
	assert.Equal(t, byte(1), out[31])
	assert.Equal(t, params.Bn256PairingBaseGas, frame.GasUsed())
}

func TestBn256PairingRejectsRaggedInput(t *testing.T) {
	frame := newPrecompileFrame(100_000)
	_, err := runBn256Pairing(frame, make([]byte, 191))
	assert.ErrorIs(t, err, ErrPrecompileBadCalldata)
	assert.Equal(t, uint64(100_000), frame.GasUsed(), "malformed input consumes everything")
}

func TestBlake2FVector(t *testing.T) {
	// RFC 7693 appendix A: BLAKE2b-512("abc").
	h := [8]uint64{
		blake2bIV[0] ^ 0x01010040, blake2bIV[1], blake2bIV[2], blake2bIV[3],
		blake2bIV[4], blake2bIV[5], blake2bIV[6], blake2bIV[7],
	}
	var m [16]uint64
	block := make([]byte, 128)
	copy(block, "abc")
	for i := 0; i < 16; i++ {
		m[i] = binary.LittleEndian.Uint64(block[i*8:])
	}

	blake2bF(&h, m, [2]uint64{3, 0}, true, 12)

	digest := make([]byte, 64)
	for i, word := range h {
		binary.LittleEndian.PutUint64(digest[i*8:], word)
	}
	assert.Equal(t,
		"ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d1"+
			"7d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923",
		hex.EncodeToString(digest))
}

func TestBlake2FPrecompileInputShape(t *testing.T) {
	frame := newPrecompileFrame(1000)
	_, err := runBlake2F(frame, make([]byte, 212))
	assert.ErrorIs(t, err, ErrPrecompileBadCalldata)

	frame = newPrecompileFrame(1000)
	bad := make([]byte, 213)
	bad[212] = 2 // final flag must be 0 or 1
	_, err = runBlake2F(frame, bad)
	assert.ErrorIs(t, err, ErrPrecompileBadCalldata)
	assert.Equal(t, uint64(1000), frame.GasUsed())
}

func TestBlake2FZeroRounds(t *testing.T) {
	frame := newPrecompileFrame(1000)
	input := make([]byte, 213)
	out, err := runBlake2F(frame, input)
	require.NoError(t, err)
	require.Len(t, out, 64)
	assert.Equal(t, uint64(0), frame.GasUsed(), "zero rounds cost nothing")
}

func TestPointEvaluationInputShape(t *testing.T) {
	frame := newPrecompileFrame(100_000)
	_, err := runPointEvaluation(frame, make([]byte, 191))
	assert.ErrorIs(t, err, ErrPrecompileBadCalldata)
}

func TestBlsG1AddInfinity(t *testing.T) {
	frame := newPrecompileFrame(10_000)

	// Adding two points at infinity yields infinity, encoded as zeros.
	out, err := runBlsG1Add(frame, make([]byte, 256))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 128), out)
	assert.Equal(t, params.Bls12381G1AddGas, frame.GasUsed())
}

func TestBlsG1AddInputShape(t *testing.T) {
	frame := newPrecompileFrame(10_000)
	_, err := runBlsG1Add(frame, make([]byte, 255))
	assert.ErrorIs(t, err, ErrPrecompileBadCalldata)
}

func TestBlsFieldElementPadding(t *testing.T) {
	// The first 16 bytes of a 64-byte field encoding must be zero.
	data := make([]byte, 64)
	data[0] = 1
	_, err := decodeBlsFieldElement(data)
	assert.Error(t, err)

	_, err = decodeBlsFieldElement(make([]byte, 64))
	assert.NoError(t, err)
}

func TestMsmDiscountTables(t *testing.T) {
	// Boundary entries of the EIP-2537 discount schedule.
	assert.Equal(t, uint64(1000), msmDiscountG1[0], "single pair pays full price")
	assert.Equal(t, uint64(1000), msmDiscountG2[0])
	assert.Greater(t, msmDiscountG1[0], msmDiscountG1[127])
	assert.Greater(t, msmDiscountG2[0], msmDiscountG2[127])

	// Beyond 128 pairs the last discount applies.
	long := msmGas(129, params.Bls12381G1MulGas, &msmDiscountG1)
	expect := 129 * params.Bls12381G1MulGas * msmDiscountG1[127] / 1000
	assert.Equal(t, expect, long)
}
