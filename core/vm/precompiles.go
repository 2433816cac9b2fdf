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
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/big"
	"math/bits"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	bn254fp "github.com/consensys/gnark-crypto/ecc/bn254/fp"
	gokzg4844 "github.com/crate-crypto/go-kzg-4844"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/ripemd160"

	"github.com/lambdaclass/levm-go/common"
	"github.com/lambdaclass/levm-go/crypto"
	"github.com/lambdaclass/levm-go/params"
)

// Precompile address ceilings per fork. The count is part of consensus:
// a call to address n with n <= ceiling dispatches here instead of loading
// code, and construction pre-warms exactly these addresses.
const (
	precompileCountDefault uint64 = 9
	precompileCountCancun  uint64 = 10
	precompileCountPrague  uint64 = 17
)

// precompileCount returns the highest precompile address active at fork.
func precompileCount(fork params.Fork) (uint64, error) {
	switch {
	case fork >= params.Prague:
		return precompileCountPrague, nil
	case fork >= params.Cancun:
		return precompileCountCancun, nil
	case fork >= params.Frontier:
		return precompileCountDefault, nil
	default:
		return 0, internalError("precompile set undefined for fork %d", fork)
	}
}

// isPrecompile reports whether addr dispatches to a precompiled contract
// under the given fork.
func isPrecompile(addr common.Address, fork params.Fork) bool {
	count, err := precompileCount(fork)
	if err != nil {
		return false
	}
	for _, b := range addr[:12] {
		if b != 0 {
			return false
		}
	}
	n := binary.BigEndian.Uint64(addr[12:])
	return n >= 1 && n <= count
}

// runPrecompile executes the precompiled contract the frame was built for,
// charging its gas against the frame. A protocol failure (bad input, gas)
// comes back as an error; the caller converts it into a failed report.
func (vm *VM) runPrecompile(frame *CallFrame) ([]byte, error) {
	if !isPrecompile(frame.CodeAddress, vm.Env.Config.Fork) {
		return nil, internalError("precompile frame for non-precompile address %s", frame.CodeAddress)
	}
	input := frame.Calldata
	switch binary.BigEndian.Uint64(frame.CodeAddress[12:]) {
	case 1:
		return runEcrecover(frame, input)
	case 2:
		return runSha256(frame, input)
	case 3:
		return runRipemd160(frame, input)
	case 4:
		return runIdentity(frame, input)
	case 5:
		return runModExp(frame, input)
	case 6:
		return runBn256Add(frame, input)
	case 7:
		return runBn256ScalarMul(frame, input)
	case 8:
		return runBn256Pairing(frame, input)
	case 9:
		return runBlake2F(frame, input)
	case 10:
		return runPointEvaluation(frame, input)
	case 11:
		return runBlsG1Add(frame, input)
	case 12:
		return runBlsG1MSM(frame, input)
	case 13:
		return runBlsG2Add(frame, input)
	case 14:
		return runBlsG2MSM(frame, input)
	case 15:
		return runBlsPairing(frame, input)
	case 16:
		return runBlsMapFpToG1(frame, input)
	case 17:
		return runBlsMapFp2ToG2(frame, input)
	default:
		return nil, internalError("unhandled precompile address %s", frame.CodeAddress)
	}
}

func runEcrecover(frame *CallFrame, input []byte) ([]byte, error) {
	if !frame.UseGas(params.EcrecoverGas) {
		return nil, ErrOutOfGas
	}
	input = common.RightPadBytes(input, 128)

	// v must be 27 or 28 in the low byte with all upper bytes zero.
	for _, b := range input[32:63] {
		if b != 0 {
			return nil, nil
		}
	}
	v := input[63]
	if v != 27 && v != 28 {
		return nil, nil
	}
	r := new(uint256.Int).SetBytes(input[64:96])
	s := new(uint256.Int).SetBytes(input[96:128])
	if !crypto.ValidateSignatureValues(v-27, r, s, false) {
		return nil, nil
	}

	sig := make([]byte, crypto.SignatureLength)
	copy(sig[:64], input[64:128])
	sig[64] = v - 27
	addr, err := crypto.RecoverAddress(input[:32], sig)
	if err != nil {
		// Unrecoverable signatures yield empty output, not a failure.
		return nil, nil
	}
	return common.LeftPadBytes(addr.Bytes(), 32), nil
}

func runSha256(frame *CallFrame, input []byte) ([]byte, error) {
	gas := params.Sha256BaseGas + toWordSize(uint64(len(input)))*params.Sha256PerWordGas
	if !frame.UseGas(gas) {
		return nil, ErrOutOfGas
	}
	h := sha256.Sum256(input)
	return h[:], nil
}

func runRipemd160(frame *CallFrame, input []byte) ([]byte, error) {
	gas := params.Ripemd160BaseGas + toWordSize(uint64(len(input)))*params.Ripemd160PerWordGas
	if !frame.UseGas(gas) {
		return nil, ErrOutOfGas
	}
	hasher := ripemd160.New()
	hasher.Write(input)
	return common.LeftPadBytes(hasher.Sum(nil), 32), nil
}

func runIdentity(frame *CallFrame, input []byte) ([]byte, error) {
	gas := params.IdentityBaseGas + toWordSize(uint64(len(input)))*params.IdentityPerWordGas
	if !frame.UseGas(gas) {
		return nil, ErrOutOfGas
	}
	return common.CopyBytes(input), nil
}

// runModExp implements big integer modular exponentiation with EIP-2565
// pricing.
func runModExp(frame *CallFrame, input []byte) ([]byte, error) {
	baseLen := new(big.Int).SetBytes(getData(input, 0, 32))
	expLen := new(big.Int).SetBytes(getData(input, 32, 32))
	modLen := new(big.Int).SetBytes(getData(input, 64, 32))
	if !baseLen.IsUint64() || !expLen.IsUint64() || !modLen.IsUint64() {
		return nil, ErrOutOfGas
	}
	bLen, eLen, mLen := baseLen.Uint64(), expLen.Uint64(), modLen.Uint64()

	var payload []byte
	if uint64(len(input)) > 96 {
		payload = input[96:]
	}

	// Gas first, from the exponent's leading 32 bytes only; a passing
	// charge bounds the lengths before anything is materialized.
	headLen := eLen
	if headLen > 32 {
		headLen = 32
	}
	var expHead *big.Int
	if bLen <= uint64(len(payload)) {
		expHead = new(big.Int).SetBytes(getData(payload, bLen, headLen))
	} else {
		expHead = new(big.Int)
	}
	if !frame.UseGas(modExpGas(bLen, eLen, mLen, expHead)) {
		return nil, ErrOutOfGas
	}

	base := new(big.Int).SetBytes(getData(payload, 0, bLen))
	exp := new(big.Int).SetBytes(getData(payload, bLen, eLen))
	mod := new(big.Int).SetBytes(getData(payload, bLen+eLen, mLen))
	if mLen == 0 {
		return nil, nil
	}
	if mod.Sign() == 0 {
		return make([]byte, mLen), nil
	}
	result := new(big.Int).Exp(base, exp, mod)
	return common.LeftPadBytes(result.Bytes(), int(mLen)), nil
}

// modExpGas prices a modexp call from the declared lengths and the leading
// 32 bytes of the exponent, per EIP-2565.
func modExpGas(bLen, eLen, mLen uint64, expHead *big.Int) uint64 {
	maxLen := bLen
	if mLen > maxLen {
		maxLen = mLen
	}
	words := (maxLen + 7) / 8
	mcHi, multComplexity := bits.Mul64(words, words)
	if mcHi != 0 {
		return math.MaxUint64
	}

	var iterCount uint64
	switch {
	case eLen <= 32 && expHead.Sign() == 0:
		iterCount = 0
	case eLen <= 32:
		iterCount = uint64(expHead.BitLen() - 1)
	default:
		iterCount = 8 * (eLen - 32)
		if bits := expHead.BitLen(); bits > 0 {
			iterCount += uint64(bits) - 1
		}
	}
	if iterCount < 1 {
		iterCount = 1
	}

	hi, lo := bits.Mul64(multComplexity, iterCount)
	if hi != 0 {
		return math.MaxUint64
	}
	gas := lo / 3
	if gas < params.ModExpMinGas {
		return params.ModExpMinGas
	}
	return gas
}

// parseBn254G1 decodes an EVM-encoded bn254 G1 point: two 32 byte
// big-endian coordinates, both strictly below the field modulus; (0, 0) is
// the point at infinity.
func parseBn254G1(data []byte) (*bn254.G1Affine, error) {
	x := new(big.Int).SetBytes(data[:32])
	y := new(big.Int).SetBytes(data[32:64])
	if x.Cmp(bn254fp.Modulus()) >= 0 || y.Cmp(bn254fp.Modulus()) >= 0 {
		return nil, ErrPrecompileBadCalldata
	}
	p := new(bn254.G1Affine)
	p.X.SetBigInt(x)
	p.Y.SetBigInt(y)
	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return nil, ErrPrecompileBadCalldata
	}
	return p, nil
}

// parseBn254G2 decodes an EVM-encoded bn254 G2 point: coordinates carry
// the imaginary limb first.
func parseBn254G2(data []byte) (*bn254.G2Affine, error) {
	coords := make([]*big.Int, 4)
	for i := 0; i < 4; i++ {
		coords[i] = new(big.Int).SetBytes(data[i*32 : (i+1)*32])
		if coords[i].Cmp(bn254fp.Modulus()) >= 0 {
			return nil, ErrPrecompileBadCalldata
		}
	}
	p := new(bn254.G2Affine)
	p.X.A1.SetBigInt(coords[0])
	p.X.A0.SetBigInt(coords[1])
	p.Y.A1.SetBigInt(coords[2])
	p.Y.A0.SetBigInt(coords[3])
	if p.X.A0.IsZero() && p.X.A1.IsZero() && p.Y.A0.IsZero() && p.Y.A1.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return nil, ErrPrecompileBadCalldata
	}
	return p, nil
}

func encodeBn254G1(p *bn254.G1Affine) []byte {
	out := make([]byte, 64)
	x := p.X.Bytes()
	y := p.Y.Bytes()
	copy(out[:32], x[:])
	copy(out[32:], y[:])
	return out
}

func runBn256Add(frame *CallFrame, input []byte) ([]byte, error) {
	if !frame.UseGas(params.Bn256AddGas) {
		return nil, ErrOutOfGas
	}
	input = common.RightPadBytes(input, 128)
	p1, err := parseBn254G1(input[:64])
	if err != nil {
		return nil, err
	}
	p2, err := parseBn254G1(input[64:128])
	if err != nil {
		return nil, err
	}
	res := new(bn254.G1Affine).Add(p1, p2)
	return encodeBn254G1(res), nil
}

func runBn256ScalarMul(frame *CallFrame, input []byte) ([]byte, error) {
	if !frame.UseGas(params.Bn256ScalarMulGas) {
		return nil, ErrOutOfGas
	}
	input = common.RightPadBytes(input, 96)
	p, err := parseBn254G1(input[:64])
	if err != nil {
		return nil, err
	}
	scalar := new(big.Int).SetBytes(input[64:96])
	res := new(bn254.G1Affine).ScalarMultiplication(p, scalar)
	return encodeBn254G1(res), nil
}

func runBn256Pairing(frame *CallFrame, input []byte) ([]byte, error) {
	const pairSize = 192
	if len(input)%pairSize != 0 {
		frame.ConsumeAllGas()
		return nil, ErrPrecompileBadCalldata
	}
	k := uint64(len(input) / pairSize)
	gas := params.Bn256PairingBaseGas + k*params.Bn256PairingPerPointGas
	if !frame.UseGas(gas) {
		return nil, ErrOutOfGas
	}

	g1s := make([]bn254.G1Affine, 0, k)
	g2s := make([]bn254.G2Affine, 0, k)
	for i := uint64(0); i < k; i++ {
		chunk := input[i*pairSize : (i+1)*pairSize]
		p1, err := parseBn254G1(chunk[:64])
		if err != nil {
			return nil, err
		}
		p2, err := parseBn254G2(chunk[64:])
		if err != nil {
			return nil, err
		}
		if p1.IsInfinity() || p2.IsInfinity() {
			continue
		}
		g1s = append(g1s, *p1)
		g2s = append(g2s, *p2)
	}

	ok := true
	if len(g1s) > 0 {
		var err error
		ok, err = bn254.PairingCheck(g1s, g2s)
		if err != nil {
			return nil, ErrPrecompileBadCalldata
		}
	}
	out := make([]byte, 32)
	if ok {
		out[31] = 1
	}
	return out, nil
}

func runBlake2F(frame *CallFrame, input []byte) ([]byte, error) {
	const inputLen = 213
	if len(input) != inputLen {
		frame.ConsumeAllGas()
		return nil, ErrPrecompileBadCalldata
	}
	final := input[212]
	if final != 0 && final != 1 {
		frame.ConsumeAllGas()
		return nil, ErrPrecompileBadCalldata
	}
	rounds := binary.BigEndian.Uint32(input[:4])
	if !frame.UseGas(uint64(rounds) * params.Blake2FPerRoundGas) {
		return nil, ErrOutOfGas
	}

	var h [8]uint64
	var m [16]uint64
	var t [2]uint64
	for i := 0; i < 8; i++ {
		h[i] = binary.LittleEndian.Uint64(input[4+i*8:])
	}
	for i := 0; i < 16; i++ {
		m[i] = binary.LittleEndian.Uint64(input[68+i*8:])
	}
	t[0] = binary.LittleEndian.Uint64(input[196:])
	t[1] = binary.LittleEndian.Uint64(input[204:])

	blake2bF(&h, m, t, final == 1, rounds)

	out := make([]byte, 64)
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint64(out[i*8:], h[i])
	}
	return out, nil
}

var (
	kzgContextOnce sync.Once
	kzgContext     *gokzg4844.Context
	kzgContextErr  error
)

// blsModulus is the scalar field modulus of BLS12-381, part of the point
// evaluation precompile's fixed return value.
var blsModulus = common.FromHex("0x73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001")

// runPointEvaluation implements the EIP-4844 KZG point evaluation
// precompile: verify that the blob committed to by commitment evaluates to
// y at point z.
func runPointEvaluation(frame *CallFrame, input []byte) ([]byte, error) {
	if !frame.UseGas(params.KZGPointEvaluationGas) {
		return nil, ErrOutOfGas
	}
	if len(input) != 192 {
		return nil, ErrPrecompileBadCalldata
	}

	versionedHash := common.BytesToHash(input[:32])
	var z, y gokzg4844.Scalar
	copy(z[:], input[32:64])
	copy(y[:], input[64:96])
	var commitment gokzg4844.KZGCommitment
	copy(commitment[:], input[96:144])
	var proof gokzg4844.KZGProof
	copy(proof[:], input[144:192])

	if kzgToVersionedHash(commitment) != versionedHash {
		return nil, ErrPrecompileBadCalldata
	}

	kzgContextOnce.Do(func() {
		kzgContext, kzgContextErr = gokzg4844.NewContext4096Secure()
	})
	if kzgContextErr != nil {
		return nil, internalError("kzg trusted setup unavailable: %v", kzgContextErr)
	}
	if err := kzgContext.VerifyKZGProof(commitment, z, y, proof); err != nil {
		return nil, ErrPrecompileBadCalldata
	}

	// FIELD_ELEMENTS_PER_BLOB || BLS_MODULUS, both 32 byte big-endian.
	out := make([]byte, 64)
	binary.BigEndian.PutUint64(out[24:32], gokzg4844.ScalarsPerBlob)
	copy(out[32:], blsModulus)
	return out, nil
}

// kzgToVersionedHash derives the EIP-4844 versioned hash of a commitment:
// the version byte over the commitment's sha256.
func kzgToVersionedHash(commitment gokzg4844.KZGCommitment) common.Hash {
	h := sha256.Sum256(commitment[:])
	h[0] = params.BlobTxHashVersion
	return common.Hash(h)
}
