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
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	blsfp "github.com/consensys/gnark-crypto/ecc/bls12-381/fp"

	"github.com/lambdaclass/levm-go/params"
)

// EIP-2537 BLS12-381 precompiles. Field elements travel as 64 byte words
// with 16 bytes of mandatory zero padding in front of the 48 byte value;
// G1 points are 128 bytes, G2 points 256. The all-zero encoding is the
// point at infinity.

const (
	blsFieldElementLen = 64
	blsG1PointLen      = 2 * blsFieldElementLen
	blsG2PointLen      = 4 * blsFieldElementLen
	blsG1MSMItemLen    = blsG1PointLen + 32
	blsG2MSMItemLen    = blsG2PointLen + 32
	blsPairingPairLen  = blsG1PointLen + blsG2PointLen
)

// msmDiscountG1 and msmDiscountG2 are the EIP-2537 multi-scalar
// multiplication discount tables in parts per thousand, indexed by the
// number of pairs minus one; inputs beyond 128 pairs use the last entry.
var msmDiscountG1 = [128]uint64{
	1000, 949, 848, 797, 764, 750, 738, 728, 719, 712, 705, 698, 692, 687, 682, 677,
	673, 669, 665, 661, 658, 654, 651, 648, 645, 642, 640, 637, 635, 632, 630, 627,
	625, 623, 621, 619, 617, 615, 613, 611, 609, 608, 606, 604, 603, 601, 599, 598,
	596, 595, 593, 592, 591, 589, 588, 586, 585, 584, 582, 581, 580, 579, 577, 576,
	575, 574, 573, 572, 570, 569, 568, 567, 566, 565, 564, 563, 562, 561, 560, 559,
	558, 557, 556, 555, 554, 553, 552, 551, 550, 549, 548, 547, 547, 546, 545, 544,
	543, 542, 541, 540, 540, 539, 538, 537, 536, 536, 535, 534, 533, 532, 532, 531,
	530, 529, 528, 528, 527, 526, 525, 525, 524, 523, 522, 522, 521, 520, 520, 519,
}

var msmDiscountG2 = [128]uint64{
	1000, 1000, 923, 884, 855, 832, 812, 796, 782, 770, 759, 749, 740, 732, 724, 717,
	711, 704, 699, 693, 688, 683, 679, 674, 670, 666, 663, 659, 655, 652, 649, 646,
	643, 640, 637, 634, 632, 629, 627, 624, 622, 620, 618, 615, 613, 611, 609, 607,
	606, 604, 602, 600, 598, 597, 595, 593, 592, 590, 589, 587, 586, 584, 583, 582,
	580, 579, 578, 576, 575, 574, 573, 571, 570, 569, 568, 567, 566, 565, 563, 562,
	561, 560, 559, 558, 557, 556, 555, 554, 553, 552, 552, 551, 550, 549, 548, 547,
	546, 545, 545, 544, 543, 542, 541, 541, 540, 539, 538, 537, 537, 536, 535, 535,
	534, 533, 532, 532, 531, 530, 530, 529, 528, 528, 527, 526, 526, 525, 524, 524,
}

func msmGas(pairs uint64, perPoint uint64, table *[128]uint64) uint64 {
	if pairs == 0 {
		return 0
	}
	idx := pairs - 1
	if idx > 127 {
		idx = 127
	}
	return pairs * perPoint * table[idx] / 1000
}

// decodeBlsFieldElement rejects non-canonical values and the missing
// 16 byte zero prefix.
func decodeBlsFieldElement(data []byte) (blsfp.Element, error) {
	var fe blsfp.Element
	for _, b := range data[:16] {
		if b != 0 {
			return fe, ErrPrecompileBadCalldata
		}
	}
	v := new(big.Int).SetBytes(data[16:blsFieldElementLen])
	if v.Cmp(blsfp.Modulus()) >= 0 {
		return fe, ErrPrecompileBadCalldata
	}
	fe.SetBigInt(v)
	return fe, nil
}

func decodeBlsG1(data []byte, subgroupCheck bool) (*bls12381.G1Affine, error) {
	x, err := decodeBlsFieldElement(data[:blsFieldElementLen])
	if err != nil {
		return nil, err
	}
	y, err := decodeBlsFieldElement(data[blsFieldElementLen:blsG1PointLen])
	if err != nil {
		return nil, err
	}
	p := &bls12381.G1Affine{X: x, Y: y}
	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return nil, ErrPrecompileBadCalldata
	}
	if subgroupCheck && !p.IsInSubGroup() {
		return nil, ErrPrecompileBadCalldata
	}
	return p, nil
}

func decodeBlsG2(data []byte, subgroupCheck bool) (*bls12381.G2Affine, error) {
	x0, err := decodeBlsFieldElement(data[:blsFieldElementLen])
	if err != nil {
		return nil, err
	}
	x1, err := decodeBlsFieldElement(data[blsFieldElementLen : 2*blsFieldElementLen])
	if err != nil {
		return nil, err
	}
	y0, err := decodeBlsFieldElement(data[2*blsFieldElementLen : 3*blsFieldElementLen])
	if err != nil {
		return nil, err
	}
	y1, err := decodeBlsFieldElement(data[3*blsFieldElementLen : blsG2PointLen])
	if err != nil {
		return nil, err
	}
	p := new(bls12381.G2Affine)
	p.X.A0, p.X.A1 = x0, x1
	p.Y.A0, p.Y.A1 = y0, y1
	if p.X.A0.IsZero() && p.X.A1.IsZero() && p.Y.A0.IsZero() && p.Y.A1.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return nil, ErrPrecompileBadCalldata
	}
	if subgroupCheck && !p.IsInSubGroup() {
		return nil, ErrPrecompileBadCalldata
	}
	return p, nil
}

func encodeBlsG1(p *bls12381.G1Affine) []byte {
	out := make([]byte, blsG1PointLen)
	if p.IsInfinity() {
		return out
	}
	x := p.X.Bytes()
	y := p.Y.Bytes()
	copy(out[16:blsFieldElementLen], x[:])
	copy(out[blsFieldElementLen+16:], y[:])
	return out
}

func encodeBlsG2(p *bls12381.G2Affine) []byte {
	out := make([]byte, blsG2PointLen)
	if p.IsInfinity() {
		return out
	}
	x0 := p.X.A0.Bytes()
	x1 := p.X.A1.Bytes()
	y0 := p.Y.A0.Bytes()
	y1 := p.Y.A1.Bytes()
	copy(out[16:blsFieldElementLen], x0[:])
	copy(out[blsFieldElementLen+16:2*blsFieldElementLen], x1[:])
	copy(out[2*blsFieldElementLen+16:3*blsFieldElementLen], y0[:])
	copy(out[3*blsFieldElementLen+16:], y1[:])
	return out
}

func runBlsG1Add(frame *CallFrame, input []byte) ([]byte, error) {
	if !frame.UseGas(params.Bls12381G1AddGas) {
		return nil, ErrOutOfGas
	}
	if len(input) != 2*blsG1PointLen {
		return nil, ErrPrecompileBadCalldata
	}
	p1, err := decodeBlsG1(input[:blsG1PointLen], false)
	if err != nil {
		return nil, err
	}
	p2, err := decodeBlsG1(input[blsG1PointLen:], false)
	if err != nil {
		return nil, err
	}
	res := new(bls12381.G1Affine).Add(p1, p2)
	return encodeBlsG1(res), nil
}

func runBlsG1MSM(frame *CallFrame, input []byte) ([]byte, error) {
	if len(input) == 0 || len(input)%blsG1MSMItemLen != 0 {
		frame.ConsumeAllGas()
		return nil, ErrPrecompileBadCalldata
	}
	pairs := uint64(len(input) / blsG1MSMItemLen)
	if !frame.UseGas(msmGas(pairs, params.Bls12381G1MulGas, &msmDiscountG1)) {
		return nil, ErrOutOfGas
	}

	acc := new(bls12381.G1Affine)
	for i := uint64(0); i < pairs; i++ {
		item := input[i*blsG1MSMItemLen : (i+1)*blsG1MSMItemLen]
		p, err := decodeBlsG1(item[:blsG1PointLen], true)
		if err != nil {
			return nil, err
		}
		scalar := new(big.Int).SetBytes(item[blsG1PointLen:])
		term := new(bls12381.G1Affine).ScalarMultiplication(p, scalar)
		acc.Add(acc, term)
	}
	return encodeBlsG1(acc), nil
}

func runBlsG2Add(frame *CallFrame, input []byte) ([]byte, error) {
	if !frame.UseGas(params.Bls12381G2AddGas) {
		return nil, ErrOutOfGas
	}
	if len(input) != 2*blsG2PointLen {
		return nil, ErrPrecompileBadCalldata
	}
	p1, err := decodeBlsG2(input[:blsG2PointLen], false)
	if err != nil {
		return nil, err
	}
	p2, err := decodeBlsG2(input[blsG2PointLen:], false)
	if err != nil {
		return nil, err
	}
	res := new(bls12381.G2Affine).Add(p1, p2)
	return encodeBlsG2(res), nil
}

func runBlsG2MSM(frame *CallFrame, input []byte) ([]byte, error) {
	if len(input) == 0 || len(input)%blsG2MSMItemLen != 0 {
		frame.ConsumeAllGas()
		return nil, ErrPrecompileBadCalldata
	}
	pairs := uint64(len(input) / blsG2MSMItemLen)
	if !frame.UseGas(msmGas(pairs, params.Bls12381G2MulGas, &msmDiscountG2)) {
		return nil, ErrOutOfGas
	}

	acc := new(bls12381.G2Affine)
	for i := uint64(0); i < pairs; i++ {
		item := input[i*blsG2MSMItemLen : (i+1)*blsG2MSMItemLen]
		p, err := decodeBlsG2(item[:blsG2PointLen], true)
		if err != nil {
			return nil, err
		}
		scalar := new(big.Int).SetBytes(item[blsG2PointLen:])
		term := new(bls12381.G2Affine).ScalarMultiplication(p, scalar)
		acc.Add(acc, term)
	}
	return encodeBlsG2(acc), nil
}

func runBlsPairing(frame *CallFrame, input []byte) ([]byte, error) {
	if len(input) == 0 || len(input)%blsPairingPairLen != 0 {
		frame.ConsumeAllGas()
		return nil, ErrPrecompileBadCalldata
	}
	pairs := uint64(len(input) / blsPairingPairLen)
	gas := params.Bls12381PairingBaseGas + pairs*params.Bls12381PairingPerPairGas
	if !frame.UseGas(gas) {
		return nil, ErrOutOfGas
	}

	g1s := make([]bls12381.G1Affine, 0, pairs)
	g2s := make([]bls12381.G2Affine, 0, pairs)
	for i := uint64(0); i < pairs; i++ {
		chunk := input[i*blsPairingPairLen : (i+1)*blsPairingPairLen]
		p1, err := decodeBlsG1(chunk[:blsG1PointLen], true)
		if err != nil {
			return nil, err
		}
		p2, err := decodeBlsG2(chunk[blsG1PointLen:], true)
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
		ok, err = bls12381.PairingCheck(g1s, g2s)
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

func runBlsMapFpToG1(frame *CallFrame, input []byte) ([]byte, error) {
	if !frame.UseGas(params.Bls12381MapG1Gas) {
		return nil, ErrOutOfGas
	}
	if len(input) != blsFieldElementLen {
		return nil, ErrPrecompileBadCalldata
	}
	fe, err := decodeBlsFieldElement(input)
	if err != nil {
		return nil, err
	}
	p := bls12381.MapToG1(fe)
	return encodeBlsG1(&p), nil
}

func runBlsMapFp2ToG2(frame *CallFrame, input []byte) ([]byte, error) {
	if !frame.UseGas(params.Bls12381MapG2Gas) {
		return nil, ErrOutOfGas
	}
	if len(input) != 2*blsFieldElementLen {
		return nil, ErrPrecompileBadCalldata
	}
	c0, err := decodeBlsFieldElement(input[:blsFieldElementLen])
	if err != nil {
		return nil, err
	}
	c1, err := decodeBlsFieldElement(input[blsFieldElementLen:])
	if err != nil {
		return nil, err
	}
	p := bls12381.MapToG2(bls12381.E2{A0: c0, A1: c1})
	return encodeBlsG2(&p), nil
}
