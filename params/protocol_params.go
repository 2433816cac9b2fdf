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

package params

const (
	TxGas                     uint64 = 21000 // Per transaction not creating a contract.
	TxGasContractCreation     uint64 = 53000 // Per transaction that creates a contract.
	TxDataZeroGas             uint64 = 4     // Per byte of zero calldata.
	TxDataNonZeroGas          uint64 = 16    // Per byte of non-zero calldata (EIP-2028).
	TxAccessListAddressGas    uint64 = 2400  // Per address in the tx access list (EIP-2930).
	TxAccessListStorageKeyGas uint64 = 1900  // Per storage key in the tx access list (EIP-2930).

	// EIP-7623 calldata floor pricing: calldata is measured in tokens, a
	// zero byte is one token, a non-zero byte four.
	TxTokenPerNonZeroByte uint64 = 4
	TxCostFloorPerToken   uint64 = 10

	QuadCoeffDiv uint64 = 512 // Divisor for the quadratic particle of the memory cost equation.
	MemoryGas    uint64 = 3   // Per word of memory expansion, linear particle.
	CopyGas      uint64 = 3   // Per word copied by *COPY ops.

	Keccak256Gas     uint64 = 30 // Once per KECCAK256 operation.
	Keccak256WordGas uint64 = 6  // Per word of KECCAK256 input.

	ExpGas     uint64 = 10 // Once per EXP.
	ExpByteGas uint64 = 50 // Per byte of the EXP exponent (EIP-160).

	SloadGas              uint64 = 100  // Warm SLOAD (EIP-2929 WARM_STORAGE_READ_COST).
	ColdSloadCost         uint64 = 2100 // Cold SLOAD (EIP-2929).
	ColdAccountAccessCost uint64 = 2600 // Cold account access (EIP-2929).
	WarmStorageReadCost   uint64 = 100  // Warm storage/account access (EIP-2929).

	SstoreSetGas               uint64 = 20000 // SSTORE from zero to non-zero.
	SstoreResetGas             uint64 = 5000  // SSTORE dirtying a slot, before the cold surcharge split.
	SstoreClearsScheduleRefund uint64 = 4800  // Refund for clearing a slot (EIP-3529).

	TloadGas  uint64 = 100 // TLOAD (EIP-1153).
	TstoreGas uint64 = 100 // TSTORE (EIP-1153).

	JumpdestGas uint64 = 1   // Once per JUMPDEST.
	LogGas      uint64 = 375 // Per LOG* operation.
	LogTopicGas uint64 = 375 // Per LOG* topic.
	LogDataGas  uint64 = 8   // Per byte of LOG* data.

	CreateGas       uint64 = 32000           // Once per CREATE/CREATE2.
	CreateDataGas   uint64 = 200             // Per byte of deployed contract code.
	InitCodeWordGas uint64 = 2               // Per word of initcode (EIP-3860).
	MaxCodeSize     uint64 = 24576           // Maximum deployed bytecode size (EIP-170).
	MaxInitCodeSize uint64 = 2 * MaxCodeSize // Maximum initcode size (EIP-3860).
	Create2SaltGas  uint64 = 6               // Per word of CREATE2 salt hashing, billed via Keccak256WordGas rate.

	CallValueTransferGas uint64 = 9000  // Paid for CALL when the value transfer is non-zero.
	CallNewAccountGas    uint64 = 25000 // Paid for CALL when the destination did not exist prior.
	CallStipend          uint64 = 2300  // Free gas given at the beginning of a value-bearing call.

	SelfdestructGas       uint64 = 5000  // SELFDESTRUCT base (EIP-150).
	SelfdestructRefundGas uint64 = 24000 // Refunded pre-London (removed by EIP-3529).

	StackLimit      uint64 = 1024 // Maximum size of the VM stack.
	CallCreateDepth uint64 = 1024 // Maximum depth of the call/create frame stack.

	RefundQuotient        uint64 = 2 // Pre-London maximum refund denominator.
	RefundQuotientEIP3529 uint64 = 5 // London maximum refund denominator.

	BlobTxBlobGasPerBlob  uint64 = 1 << 17 // Gas consumption of a single data blob.
	BlobTxMinBlobGasprice uint64 = 1       // Minimum blob gas price.
	BlobTxHashVersion     byte   = 0x01    // Version byte of versioned blob hashes.

	// EIP-7840 canonical blob schedule values.
	TargetBlobsPerBlockCancun       uint64 = 3
	MaxBlobsPerBlockCancun          uint64 = 6
	BlobBaseFeeUpdateFractionCancun uint64 = 3338477
	TargetBlobsPerBlockPrague       uint64 = 6
	MaxBlobsPerBlockPrague          uint64 = 9
	BlobBaseFeeUpdateFractionPrague uint64 = 5007716

	// EIP-7702 set-code transaction costs.
	CallNewAccountGasEIP7702 uint64 = 25000
	PerEmptyAccountCost      uint64 = 25000 // Per authorization whose authority did not exist.
	PerAuthBaseCost          uint64 = 12500 // Per authorization tuple.

	// Precompiled contract gas prices.
	EcrecoverGas        uint64 = 3000
	Sha256BaseGas       uint64 = 60
	Sha256PerWordGas    uint64 = 12
	Ripemd160BaseGas    uint64 = 600
	Ripemd160PerWordGas uint64 = 120
	IdentityBaseGas     uint64 = 15
	IdentityPerWordGas  uint64 = 3
	ModExpMinGas        uint64 = 200 // EIP-2565 floor.

	Bn256AddGas             uint64 = 150 // Istanbul repricing (EIP-1108).
	Bn256ScalarMulGas       uint64 = 6000
	Bn256PairingBaseGas     uint64 = 45000
	Bn256PairingPerPointGas uint64 = 34000

	Blake2FPerRoundGas uint64 = 1

	KZGPointEvaluationGas uint64 = 50000 // EIP-4844.

	// EIP-2537 BLS12-381 operation prices.
	Bls12381G1AddGas          uint64 = 375
	Bls12381G2AddGas          uint64 = 600
	Bls12381G1MulGas          uint64 = 12000 // MSM per-point multiplier before discount.
	Bls12381G2MulGas          uint64 = 22500
	Bls12381PairingBaseGas    uint64 = 37700
	Bls12381PairingPerPairGas uint64 = 32600
	Bls12381MapG1Gas          uint64 = 5500
	Bls12381MapG2Gas          uint64 = 23800
)
