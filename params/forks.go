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

import "fmt"

// Fork identifies a protocol rule set. Forks are totally ordered; rule
// checks are written as `fork >= params.X`.
type Fork int

const (
	Frontier Fork = iota
	Homestead
	TangerineWhistle
	SpuriousDragon
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	Berlin
	London
	Paris
	Shanghai
	Cancun
	Prague
	Osaka
)

var forkNames = [...]string{
	Frontier:         "Frontier",
	Homestead:        "Homestead",
	TangerineWhistle: "TangerineWhistle",
	SpuriousDragon:   "SpuriousDragon",
	Byzantium:        "Byzantium",
	Constantinople:   "Constantinople",
	Petersburg:       "Petersburg",
	Istanbul:         "Istanbul",
	Berlin:           "Berlin",
	London:           "London",
	Paris:            "Paris",
	Shanghai:         "Shanghai",
	Cancun:           "Cancun",
	Prague:           "Prague",
	Osaka:            "Osaka",
}

// String implements fmt.Stringer.
func (f Fork) String() string {
	if f < 0 || int(f) >= len(forkNames) {
		return fmt.Sprintf("Fork(%d)", int(f))
	}
	return forkNames[f]
}

// ForkBlobSchedule holds the EIP-7840 blob parameters active for a fork.
type ForkBlobSchedule struct {
	Target                uint64 `json:"target"`
	Max                   uint64 `json:"max"`
	BaseFeeUpdateFraction uint64 `json:"baseFeeUpdateFraction"`
}

// CanonicalBlobSchedule returns the protocol-default blob schedule for the
// given fork. Chains overriding EIP-7840 values supply their own schedule
// instead.
func CanonicalBlobSchedule(fork Fork) ForkBlobSchedule {
	if fork >= Prague {
		return ForkBlobSchedule{
			Target:                TargetBlobsPerBlockPrague,
			Max:                   MaxBlobsPerBlockPrague,
			BaseFeeUpdateFraction: BlobBaseFeeUpdateFractionPrague,
		}
	}
	return ForkBlobSchedule{
		Target:                TargetBlobsPerBlockCancun,
		Max:                   MaxBlobsPerBlockCancun,
		BaseFeeUpdateFraction: BlobBaseFeeUpdateFractionCancun,
	}
}
