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

// Package params holds the chain configuration and the protocol gas
// constants the interpreter bills against.
package params

// ChainConfig is the core config which determines the blockchain settings.
// It stores the activation time of every timestamp-scheduled fork; earlier
// block-scheduled forks are assumed active from genesis on the chains this
// engine targets.
type ChainConfig struct {
	ChainID uint64 `json:"chainId"`

	ShanghaiTime *uint64 `json:"shanghaiTime,omitempty"`
	CancunTime   *uint64 `json:"cancunTime,omitempty"`
	PragueTime   *uint64 `json:"pragueTime,omitempty"`
	OsakaTime    *uint64 `json:"osakaTime,omitempty"`

	// BlobSchedule optionally overrides the canonical EIP-7840 values per
	// fork. Missing entries fall back to CanonicalBlobSchedule.
	BlobSchedule map[Fork]ForkBlobSchedule `json:"blobSchedule,omitempty"`
}

// TestChainConfig activates every supported fork from genesis.
var TestChainConfig = &ChainConfig{
	ChainID:      1337,
	ShanghaiTime: newUint64(0),
	CancunTime:   newUint64(0),
	PragueTime:   newUint64(0),
}

func newUint64(v uint64) *uint64 { return &v }

func active(at *uint64, time uint64) bool {
	return at != nil && *at <= time
}

// ForkAt returns the fork ruling at the given block timestamp.
func (c *ChainConfig) ForkAt(time uint64) Fork {
	switch {
	case active(c.OsakaTime, time):
		return Osaka
	case active(c.PragueTime, time):
		return Prague
	case active(c.CancunTime, time):
		return Cancun
	case active(c.ShanghaiTime, time):
		return Shanghai
	default:
		return Paris
	}
}

// BlobScheduleAt returns the blob schedule ruling at the given timestamp,
// honoring per-chain overrides before canonical values.
func (c *ChainConfig) BlobScheduleAt(time uint64) ForkBlobSchedule {
	fork := c.ForkAt(time)
	if s, ok := c.BlobSchedule[fork]; ok {
		return s
	}
	return CanonicalBlobSchedule(fork)
}
