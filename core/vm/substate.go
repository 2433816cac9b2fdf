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
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/lambdaclass/levm-go/common"
	"github.com/lambdaclass/levm-go/core/state"
)

// Substate accrues the transaction-scoped side effects that are not
// undoable by plain value restoration: warm addresses and slots, pending
// self-destructions and accounts created this transaction. It always
// reflects exactly the frames still logically committed; reverting to a
// StateBackup replaces it wholesale.
type Substate struct {
	SelfDestructSet     mapset.Set[common.Address]
	TouchedAccounts     mapset.Set[common.Address]
	TouchedStorageSlots map[common.Address]mapset.Set[common.Hash]
	CreatedAccounts     mapset.Set[common.Address]
}

// NewSubstate returns an empty substate.
func NewSubstate() *Substate {
	return &Substate{
		SelfDestructSet:     mapset.NewThreadUnsafeSet[common.Address](),
		TouchedAccounts:     mapset.NewThreadUnsafeSet[common.Address](),
		TouchedStorageSlots: make(map[common.Address]mapset.Set[common.Hash]),
		CreatedAccounts:     mapset.NewThreadUnsafeSet[common.Address](),
	}
}

// Copy returns an independent deep copy, the unit captured by StateBackup.
func (s *Substate) Copy() *Substate {
	cp := &Substate{
		SelfDestructSet:     s.SelfDestructSet.Clone(),
		TouchedAccounts:     s.TouchedAccounts.Clone(),
		TouchedStorageSlots: make(map[common.Address]mapset.Set[common.Hash], len(s.TouchedStorageSlots)),
		CreatedAccounts:     s.CreatedAccounts.Clone(),
	}
	for addr, slots := range s.TouchedStorageSlots {
		cp.TouchedStorageSlots[addr] = slots.Clone()
	}
	return cp
}

// TouchAccount marks addr warm and reports whether it was cold before.
func (s *Substate) TouchAccount(addr common.Address) (cold bool) {
	return s.TouchedAccounts.Add(addr)
}

// IsAccountWarm reports whether addr has been charged its cold access this
// transaction.
func (s *Substate) IsAccountWarm(addr common.Address) bool {
	return s.TouchedAccounts.Contains(addr)
}

// TouchSlot marks (addr, key) warm and reports whether the slot was cold
// before.
func (s *Substate) TouchSlot(addr common.Address, key common.Hash) (cold bool) {
	slots, ok := s.TouchedStorageSlots[addr]
	if !ok {
		slots = mapset.NewThreadUnsafeSet[common.Hash]()
		s.TouchedStorageSlots[addr] = slots
	}
	return slots.Add(key)
}

// IsSlotWarm reports whether (addr, key) is in the warm set.
func (s *Substate) IsSlotWarm(addr common.Address, key common.Hash) bool {
	slots, ok := s.TouchedStorageSlots[addr]
	return ok && slots.Contains(key)
}

// StateBackup is an immutable point-in-time copy of the mutable
// transaction-scoped state: substate, refund counter and transient
// storage. One is pushed per mutation-capable context entry and popped on
// its exit; restoring replaces the live views with these.
type StateBackup struct {
	Substate         *Substate
	RefundedGas      uint64
	TransientStorage state.TransientStorage
}

// NewStateBackup captures the current substate/refund/transient-storage
// trio.
func NewStateBackup(substate *Substate, refundedGas uint64, transient state.TransientStorage) StateBackup {
	return StateBackup{
		Substate:         substate.Copy(),
		RefundedGas:      refundedGas,
		TransientStorage: transient.Copy(),
	}
}
