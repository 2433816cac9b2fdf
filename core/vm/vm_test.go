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
	"github.com/stretchr/testify/require"

	"github.com/lambdaclass/levm-go/common"
	"github.com/lambdaclass/levm-go/core/state"
	"github.com/lambdaclass/levm-go/core/types"
	"github.com/lambdaclass/levm-go/crypto"
	"github.com/lambdaclass/levm-go/params"
)

// testStore is an in-memory durable state provider.
type testStore struct {
	accounts    map[common.Address]*types.Account
	storage     map[common.Address]map[common.Hash]uint256.Int
	blockHashes map[uint64]common.Hash
}

func newTestStore() *testStore {
	return &testStore{
		accounts:    make(map[common.Address]*types.Account),
		storage:     make(map[common.Address]map[common.Hash]uint256.Int),
		blockHashes: make(map[uint64]common.Hash),
	}
}

func (s *testStore) setAccount(addr common.Address, balance uint64, nonce uint64, code []byte) {
	s.accounts[addr] = types.NewAccount(uint256.NewInt(balance), nonce, code)
}

func (s *testStore) GetAccount(addr common.Address) (*types.Account, error) {
	if acc, ok := s.accounts[addr]; ok {
		return acc.Copy(), nil
	}
	return nil, nil
}

func (s *testStore) GetStorageValue(addr common.Address, key common.Hash) (uint256.Int, error) {
	if slots, ok := s.storage[addr]; ok {
		return slots[key], nil
	}
	return uint256.Int{}, nil
}

func (s *testStore) GetBlockHash(number uint64) (common.Hash, error) {
	return s.blockHashes[number], nil
}

var (
	testSender   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testTarget   = common.HexToAddress("0x2000000000000000000000000000000000000002")
	testCoinbase = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

const oneEther = 1_000_000_000_000_000_000

func newTestEnv(fork params.Fork, gasLimit uint64) *Environment {
	env := NewEnvironment()
	env.Origin = testSender
	env.GasLimit = gasLimit
	env.Config = CanonicalEVMConfig(fork)
	env.ChainID = 1
	env.Coinbase = testCoinbase
	env.BlockNumber = 1000
	env.Timestamp = 1710000000
	env.BlockGasLimit = 30_000_000
	env.GasPrice = *uint256.NewInt(1)
	env.BaseFeePerGas = *uint256.NewInt(1)
	return &env
}

func newCallTx(to common.Address, gasLimit, value uint64) *types.Transaction {
	return &types.Transaction{
		To:       &to,
		Sender:   testSender,
		Value:    *uint256.NewInt(value),
		GasLimit: gasLimit,
	}
}

func execute(t *testing.T, fork params.Fork, store *testStore, tx *types.Transaction) (*ExecutionReport, *state.GeneralizedDatabase) {
	t.Helper()
	db := state.NewGeneralizedDatabase(store)
	env := newTestEnv(fork, tx.GasLimit)
	vm, err := NewVM(env, db, tx)
	require.NoError(t, err)
	report, err := vm.Execute()
	require.NoError(t, err)
	return report, db
}

func TestValueTransferUsesBaseGas(t *testing.T) {
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)

	tx := newCallTx(testTarget, 100_000, 1000)
	report, db := execute(t, params.Cancun, store, tx)

	require.True(t, report.IsSuccess(), "err: %v", report.Err)
	assert.Equal(t, params.TxGas, report.GasUsed)

	sender, err := db.GetAccount(testSender)
	require.NoError(t, err)
	recipient, err := db.GetAccount(testTarget)
	require.NoError(t, err)
	assert.Equal(t, uint64(oneEther-1000-21000), sender.Info.Balance.Uint64())
	assert.Equal(t, uint64(1000), recipient.Info.Balance.Uint64())
	assert.Equal(t, uint64(1), sender.Info.Nonce)
}

func TestSimpleContractReturn(t *testing.T) {
	// PUSH1 0x2a PUSH1 0x00 MSTORE PUSH1 0x20 PUSH1 0x00 RETURN
	code := common.FromHex("602a60005260206000f3")
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	store.setAccount(testTarget, 0, 1, code)

	tx := newCallTx(testTarget, 100_000, 0)
	report, _ := execute(t, params.Cancun, store, tx)

	require.True(t, report.IsSuccess(), "err: %v", report.Err)
	require.Len(t, report.Output, 32)
	assert.Equal(t, uint64(42), new(uint256.Int).SetBytes(report.Output).Uint64())
	assert.Greater(t, report.GasUsed, params.TxGas)
}

func TestSstorePersistsOnSuccess(t *testing.T) {
	// PUSH1 0x01 PUSH1 0x00 SSTORE STOP
	code := common.FromHex("600160005500")
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	store.setAccount(testTarget, 0, 1, code)

	tx := newCallTx(testTarget, 100_000, 0)
	report, db := execute(t, params.Cancun, store, tx)

	require.True(t, report.IsSuccess(), "err: %v", report.Err)
	// 21000 intrinsic + 2*PUSH + cold slot + zero-to-nonzero set.
	expected := params.TxGas + 2*GasFastestStep + params.ColdSloadCost + params.SstoreSetGas
	assert.Equal(t, expected, report.GasUsed)

	slot, err := db.GetStorageSlot(testTarget, common.Hash{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), slot.CurrentValue.Uint64())
}

func TestRevertRollsBackStorage(t *testing.T) {
	// PUSH1 0x01 PUSH1 0x00 SSTORE PUSH1 0x00 PUSH1 0x00 REVERT
	code := common.FromHex("60016000556000" + "6000fd")
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	store.setAccount(testTarget, 0, 1, code)

	tx := newCallTx(testTarget, 100_000, 0)
	report, db := execute(t, params.Cancun, store, tx)

	assert.Equal(t, Revert, report.Result)
	assert.Greater(t, report.GasUsed, params.TxGas)
	assert.Less(t, report.GasUsed, tx.GasLimit)

	slot, err := db.GetStorageSlot(testTarget, common.Hash{})
	require.NoError(t, err)
	assert.True(t, slot.CurrentValue.IsZero(), "reverted write must not persist")
}

func TestRevertReturnsValue(t *testing.T) {
	// PUSH1 0x00 PUSH1 0x00 REVERT
	code := common.FromHex("60006000fd")
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	store.setAccount(testTarget, 0, 1, code)

	tx := newCallTx(testTarget, 100_000, 5000)
	report, db := execute(t, params.Cancun, store, tx)

	assert.Equal(t, Revert, report.Result)
	recipient, err := db.GetAccount(testTarget)
	require.NoError(t, err)
	assert.True(t, recipient.Info.Balance.IsZero(), "reverted value transfer must be returned")
	sender, err := db.GetAccount(testSender)
	require.NoError(t, err)
	assert.Equal(t, uint64(oneEther-report.GasUsed), sender.Info.Balance.Uint64())
}

func TestCreateDeploysCode(t *testing.T) {
	// Initcode: MSTORE8 the byte 0x60 at 0 and return 1 byte.
	// PUSH1 0x60 PUSH1 0x00 MSTORE8 PUSH1 0x01 PUSH1 0x00 RETURN
	initcode := common.FromHex("60606000536001" + "6000f3")
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)

	tx := &types.Transaction{Sender: testSender, GasLimit: 200_000, Data: initcode}
	report, db := execute(t, params.Cancun, store, tx)

	require.True(t, report.IsSuccess(), "err: %v", report.Err)
	contractAddr := crypto.CreateAddress(testSender, 0)
	deployed, err := db.GetAccount(contractAddr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60}, deployed.Code)
	assert.Equal(t, uint64(1), deployed.Info.Nonce)
}

func TestCreateCollisionConsumesAllGas(t *testing.T) {
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	contractAddr := crypto.CreateAddress(testSender, 0)
	store.setAccount(contractAddr, 0, 1, nil)

	tx := &types.Transaction{Sender: testSender, GasLimit: 100_000, Data: common.FromHex("00")}
	report, db := execute(t, params.Cancun, store, tx)

	assert.Equal(t, Revert, report.Result)
	assert.ErrorIs(t, report.Err, ErrAddressAlreadyOccupied)
	assert.Equal(t, tx.GasLimit, report.GasUsed)

	sender, err := db.GetAccount(testSender)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sender.Info.Nonce, "sender nonce bumps exactly once")

	occupant, err := db.GetAccount(contractAddr)
	require.NoError(t, err)
	assert.Empty(t, occupant.Code, "no code may be installed at the occupied address")
	assert.Equal(t, uint64(1), occupant.Info.Nonce)
}

func TestEmptyCreateRejectsEFPrefix(t *testing.T) {
	// Initcode returning a single 0xEF byte.
	// PUSH1 0xef PUSH1 0x00 MSTORE8 PUSH1 0x01 PUSH1 0x00 RETURN
	initcode := common.FromHex("60ef6000536001" + "6000f3")
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)

	tx := &types.Transaction{Sender: testSender, GasLimit: 200_000, Data: initcode}
	report, db := execute(t, params.Cancun, store, tx)

	assert.Equal(t, Failure, report.Result)
	assert.ErrorIs(t, report.Err, ErrInvalidCode)
	assert.Equal(t, tx.GasLimit, report.GasUsed)

	contractAddr := crypto.CreateAddress(testSender, 0)
	deployed, err := db.GetAccount(contractAddr)
	require.NoError(t, err)
	assert.Empty(t, deployed.Code)
}

func TestStatelessExecuteLeavesNoTrace(t *testing.T) {
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	db := state.NewGeneralizedDatabase(store)

	run := func() *ExecutionReport {
		tx := newCallTx(testTarget, 100_000, 1000)
		vm, err := NewVM(newTestEnv(params.Cancun, tx.GasLimit), db, tx)
		require.NoError(t, err)
		report, err := vm.StatelessExecute()
		require.NoError(t, err)
		return report
	}

	first := run()
	second := run()

	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, first.GasUsed, second.GasUsed)

	sender, err := db.GetAccount(testSender)
	require.NoError(t, err)
	assert.Equal(t, uint64(oneEther), sender.Info.Balance.Uint64())
	assert.Equal(t, uint64(0), sender.Info.Nonce)
}

func TestWarmCoinbaseByFork(t *testing.T) {
	tests := []struct {
		fork params.Fork
		warm bool
	}{
		{params.Paris, false},
		{params.Shanghai, true},
		{params.Cancun, true},
		{params.Prague, true},
	}
	for _, tt := range tests {
		t.Run(tt.fork.String(), func(t *testing.T) {
			store := newTestStore()
			store.setAccount(testSender, oneEther, 0, nil)
			db := state.NewGeneralizedDatabase(store)
			tx := newCallTx(testTarget, 100_000, 0)
			vm, err := NewVM(newTestEnv(tt.fork, tx.GasLimit), db, tx)
			require.NoError(t, err)
			assert.Equal(t, tt.warm, vm.Substate.IsAccountWarm(testCoinbase))
		})
	}
}

func TestAccessListPreWarming(t *testing.T) {
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	db := state.NewGeneralizedDatabase(store)

	listed := common.HexToAddress("0x4000000000000000000000000000000000000004")
	key := common.HexToHash("0x01")
	tx := newCallTx(testTarget, 100_000, 0)
	tx.AccessList = types.AccessList{{Address: listed, StorageKeys: []common.Hash{key}}}

	vm, err := NewVM(newTestEnv(params.Cancun, tx.GasLimit), db, tx)
	require.NoError(t, err)

	assert.True(t, vm.Substate.IsAccountWarm(testSender))
	assert.True(t, vm.Substate.IsAccountWarm(testTarget))
	assert.True(t, vm.Substate.IsAccountWarm(listed))
	assert.True(t, vm.Substate.IsSlotWarm(listed, key))
	assert.False(t, vm.Substate.IsSlotWarm(listed, common.HexToHash("0x02")))
}

func TestPrecompileWarmSetCeiling(t *testing.T) {
	tests := []struct {
		fork  params.Fork
		count uint64
	}{
		{params.Paris, 9},
		{params.Shanghai, 9},
		{params.Cancun, 10},
		{params.Prague, 17},
	}
	for _, tt := range tests {
		t.Run(tt.fork.String(), func(t *testing.T) {
			store := newTestStore()
			store.setAccount(testSender, oneEther, 0, nil)
			db := state.NewGeneralizedDatabase(store)
			tx := newCallTx(testTarget, 100_000, 0)
			vm, err := NewVM(newTestEnv(tt.fork, tx.GasLimit), db, tx)
			require.NoError(t, err)

			assert.True(t, vm.Substate.IsAccountWarm(common.Uint64ToAddress(tt.count)))
			assert.False(t, vm.Substate.IsAccountWarm(common.Uint64ToAddress(tt.count+1)))
		})
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(store *testStore, tx *types.Transaction)
		wantErr error
	}{
		{
			name: "nonce too low",
			mutate: func(store *testStore, tx *types.Transaction) {
				store.setAccount(testSender, oneEther, 5, nil)
				tx.Nonce = 4
			},
			wantErr: ErrNonceTooLow,
		},
		{
			name: "nonce too high",
			mutate: func(store *testStore, tx *types.Transaction) {
				store.setAccount(testSender, oneEther, 5, nil)
				tx.Nonce = 6
			},
			wantErr: ErrNonceTooHigh,
		},
		{
			name: "insufficient funds",
			mutate: func(store *testStore, tx *types.Transaction) {
				store.setAccount(testSender, 1000, 0, nil)
			},
			wantErr: ErrInsufficientFunds,
		},
		{
			name: "sender with code",
			mutate: func(store *testStore, tx *types.Transaction) {
				store.setAccount(testSender, oneEther, 0, []byte{0x00})
			},
			wantErr: ErrSenderNotEOA,
		},
		{
			name: "gas limit above block limit",
			mutate: func(store *testStore, tx *types.Transaction) {
				store.setAccount(testSender, oneEther, 0, nil)
				tx.GasLimit = 31_000_000
			},
			wantErr: ErrGasLimitTooHigh,
		},
		{
			name: "intrinsic gas too low",
			mutate: func(store *testStore, tx *types.Transaction) {
				store.setAccount(testSender, oneEther, 0, nil)
				tx.GasLimit = 20_999
			},
			wantErr: ErrIntrinsicGas,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			tx := newCallTx(testTarget, 100_000, 0)
			tt.mutate(store, tx)

			db := state.NewGeneralizedDatabase(store)
			env := newTestEnv(params.Cancun, tx.GasLimit)
			vm, err := NewVM(env, db, tx)
			require.NoError(t, err)
			_, err = vm.Execute()
			assert.ErrorIs(t, err, tt.wantErr)

			// A rejected transaction leaves no trace.
			sender, gerr := db.GetAccount(testSender)
			require.NoError(t, gerr)
			if tt.wantErr != ErrNonceTooLow && tt.wantErr != ErrNonceTooHigh {
				assert.Equal(t, uint64(0), sender.Info.Nonce)
			}
		})
	}
}

func TestDelegatedSenderIsEOA(t *testing.T) {
	designator := append(append([]byte{}, delegationPrefix...), testTarget.Bytes()...)
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, designator)

	tx := newCallTx(testTarget, 100_000, 0)
	report, _ := execute(t, params.Prague, store, tx)
	assert.True(t, report.IsSuccess(), "delegated EOA must be allowed to send")
}

func TestPrivilegedMintsToRecipient(t *testing.T) {
	store := newTestStore()

	recipient := testTarget
	tx := &types.Transaction{
		To:         &recipient,
		Sender:     testSender,
		Value:      *uint256.NewInt(7777),
		GasLimit:   100_000,
		Privileged: true,
		Recipient:  recipient,
	}
	report, db := execute(t, params.Cancun, store, tx)

	require.True(t, report.IsSuccess(), "err: %v", report.Err)
	minted, err := db.GetAccount(recipient)
	require.NoError(t, err)
	assert.Equal(t, uint64(7777), minted.Info.Balance.Uint64())

	// No gas was purchased: the sender had no funds and still succeeded.
	sender, err := db.GetAccount(testSender)
	require.NoError(t, err)
	assert.True(t, sender.Info.Balance.IsZero())
	assert.Equal(t, uint64(1), sender.Info.Nonce)
}

func TestNestedCallRevertIsContained(t *testing.T) {
	// Inner contract stores then reverts; outer calls it, then stores
	// itself and stops. The inner write must vanish, the outer one stick.
	inner := common.HexToAddress("0x5000000000000000000000000000000000000005")
	// PUSH1 0x01 PUSH1 0x00 SSTORE PUSH1 0x00 PUSH1 0x00 REVERT
	innerCode := common.FromHex("60016000556000" + "6000fd")
	// CALL inner with no value: PUSH1 0 (retSize) PUSH1 0 (retOffset)
	// PUSH1 0 (argsSize) PUSH1 0 (argsOffset) PUSH1 0 (value)
	// PUSH20 inner GAS CALL, then PUSH1 0x02 PUSH1 0x00 SSTORE STOP
	outerCode := append(common.FromHex("600060006000600060007350000000000000000000000000000000000000055af1"),
		common.FromHex("600260005500")...)

	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	store.setAccount(testTarget, 0, 1, outerCode)
	store.setAccount(inner, 0, 1, innerCode)

	tx := newCallTx(testTarget, 500_000, 0)
	report, db := execute(t, params.Cancun, store, tx)

	require.True(t, report.IsSuccess(), "err: %v", report.Err)

	innerSlot, err := db.GetStorageSlot(inner, common.Hash{})
	require.NoError(t, err)
	assert.True(t, innerSlot.CurrentValue.IsZero(), "inner revert must roll back")

	outerSlot, err := db.GetStorageSlot(testTarget, common.Hash{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), outerSlot.CurrentValue.Uint64())
}

func TestCallDepthLimitPushesZero(t *testing.T) {
	// A contract that calls itself forever. At depth 1024 the CALL pushes
	// zero instead of failing, so execution unwinds successfully.
	// PUSH1 0 PUSH1 0 PUSH1 0 PUSH1 0 PUSH1 0 ADDRESS GAS CALL STOP
	code := common.FromHex("6000600060006000600030" + "5af100")
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	store.setAccount(testTarget, 0, 1, code)

	tx := newCallTx(testTarget, 10_000_000, 0)
	env := newTestEnv(params.Cancun, tx.GasLimit)
	db := state.NewGeneralizedDatabase(store)
	vm, err := NewVM(env, db, tx)
	require.NoError(t, err)
	report, err := vm.Execute()
	require.NoError(t, err)
	assert.True(t, report.IsSuccess(), "depth exhaustion is not an error: %v", report.Err)
}

func TestLogsAreDroppedOnRevert(t *testing.T) {
	// LOG0 over empty data, then REVERT.
	// PUSH1 0 PUSH1 0 LOG0 PUSH1 0 PUSH1 0 REVERT
	code := common.FromHex("60006000a0" + "60006000fd")
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	store.setAccount(testTarget, 0, 1, code)

	tx := newCallTx(testTarget, 100_000, 0)
	report, _ := execute(t, params.Cancun, store, tx)

	assert.Equal(t, Revert, report.Result)
	assert.Empty(t, report.Logs)
}

func TestLogEmission(t *testing.T) {
	// PUSH1 0x20 PUSH1 0x00 LOG0 STOP with 32 bytes of zero data.
	code := common.FromHex("60206000a000")
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	store.setAccount(testTarget, 0, 1, code)

	tx := newCallTx(testTarget, 100_000, 0)
	report, _ := execute(t, params.Cancun, store, tx)

	require.True(t, report.IsSuccess(), "err: %v", report.Err)
	require.Len(t, report.Logs, 1)
	assert.Equal(t, testTarget, report.Logs[0].Address)
	assert.Empty(t, report.Logs[0].Topics)
	assert.Len(t, report.Logs[0].Data, 32)
}

func TestTransientStorageClearedBetweenTransactions(t *testing.T) {
	// TSTORE 1 at key 0, then return TLOAD of key 0.
	// PUSH1 1 PUSH1 0 TSTORE PUSH1 0 TLOAD PUSH1 0 MSTORE PUSH1 32 PUSH1 0 RETURN
	code := common.FromHex("600160005d" + "60005c60005260206000f3")
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	store.setAccount(testTarget, 0, 1, code)

	tx := newCallTx(testTarget, 100_000, 0)
	report, _ := execute(t, params.Cancun, store, tx)
	require.True(t, report.IsSuccess(), "err: %v", report.Err)
	assert.Equal(t, uint64(1), new(uint256.Int).SetBytes(report.Output).Uint64())

	// A fresh transaction starts with empty transient storage.
	readOnly := common.FromHex("60005c60005260206000f3")
	store2 := newTestStore()
	store2.setAccount(testSender, oneEther, 0, nil)
	store2.setAccount(testTarget, 0, 1, readOnly)
	tx2 := newCallTx(testTarget, 100_000, 0)
	report2, _ := execute(t, params.Cancun, store2, tx2)
	require.True(t, report2.IsSuccess(), "err: %v", report2.Err)
	assert.True(t, new(uint256.Int).SetBytes(report2.Output).IsZero())
}

func TestStaticCallBlocksWrites(t *testing.T) {
	inner := common.HexToAddress("0x5000000000000000000000000000000000000005")
	// Inner: SSTORE.
	innerCode := common.FromHex("600160005500")
	// Outer: STATICCALL inner, store the success flag at slot 0, STOP.
	// PUSH1 0 PUSH1 0 PUSH1 0 PUSH1 0 PUSH20 inner GAS STATICCALL
	// PUSH1 0 SSTORE STOP
	outer := append(common.FromHex("60006000600060007350000000000000000000000000000000000000055afa"),
		common.FromHex("60005500")...)

	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	store.setAccount(testTarget, 0, 1, outer)
	store.setAccount(inner, 0, 1, innerCode)

	tx := newCallTx(testTarget, 500_000, 0)
	report, db := execute(t, params.Cancun, store, tx)

	require.True(t, report.IsSuccess(), "err: %v", report.Err)
	flag, err := db.GetStorageSlot(testTarget, common.Hash{})
	require.NoError(t, err)
	assert.True(t, flag.CurrentValue.IsZero(), "static inner call must have failed")

	innerSlot, err := db.GetStorageSlot(inner, common.Hash{})
	require.NoError(t, err)
	assert.True(t, innerSlot.CurrentValue.IsZero())
}

func TestSstoreClearRefund(t *testing.T) {
	// Slot 0 starts at 1; the contract clears it: refund applies, capped
	// at a fifth of gas used post-London.
	code := common.FromHex("600060005500")
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)
	store.setAccount(testTarget, 0, 1, code)
	store.storage[testTarget] = map[common.Hash]uint256.Int{{}: *uint256.NewInt(1)}

	tx := newCallTx(testTarget, 100_000, 0)
	report, _ := execute(t, params.Cancun, store, tx)

	require.True(t, report.IsSuccess(), "err: %v", report.Err)
	// Used before refund: 21000 + 2*3 + 2100 + (5000-2100).
	used := params.TxGas + 2*GasFastestStep + params.ColdSloadCost + params.SstoreResetGas - params.ColdSloadCost
	refund := used / params.RefundQuotientEIP3529
	if refund > params.SstoreClearsScheduleRefund {
		refund = params.SstoreClearsScheduleRefund
	}
	assert.Equal(t, refund, report.GasRefunded)
	assert.Equal(t, used-refund, report.GasUsed)
}

func TestFinalizeReturnsLeftoverAndPaysTip(t *testing.T) {
	// The leftover-gas return and the coinbase payment happen after the
	// interpreter loop has drained the frame stack; both must still land.
	store := newTestStore()
	store.setAccount(testSender, oneEther, 0, nil)

	tx := newCallTx(testTarget, 100_000, 1000)
	db := state.NewGeneralizedDatabase(store)
	env := newTestEnv(params.Cancun, tx.GasLimit)
	env.GasPrice = *uint256.NewInt(2)
	vm, err := NewVM(env, db, tx)
	require.NoError(t, err)
	report, err := vm.Execute()
	require.NoError(t, err)

	require.True(t, report.IsSuccess(), "err: %v", report.Err)
	assert.Equal(t, params.TxGas, report.GasUsed)

	// 200_000 purchased up front, 158_000 returned.
	sender, err := db.GetAccount(testSender)
	require.NoError(t, err)
	assert.Equal(t, uint64(oneEther-1000-2*params.TxGas), sender.Info.Balance.Uint64())

	// Tip is one wei per gas over the base fee.
	coinbase, err := db.GetAccount(testCoinbase)
	require.NoError(t, err)
	assert.Equal(t, params.TxGas, coinbase.Info.Balance.Uint64())
}

func TestPrivilegedCreateSkipsSenderFunding(t *testing.T) {
	// PUSH1 0x60 PUSH1 0x00 MSTORE8 PUSH1 0x01 PUSH1 0x00 RETURN
	initcode := common.FromHex("60606000536001" + "6000f3")
	store := newTestStore()

	recipient := common.HexToAddress("0x6000000000000000000000000000000000000006")
	tx := &types.Transaction{
		Sender:     testSender,
		GasLimit:   200_000,
		Data:       initcode,
		Value:      *uint256.NewInt(500),
		Privileged: true,
		Recipient:  recipient,
	}
	report, db := execute(t, params.Cancun, store, tx)

	require.True(t, report.IsSuccess(), "err: %v", report.Err)

	contractAddr := crypto.CreateAddress(testSender, 0)
	deployed, err := db.GetAccount(contractAddr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60}, deployed.Code)

	// The value was minted to the recipient, never moved from the sender.
	minted, err := db.GetAccount(recipient)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), minted.Info.Balance.Uint64())
	sender, err := db.GetAccount(testSender)
	require.NoError(t, err)
	assert.True(t, sender.Info.Balance.IsZero())
}

func TestJumpTableLondonFloor(t *testing.T) {
	london := jumpTableForFork(params.London)
	require.NotNil(t, london)
	assert.Same(t, london, jumpTableForFork(params.Frontier))
	assert.Same(t, london, jumpTableForFork(params.Berlin))
	assert.NotNil(t, jumpTableForFork(params.Cancun))
}
