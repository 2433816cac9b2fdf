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
	"errors"

	"github.com/holiman/uint256"

	"github.com/lambdaclass/levm-go/params"
)

// opResult is the per-instruction outcome: advance the program counter by
// pcDelta within the same frame, or halt the frame. Errors travel on the
// error return.
type opResult struct {
	pcDelta uint64
	halt    bool
}

func next(n uint64) (opResult, error) { return opResult{pcDelta: n}, nil }

var resHalt = opResult{halt: true}

// runExecution drives the fetch-decode-execute state machine over the
// frame stack until the root frame concludes. Frames are strict LIFO;
// a concluded child folds into its parent through handleReturn and the
// loop resumes one level up.
func (vm *VM) runExecution() (*ExecutionReport, error) {
	for {
		frame, err := vm.currentFrame()
		if err != nil {
			return nil, err
		}

		// Precompile frames bypass the general loop entirely.
		if frame.isPrecompile {
			report, last, err := vm.handlePrecompileFrame()
			if err != nil {
				return nil, err
			}
			if last {
				return report, nil
			}
			continue
		}

		res, opErr := vm.step(frame)
		if opErr == nil && !res.halt {
			// The executed op may have pushed a frame; the delta applies
			// to whichever frame is now current (zero on a frame switch).
			current, err := vm.currentFrame()
			if err != nil {
				return nil, err
			}
			current.PC += res.pcDelta
			continue
		}
		if opErr != nil && IsInternal(opErr) {
			return nil, opErr
		}

		var report *ExecutionReport
		if opErr == nil {
			report, err = vm.concludeFrame()
		} else {
			report, err = vm.concludeFrameWithError(opErr)
		}
		if err != nil {
			return nil, err
		}

		frame, err = vm.popFrame()
		if err != nil {
			return nil, err
		}
		last, err := vm.handleReturn(frame, report)
		frame.release()
		if err != nil {
			return nil, err
		}
		if last {
			return report, nil
		}
	}
}

// step decodes and dispatches a single instruction of the given frame.
func (vm *VM) step(frame *CallFrame) (opResult, error) {
	op := frame.NextOpcode()
	operation := vm.table[op]
	if operation == nil {
		return opResult{}, &ErrInvalidOpcode{opcode: op}
	}
	if sLen := frame.Stack.len(); sLen < operation.minStack {
		return opResult{}, ErrStackUnderflow
	} else if sLen > operation.maxStack {
		return opResult{}, ErrStackOverflow
	}
	if frame.IsStatic && operation.writes {
		return opResult{}, ErrWriteProtection
	}
	if !frame.UseGas(operation.constantGas) {
		return opResult{}, ErrOutOfGas
	}
	return operation.execute(vm, frame)
}

// concludeFrame finalizes a successfully halted frame into a report. For
// create frames this is where the returned initcode output becomes the
// deployed code, billed and validated; a deposit failure turns the halt
// into an exceptional one.
func (vm *VM) concludeFrame() (*ExecutionReport, error) {
	frame, err := vm.currentFrame()
	if err != nil {
		return nil, err
	}
	if frame.IsCreate {
		if err := vm.depositCreatedCode(frame); err != nil {
			if IsInternal(err) {
				return nil, err
			}
			return vm.concludeFrameWithError(err)
		}
	}
	if _, err := vm.popBackup(); err != nil {
		return nil, err
	}
	return &ExecutionReport{
		Result:  Success,
		GasUsed: frame.GasUsed(),
		Logs:    frame.Logs,
		Output:  frame.Output,
	}, nil
}

// concludeFrameWithError finalizes a failing frame: its backup and cache
// rollback are applied, gas is billed per the failure class, and the
// report records revert versus unrecoverable fault.
func (vm *VM) concludeFrameWithError(opErr error) (*ExecutionReport, error) {
	frame, err := vm.currentFrame()
	if err != nil {
		return nil, err
	}
	backup, err := vm.popBackup()
	if err != nil {
		return nil, err
	}
	vm.restoreState(backup, frame.Backup)

	report := &ExecutionReport{Err: opErr}
	if errors.Is(opErr, ErrExecutionReverted) {
		// REVERT keeps its unused gas and carries revert data upward.
		report.Result = Revert
		report.Output = frame.Output
	} else {
		report.Result = Failure
		frame.ConsumeAllGas()
	}
	report.GasUsed = frame.GasUsed()
	return report, nil
}

// handleReturn folds a concluded frame's report into its parent: leftover
// gas flows back, return data lands at the recorded memory window, and on
// success the child's first-touch backup and logs are adopted. It reports
// whether the concluded frame was the last one.
func (vm *VM) handleReturn(frame *CallFrame, report *ExecutionReport) (last bool, err error) {
	if len(vm.CallFrames) == 0 {
		return true, nil
	}
	if len(vm.RetData) == 0 {
		return false, internalError("child frame concluded without pending return data")
	}
	ret := vm.RetData[len(vm.RetData)-1]
	vm.RetData = vm.RetData[:len(vm.RetData)-1]

	parent, err := vm.currentFrame()
	if err != nil {
		return false, err
	}
	parent.Gas += frame.Gas

	if report.IsSuccess() {
		mergeBackupToParent(parent, frame)
		parent.Logs = append(parent.Logs, frame.Logs...)
	}

	if ret.IsCreate {
		if report.IsSuccess() {
			parent.Stack.push(new(uint256.Int).SetBytes(frame.To.Bytes()))
			parent.ReturnData = nil
		} else {
			parent.Stack.push(new(uint256.Int))
			if report.Result == Revert {
				parent.ReturnData = report.Output
			} else {
				parent.ReturnData = nil
			}
		}
	} else {
		if report.IsSuccess() {
			parent.Stack.push(uint256.NewInt(1))
		} else {
			parent.Stack.push(new(uint256.Int))
		}
		parent.ReturnData = report.Output
		// Success and revert both surface their output at the caller's
		// window, truncated to the requested size.
		if size := min64(ret.RetSize, uint64(len(report.Output))); size > 0 {
			parent.Memory.Set(ret.RetOffset, size, report.Output)
		}
	}

	// Resume the caller past its call instruction.
	parent.PC++
	return false, nil
}

// handlePrecompileFrame pops the current (precompile) frame, invokes the
// routine and routes the result through the common return path.
func (vm *VM) handlePrecompileFrame() (report *ExecutionReport, last bool, err error) {
	frame, err := vm.popFrame()
	if err != nil {
		return nil, false, err
	}
	defer frame.release()

	backup, err := vm.popBackup()
	if err != nil {
		return nil, false, err
	}

	output, pErr := vm.runPrecompile(frame)
	if pErr != nil {
		if IsInternal(pErr) {
			return nil, false, pErr
		}
		vm.restoreState(backup, frame.Backup)
		frame.ConsumeAllGas()
		report = &ExecutionReport{Result: Failure, Err: pErr, GasUsed: frame.GasUsed()}
	} else {
		frame.Output = output
		report = &ExecutionReport{Result: Success, GasUsed: frame.GasUsed(), Output: output}
	}

	last, err = vm.handleReturn(frame, report)
	if err != nil {
		return nil, false, err
	}
	return report, last, nil
}

// depositCreatedCode turns a create frame's output into deployed code:
// EIP-3541 prefix check, EIP-170 size cap, per-byte billing, then the
// code write, recorded in the frame's own backup.
func (vm *VM) depositCreatedCode(frame *CallFrame) error {
	code := frame.Output
	// EIP-3541: no new code may start with the 0xEF marker byte.
	if vm.Env.Config.Fork >= params.London && len(code) > 0 && code[0] == 0xEF {
		return ErrInvalidCode
	}
	if uint64(len(code)) > params.MaxCodeSize {
		return ErrMaxCodeSizeExceeded
	}
	if !frame.UseGas(params.CreateDataGas * uint64(len(code))) {
		return ErrOutOfGas
	}
	if err := vm.setCode(frame.To, code); err != nil {
		return err
	}
	frame.Output = nil
	return nil
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
