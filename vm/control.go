package vm

import (
	"fmt"

	"github.com/example/aqavm/alu"
	"github.com/example/aqavm/isa"
)

// cycle carries the in-flight program counter across one Step call. The
// VM advances PC exactly once per Step, at the very end (Open Question
// #1 in SPEC_FULL.md): every byte consumed mid-dispatch moves cur
// forward, and any instruction that wants to land somewhere other than
// "the byte after what it consumed" sets cur to target-1, since the
// unconditional final cur+1 puts PC on target.
type cycle struct {
	vm  *VM
	cur byte
}

func (c *cycle) readByte() (byte, error) {
	c.cur++
	b, err := c.vm.Memory.Get(int(c.cur))
	if err != nil {
		return 0, fmt.Errorf("fetch operand at PC=%d: %w", c.cur, err)
	}
	return b, nil
}

// Step executes one fetch-decode-execute cycle (spec.md §4.7).
func (vm *VM) Step() error {
	if vm.State == StateError {
		return fmt.Errorf("vm is in error state: %w", vm.LastErr)
	}

	pc := vm.PC()
	instruction, err := vm.Memory.Get(int(pc))
	if err != nil {
		vm.fail(fmt.Errorf("fetch at PC=%d: %w", pc, err))
		return vm.LastErr
	}

	c := &cycle{vm: vm, cur: pc}

	if err := vm.dispatch(c, instruction); err != nil {
		vm.fail(err)
		return err
	}

	vm.Cycles++
	return vm.Registers.Set(isa.Counter, c.cur+1)
}

func (vm *VM) fail(err error) {
	vm.State = StateError
	vm.LastErr = err
}

func (vm *VM) dispatch(c *cycle, instruction byte) error {
	class := isa.Class(instruction)

	if class < isa.ALUClassLimit {
		return vm.executeALU(instruction)
	}

	switch class {
	case isa.LoadClass:
		return vm.executeLoad(instruction)
	case isa.StoreClass:
		return vm.executeStore(instruction)
	case isa.StackClass:
		return vm.executeStack(c, instruction)
	case isa.ExtendedClass:
		return vm.executeExtended(c, instruction)
	case isa.BranchClass:
		return vm.executeBranch(c, instruction)
	default:
		return fmt.Errorf("unknown opcode %#02x", instruction)
	}
}

// executeALU delegates to the alu package and writes the result/flags
// back, except for CMP which discards the result (spec.md §4.6).
func (vm *VM) executeALU(instruction byte) error {
	op1, op2 := isa.Op1(instruction), isa.Op2(instruction)

	left, err := vm.Reg(op1)
	if err != nil {
		return err
	}
	right, err := vm.Reg(op2)
	if err != nil {
		return err
	}

	carryIn := alu.FlagsFromByte(vm.Status()).C
	result, flags := alu.Execute(instruction, left, right, carryIn)

	if isa.Class(instruction) != isa.CmpClass {
		if err := vm.SetReg(op2, result); err != nil {
			return err
		}
	}
	return vm.setFlags(flags)
}

// setFlags writes N/Z/C/V into STATUS, preserving the interrupt-enable
// bit (bit 7), per spec.md §3's STATUS bit layout.
func (vm *VM) setFlags(flags alu.Flags) error {
	status := vm.Status()
	newStatus := (status & isa.StatusIRQEnable) | flags.Byte()
	return vm.SetReg(isa.Status, newStatus)
}

func (vm *VM) executeLoad(instruction byte) error {
	addrReg, dest := isa.Op1(instruction), isa.Op2(instruction)
	addr, err := vm.Reg(addrReg)
	if err != nil {
		return err
	}
	value, err := vm.Memory.Get(int(addr))
	if err != nil {
		return fmt.Errorf("load from %#02x: %w", addr, err)
	}
	return vm.SetReg(dest, value)
}

func (vm *VM) executeStore(instruction byte) error {
	addrReg, src := isa.Op1(instruction), isa.Op2(instruction)
	addr, err := vm.Reg(addrReg)
	if err != nil {
		return err
	}
	value, err := vm.Reg(src)
	if err != nil {
		return err
	}
	if err := vm.Memory.Set(int(addr), value); err != nil {
		return fmt.Errorf("store to %#02x: %w", addr, err)
	}
	return nil
}
