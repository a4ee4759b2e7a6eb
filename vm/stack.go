package vm

import (
	"fmt"

	"github.com/example/aqavm/isa"
)

// push decrements SP (wrapping) and stores value at the new top of
// stack, a full-descending stack per spec.md §4.7: SP starts at 0, so
// the first push wraps it to 0xFF, the top of the flat 256-byte memory.
func (vm *VM) push(value byte) error {
	sp, err := vm.Reg(isa.SP)
	if err != nil {
		return err
	}
	sp--
	if err := vm.Memory.Set(int(sp), value); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return vm.SetReg(isa.SP, sp)
}

// pop loads the current top of stack and increments SP (wrapping).
func (vm *VM) pop() (byte, error) {
	sp, err := vm.Reg(isa.SP)
	if err != nil {
		return 0, err
	}
	value, err := vm.Memory.Get(int(sp))
	if err != nil {
		return 0, fmt.Errorf("pop: %w", err)
	}
	if err := vm.SetReg(isa.SP, sp+1); err != nil {
		return 0, err
	}
	return value, nil
}

// executeStack handles the StackClass family. None of these sub-opcodes
// leave room in the instruction byte for a register field (the low
// nibble is fully spent selecting the operation), so push/pop/setsp/
// ldsa encode their register operand(s) as trailing bytes, the same
// fix applied to RAND in the ExtendedClass family.
func (vm *VM) executeStack(c *cycle, instruction byte) error {
	switch isa.Subop(instruction) {
	case isa.StackPush:
		reg, err := c.readByte()
		if err != nil {
			return err
		}
		value, err := vm.Reg(reg)
		if err != nil {
			return err
		}
		return vm.push(value)

	case isa.StackPop:
		reg, err := c.readByte()
		if err != nil {
			return err
		}
		value, err := vm.pop()
		if err != nil {
			return err
		}
		return vm.SetReg(reg, value)

	case isa.StackLdsa:
		reg, err := c.readByte()
		if err != nil {
			return err
		}
		offset, err := c.readByte()
		if err != nil {
			return err
		}
		sp, err := vm.Reg(isa.SP)
		if err != nil {
			return err
		}
		return vm.SetReg(reg, sp+offset)

	case isa.StackAddsp:
		offset, err := c.readByte()
		if err != nil {
			return err
		}
		sp, err := vm.Reg(isa.SP)
		if err != nil {
			return err
		}
		return vm.SetReg(isa.SP, sp+offset)

	case isa.StackSetsp:
		reg, err := c.readByte()
		if err != nil {
			return err
		}
		value, err := vm.Reg(reg)
		if err != nil {
			return err
		}
		return vm.SetReg(isa.SP, value)

	case isa.StackPushAll:
		for _, reg := range []byte{isa.R0, isa.R1, isa.R2, isa.R3} {
			value, err := vm.Reg(reg)
			if err != nil {
				return err
			}
			if err := vm.push(value); err != nil {
				return err
			}
		}
		return nil

	case isa.StackPopAll:
		for _, reg := range []byte{isa.R3, isa.R2, isa.R1, isa.R0} {
			value, err := vm.pop()
			if err != nil {
				return err
			}
			if err := vm.SetReg(reg, value); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown stack sub-opcode %#x", isa.Subop(instruction))
	}
}
