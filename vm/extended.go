package vm

import (
	"fmt"

	"github.com/example/aqavm/alu"
	"github.com/example/aqavm/isa"
)

var ldiRegisters = map[byte]byte{
	isa.ExtLdi0: isa.R0,
	isa.ExtLdi1: isa.R1,
	isa.ExtLdi2: isa.R2,
	isa.ExtLdi3: isa.R3,
}

// executeExtended handles the ExtendedClass family: immediate loads,
// HALT/WAIT, subroutine call/return, the CRC coroutine swap, the
// software/hardware interrupt trio, and RAND.
func (vm *VM) executeExtended(c *cycle, instruction byte) error {
	sub := isa.Subop(instruction)

	if reg, ok := ldiRegisters[sub]; ok {
		imm, err := c.readByte()
		if err != nil {
			return err
		}
		if err := vm.SetReg(reg, imm); err != nil {
			return err
		}
		// LDI counts as a pure move for flag purposes (SPEC_FULL.md Open
		// Question #3): N/Z reflect the loaded value, C/V clear.
		return vm.setFlags(alu.Flags{N: imm&0x80 != 0, Z: imm == 0})
	}

	switch sub {
	case isa.ExtHalt:
		vm.State = StateHalted
		return nil

	case isa.ExtWait:
		vm.State = StateWaiting
		return nil

	case isa.ExtJsr:
		target, err := c.readByte()
		if err != nil {
			return err
		}
		if err := vm.push(c.cur + 1); err != nil {
			return err
		}
		c.cur = target - 1
		return nil

	case isa.ExtRts:
		addr, err := vm.pop()
		if err != nil {
			return err
		}
		c.cur = addr - 1
		return nil

	case isa.ExtCrc:
		sp, err := vm.Reg(isa.SP)
		if err != nil {
			return err
		}
		top, err := vm.Memory.Get(int(sp))
		if err != nil {
			return fmt.Errorf("crc: %w", err)
		}
		if err := vm.Memory.Set(int(sp), c.cur+1); err != nil {
			return fmt.Errorf("crc: %w", err)
		}
		c.cur = top - 1
		return nil

	case isa.ExtIoi:
		return vm.executeIoi(c)

	case isa.ExtRti:
		return vm.executeRti(c)

	case isa.ExtOsix:
		return vm.executeOsix(c)

	case isa.ExtRand:
		reg, err := c.readByte()
		if err != nil {
			return err
		}
		return vm.SetReg(reg, vm.rng.Uint8())

	default:
		return fmt.Errorf("unknown extended sub-opcode %#x", sub)
	}
}
