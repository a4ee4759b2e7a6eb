package vm

import (
	"fmt"

	"github.com/example/aqavm/isa"
)

// vectorPC and vectorPS return the addresses of the PC/PS halves of an
// interrupt vector table entry (spec.md: "vector v's PC/PS pair lives
// at InterruptVectorBase+2*v and +2*v+1").
func vectorPC(vector byte) int { return isa.InterruptVectorBase + 2*int(vector) }
func vectorPS(vector byte) int { return vectorPC(vector) + 1 }

func (vm *VM) readVector(vector byte) (pc, ps byte, err error) {
	pc, err = vm.Memory.Get(vectorPC(vector))
	if err != nil {
		return 0, 0, fmt.Errorf("interrupt vector %d: %w", vector, err)
	}
	ps, err = vm.Memory.Get(vectorPS(vector))
	if err != nil {
		return 0, 0, fmt.Errorf("interrupt vector %d: %w", vector, err)
	}
	return pc, ps, nil
}

// enterInterrupt pushes the caller's return address and STATUS (in
// that order, so RTI's pop-STATUS-then-pop-PC unwinds them correctly),
// installs the vector table's STATUS, and returns the new PC. Used by
// both IOI (software interrupt, mid-cycle) and Interrupt (hardware
// interrupt delivered while Waiting).
func (vm *VM) enterInterrupt(vector, returnAddr byte) (byte, error) {
	pc, ps, err := vm.readVector(vector)
	if err != nil {
		return 0, err
	}
	oldStatus := vm.Status()
	if err := vm.push(returnAddr); err != nil {
		return 0, err
	}
	if err := vm.push(oldStatus); err != nil {
		return 0, err
	}
	if err := vm.SetReg(isa.Status, ps); err != nil {
		return 0, err
	}
	return pc, nil
}

// executeIoi is a software interrupt: always taken, vector given as an
// immediate byte.
func (vm *VM) executeIoi(c *cycle) error {
	vector, err := c.readByte()
	if err != nil {
		return err
	}
	newPC, err := vm.enterInterrupt(vector, c.cur+1)
	if err != nil {
		return err
	}
	c.cur = newPC - 1
	return nil
}

// executeRti reverses enterInterrupt: pop STATUS, then pop PC.
func (vm *VM) executeRti(c *cycle) error {
	status, err := vm.pop()
	if err != nil {
		return err
	}
	pc, err := vm.pop()
	if err != nil {
		return err
	}
	if err := vm.SetReg(isa.Status, status); err != nil {
		return err
	}
	c.cur = pc - 1
	return nil
}

// executeOsix installs a caller-supplied STATUS and transfers to a
// vector's PC (its PS half is ignored, since OSIX's own immediate
// supplies STATUS directly), but only when interrupts are currently
// enabled; otherwise it's a two-byte no-op, matching a syscall gate
// that silently declines when the caller has IRQs masked.
func (vm *VM) executeOsix(c *cycle) error {
	newStatus, err := c.readByte()
	if err != nil {
		return err
	}
	vector, err := c.readByte()
	if err != nil {
		return err
	}

	oldStatus := vm.Status()
	if oldStatus&isa.StatusIRQEnable == 0 {
		return nil
	}

	if err := vm.push(c.cur + 1); err != nil {
		return err
	}
	if err := vm.push(oldStatus); err != nil {
		return err
	}
	if err := vm.SetReg(isa.Status, newStatus); err != nil {
		return err
	}

	pc, _, err := vm.readVector(vector)
	if err != nil {
		return err
	}
	c.cur = pc - 1
	return nil
}
