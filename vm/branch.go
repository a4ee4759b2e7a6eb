package vm

import (
	"fmt"

	"github.com/example/aqavm/alu"
	"github.com/example/aqavm/isa"
)

// evaluateCondition implements the 16-entry ARM-style predicate table
// pulled into the byte-ISA per SPEC_FULL.md's supplemented features,
// grounded on the teacher's flags.go EvaluateCondition switch.
func evaluateCondition(sub byte, f alu.Flags) bool {
	switch sub {
	case isa.BranchEQ:
		return f.Z
	case isa.BranchNE:
		return !f.Z
	case isa.BranchHS:
		return f.C
	case isa.BranchLO:
		return !f.C
	case isa.BranchMI:
		return f.N
	case isa.BranchPL:
		return !f.N
	case isa.BranchVS:
		return f.V
	case isa.BranchVC:
		return !f.V
	case isa.BranchHI:
		return f.C && !f.Z
	case isa.BranchLS:
		return !f.C || f.Z
	case isa.BranchGE:
		return f.N == f.V || f.Z
	case isa.BranchLT:
		return f.N != f.V && !f.Z
	case isa.BranchGT:
		return !f.Z && f.N == f.V
	case isa.BranchLE:
		return f.Z || f.N != f.V
	case isa.BranchAL:
		return true
	case isa.BranchNV:
		return false
	default:
		return false
	}
}

// executeBranch reads the one-byte target that follows every branch
// opcode and, if the predicate holds, redirects the cursor so the
// cycle's unconditional end-of-step +1 lands exactly on target.
func (vm *VM) executeBranch(c *cycle, instruction byte) error {
	target, err := c.readByte()
	if err != nil {
		return fmt.Errorf("branch target: %w", err)
	}

	sub := isa.Subop(instruction)
	flags := alu.FlagsFromByte(vm.Status())
	if evaluateCondition(sub, flags) {
		c.cur = target - 1
	}
	return nil
}
