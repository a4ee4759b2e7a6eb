package encoder

import (
	"fmt"

	"github.com/example/aqavm/isa"
	"github.com/example/aqavm/parser"
)

// encodeInstruction turns one NodeInstruction into its encoded bytes,
// mirroring exactly what vm/control.go and vm/extended.go decode back
// out (the encoder reads opcodes from isa.Mnemonics; the vm decodes with
// the same isa class and sub-opcode constants).
func encodeInstruction(node parser.Node, symbols *parser.SymbolTable) ([]byte, error) {
	m, ok := isa.Lookup(node.Mnemonic)
	if !ok {
		return nil, fmt.Errorf("%s: unknown mnemonic %q", node.Range, node.Mnemonic)
	}

	// ldi folds its destination register into the opcode (ExtLdi0-3)
	// rather than spending a trailing byte on it, the one mnemonic where
	// the register operand isn't encoded the way Arity normally implies.
	if node.Mnemonic == "ldi" {
		opcode, err := ldiOpcodeForRegister(node.Operands[0].Register, node.Range)
		if err != nil {
			return nil, err
		}
		imm, err := resolveOperandByte(node.Operands[1], symbols, node.Range)
		if err != nil {
			return nil, err
		}
		return []byte{opcode, imm}, nil
	}

	if m.IsAlu || node.Mnemonic == "st" || node.Mnemonic == "ld" {
		opcode := m.Opcode
		switch len(node.Operands) {
		case 2:
			opcode |= node.Operands[0].Register<<2 | node.Operands[1].Register
		case 1:
			opcode |= node.Operands[0].Register
		}
		return []byte{opcode}, nil
	}

	// General case: the opcode byte is fixed (class|subop already fully
	// determines the operation), and every operand becomes a trailing
	// byte in parse order — this covers push/pop/ldsa/addsp/setsp,
	// jsr/ioi/osix/rand, and all branches.
	buf := make([]byte, 1, 1+len(node.Operands))
	buf[0] = m.Opcode
	for _, op := range node.Operands {
		b, err := resolveOperandByte(op, symbols, node.Range)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b)
	}
	return buf, nil
}

func ldiOpcodeForRegister(reg byte, r parser.Range) (byte, error) {
	switch reg {
	case isa.R0:
		return isa.ExtendedClass | isa.ExtLdi0, nil
	case isa.R1:
		return isa.ExtendedClass | isa.ExtLdi1, nil
	case isa.R2:
		return isa.ExtendedClass | isa.ExtLdi2, nil
	case isa.R3:
		return isa.ExtendedClass | isa.ExtLdi3, nil
	default:
		return 0, parser.NewErrorRange(r, parser.ErrorWrongOperandCount,
			fmt.Sprintf("ldi requires r0-r3, got register %d", reg))
	}
}
