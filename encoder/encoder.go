// Package encoder is the AST-to-bytes emitter (C4): it walks a parsed
// parser.Program in source order and writes one instruction word per
// Node into a flat byte-ISA memory image, resolving label operands
// against the program's symbol table.
package encoder

import (
	"fmt"

	"github.com/example/aqavm/isa"
	"github.com/example/aqavm/parser"
)

// Encode assembles program into a flat isa.MemorySize-byte image ready
// to hand to vm.LoadProgram. Absolute sections land at their declared
// origin; relocatable sections are placed back-to-back immediately
// after the highest absolute extent, in first-rsect order (this
// toolchain has no multi-file linker, so there is no other section
// to place them against).
func Encode(program *parser.Program) ([]byte, error) {
	image := make([]byte, isa.MemorySize)

	bases := make(map[*parser.Section]byte)
	cursor := byte(0)
	for _, section := range program.Sections {
		if section.Kind == parser.SectionAbsolute {
			bases[section] = section.Origin
			if end := section.Offset; end > cursor {
				cursor = end
			}
		}
	}
	for _, section := range program.Sections {
		if section.Kind == parser.SectionRelocatable {
			bases[section] = cursor
			cursor += section.Offset
		}
	}

	// Rebase every label to its final address before encoding any
	// operand: a relocatable section's labels are still bound to their
	// section-local offset (the parser's defineLabel runs before
	// Encode knows the section's base), so a branch resolved against
	// symbols mid-walk could read a label defined later in the same
	// section before this loop has rebased it. Doing every label first,
	// across all sections, makes every later Lookup final.
	for _, section := range program.Sections {
		base := bases[section]
		for _, node := range section.Nodes {
			if node.Kind != parser.NodeLabel {
				continue
			}
			addr := node.Address
			if section.Kind == parser.SectionRelocatable {
				addr += base
			}
			program.Symbols.Define(node.Name, addr)
		}
	}

	for _, section := range program.Sections {
		base := bases[section]
		for _, node := range section.Nodes {
			if node.Kind == parser.NodeLabel {
				continue
			}
			addr := node.Address
			if section.Kind == parser.SectionRelocatable {
				addr += base
			}

			bytes, err := encodeNode(node, program.Symbols)
			if err != nil {
				return nil, err
			}
			if int(addr)+len(bytes) > len(image) {
				return nil, fmt.Errorf("%s: encoded node overruns memory at address %d", node.Range, addr)
			}
			copy(image[addr:], bytes)
		}
	}

	return image, nil
}

func encodeNode(node parser.Node, symbols *parser.SymbolTable) ([]byte, error) {
	switch node.Kind {
	case parser.NodeEntry:
		return nil, nil
	case parser.NodeDataConstant:
		b, err := resolveOperandByte(node.Operands[0], symbols, node.Range)
		if err != nil {
			return nil, err
		}
		return []byte{b}, nil
	case parser.NodeDataReserve:
		return make([]byte, node.Reserve), nil
	case parser.NodeInstruction:
		return encodeInstruction(node, symbols)
	default:
		return nil, fmt.Errorf("%s: unencodable node kind %d", node.Range, node.Kind)
	}
}

func resolveOperandByte(op parser.Operand, symbols *parser.SymbolTable, r parser.Range) (byte, error) {
	switch op.Kind {
	case parser.OperandRegister:
		return op.Register, nil
	case parser.OperandImmediate:
		return op.Immediate, nil
	case parser.OperandLabel:
		addr, ok := symbols.Lookup(op.Label)
		if !ok {
			return 0, parser.NewErrorRange(r, parser.ErrorUnknownLabel, fmt.Sprintf("unknown label %q", op.Label))
		}
		return addr, nil
	default:
		return 0, fmt.Errorf("%s: unknown operand kind %d", r, op.Kind)
	}
}
