// Package parser implements the assembler front end (C1-C3): a
// character stream, a lexer, and a recursive-descent parser that
// builds an AST of sections and nodes ready for the encoder.
package parser

import (
	"fmt"
	"strings"

	"github.com/example/aqavm/isa"
)

// SectionKind distinguishes an absolute section (fixed origin) from a
// relocatable one (named, origin assigned at link time — but since
// this toolchain has no multi-file linker, relocatable sections are
// placed back-to-back after the absolute ones by the encoder).
type SectionKind int

const (
	SectionAbsolute SectionKind = iota
	SectionRelocatable
)

// Section holds one asect/rsect's parsed Nodes plus the running offset
// used to bind labels to addresses as parsing proceeds.
type Section struct {
	Kind   SectionKind
	Origin byte
	Name   string
	Nodes  []Node
	Offset byte
}

// Program is everything a full parse produces: every section touched,
// in first-open order, plus the symbol table shared across all of them
// (spec.md §3: "Labels are unique within the assembled program").
type Program struct {
	Sections    []*Section
	relocatable map[string]*Section
	Symbols     *SymbolTable
}

// Parser maintains the current Section and drives the lexer through
// spec.md §4.3's top-level statement grammar.
type Parser struct {
	lexer   *Lexer
	errors  *ErrorList
	program *Program
	current *Section
	ended   bool
}

// NewParser creates a Parser over input, attributing errors to filename.
func NewParser(input, filename string) *Parser {
	return &Parser{
		lexer:  NewLexer(input, filename),
		errors: &ErrorList{},
		program: &Program{
			relocatable: make(map[string]*Section),
			Symbols:     NewSymbolTable(),
		},
	}
}

// Parse runs the full top-level loop until `end` or EOF, returning the
// parsed Program and the accumulated errors/warnings (lexer errors are
// merged in).
func (p *Parser) Parse() (*Program, *ErrorList) {
	for !p.ended {
		tok := p.lexer.Peek()
		if tok.Kind == TokenEof {
			break
		}
		if tok.Kind == TokenComment {
			p.lexer.Consume()
			continue
		}
		if tok.Kind != TokenSymbol {
			p.errorf(tok.Range, ErrorUnexpectedToken, "unexpected token %s", tok.Kind)
			p.lexer.Consume()
			continue
		}
		p.parseStatement()
	}

	for _, err := range p.lexer.Errors().Errors {
		p.errors.AddError(err)
	}
	for _, w := range p.lexer.Errors().Warnings {
		p.errors.AddWarning(w)
	}
	return p.program, p.errors
}

func (p *Parser) errorf(r Range, kind ErrorKind, format string, args ...any) {
	p.errors.AddError(NewErrorRange(r, kind, fmt.Sprintf(format, args...)))
}

func (p *Parser) parseStatement() {
	tok := p.lexer.Consume() // the leading symbol
	name := strings.ToLower(tok.Text)

	if peek := p.lexer.Peek(); peek.Kind == TokenColon {
		p.lexer.Consume()
		p.defineLabel(name, tok.Range)
		return
	}
	if peek := p.lexer.Peek(); peek.Kind == TokenGt {
		p.lexer.Consume()
		p.program.Symbols.SetEntry(name)
		return
	}

	switch name {
	case "asect":
		p.parseAsect()
	case "rsect":
		p.parseRsect()
	case "dc":
		p.parseDc(tok.Range)
	case "ds":
		p.parseDs(tok.Range)
	case "end":
		p.ended = true
	default:
		if m, ok := isa.Lookup(name); ok {
			p.parseInstruction(name, m, tok.Range)
		} else {
			p.errorf(tok.Range, ErrorUnknownMnemonic, "unknown mnemonic or directive %q", name)
		}
	}
}

func (p *Parser) defineLabel(name string, r Range) {
	if p.current == nil {
		p.errorf(r, ErrorNoSection, "label %q defined before any section was opened", name)
		return
	}
	addr := p.current.Offset
	if p.program.Symbols.Define(name, addr) {
		p.errors.AddWarning(&Warning{Range: r, Message: fmt.Sprintf("label %q redefined", name)})
	}
	p.current.Nodes = append(p.current.Nodes, Node{Kind: NodeLabel, Name: name, Address: addr, Range: r})
}

func (p *Parser) parseAsect() {
	origin, ok := p.parseNumber()
	if !ok {
		return
	}
	section := &Section{Kind: SectionAbsolute, Origin: origin, Offset: origin}
	p.program.Sections = append(p.program.Sections, section)
	p.current = section
}

func (p *Parser) parseRsect() {
	tok := p.lexer.Peek()
	if tok.Kind != TokenSymbol {
		p.errorf(tok.Range, ErrorUnexpectedToken, "expected section name after rsect, got %s", tok.Kind)
		return
	}
	p.lexer.Consume()

	if existing, ok := p.program.relocatable[tok.Text]; ok {
		p.current = existing
		return
	}
	section := &Section{Kind: SectionRelocatable, Name: tok.Text}
	p.program.Sections = append(p.program.Sections, section)
	p.program.relocatable[tok.Text] = section
	p.current = section
}

func (p *Parser) requireSection(r Range, what string) bool {
	if p.current == nil {
		p.errorf(r, ErrorNoSection, "%s outside of any section", what)
		return false
	}
	return true
}

func (p *Parser) parseInstruction(name string, m isa.Mnemonic, r Range) {
	if !p.requireSection(r, "instruction "+name) {
		return
	}

	var operands []Operand
	needComma := false

	for i := 0; i < m.Arity; i++ {
		if needComma && !p.expectComma(r) {
			return
		}
		reg, ok := p.parseRegister()
		if !ok {
			return
		}
		operands = append(operands, Operand{Kind: OperandRegister, Register: reg})
		needComma = true
	}

	immCount := m.ImmCount
	if m.HasImm && immCount == 0 {
		immCount = 1
	}
	for i := 0; i < immCount; i++ {
		if needComma && !p.expectComma(r) {
			return
		}
		operand, ok := p.parseImmediateOperand()
		if !ok {
			return
		}
		operands = append(operands, operand)
		needComma = true
	}

	node := Node{Kind: NodeInstruction, Mnemonic: name, Operands: operands, Address: p.current.Offset, Range: r}
	p.current.Nodes = append(p.current.Nodes, node)
	p.current.Offset += byte(m.Bytes)
}

func (p *Parser) parseDc(r Range) {
	if !p.requireSection(r, "dc") {
		return
	}
	operand, ok := p.parseImmediateOperand()
	if !ok {
		return
	}
	node := Node{Kind: NodeDataConstant, Operands: []Operand{operand}, Address: p.current.Offset, Range: r}
	p.current.Nodes = append(p.current.Nodes, node)
	p.current.Offset++
}

func (p *Parser) parseDs(r Range) {
	if !p.requireSection(r, "ds") {
		return
	}
	count, ok := p.parseNumber()
	if !ok {
		return
	}
	node := Node{Kind: NodeDataReserve, Reserve: int(count), Address: p.current.Offset, Range: r}
	p.current.Nodes = append(p.current.Nodes, node)
	p.current.Offset += count
}

func (p *Parser) expectComma(r Range) bool {
	tok := p.lexer.Peek()
	if tok.Kind != TokenComma {
		p.errorf(tok.Range, ErrorUnexpectedToken, "expected ',' , got %s", tok.Kind)
		return false
	}
	p.lexer.Consume()
	return true
}

func (p *Parser) parseRegister() (byte, bool) {
	tok := p.lexer.Peek()
	if tok.Kind != TokenRegister {
		p.errorf(tok.Range, ErrorWrongOperandCount, "expected register operand, got %s", tok.Kind)
		return 0, false
	}
	p.lexer.Consume()
	return tok.Value, true
}

// parseNumber parses a plain Decimal/Hexadecimal/Binary literal with
// no sign and no label/text fallback, used for asect origins and ds
// counts.
func (p *Parser) parseNumber() (byte, bool) {
	tok := p.lexer.Peek()
	switch tok.Kind {
	case TokenDecimal, TokenHexadecimal, TokenBinary:
		p.lexer.Consume()
		return tok.Value, true
	default:
		p.errorf(tok.Range, ErrorUnexpectedToken, "expected a number, got %s", tok.Kind)
		return 0, false
	}
}

// parseImmediateOperand implements spec.md §4.3's `immediate` grammar:
// Decimal/Hexadecimal/Binary, a Minus-prefixed signed Decimal in
// 0..128, a bare Symbol (label reference), or a single-byte Text
// literal.
func (p *Parser) parseImmediateOperand() (Operand, bool) {
	tok := p.lexer.Peek()

	switch tok.Kind {
	case TokenMinus:
		p.lexer.Consume()
		num := p.lexer.Peek()
		if num.Kind != TokenDecimal {
			p.errorf(num.Range, ErrorUnexpectedToken, "signed immediates must be decimal, got %s", num.Kind)
			return Operand{}, false
		}
		p.lexer.Consume()
		if num.Value > 128 {
			p.errorf(num.Range, ErrorNumberOutOfRange, "signed immediate %d out of range 0..128", num.Value)
			return Operand{}, false
		}
		return Operand{Kind: OperandImmediate, Immediate: byte(-int(num.Value))}, true

	case TokenDecimal, TokenHexadecimal, TokenBinary:
		p.lexer.Consume()
		return Operand{Kind: OperandImmediate, Immediate: tok.Value}, true

	case TokenText:
		p.lexer.Consume()
		if len(tok.Text) != 1 {
			p.errorf(tok.Range, ErrorMalformedNumber, "text immediate must be exactly one byte, got %d", len(tok.Text))
			return Operand{}, false
		}
		return Operand{Kind: OperandImmediate, Immediate: tok.Text[0]}, true

	case TokenSymbol:
		p.lexer.Consume()
		return Operand{Kind: OperandLabel, Label: tok.Text}, true

	default:
		p.errorf(tok.Range, ErrorUnexpectedToken, "expected an immediate operand, got %s", tok.Kind)
		return Operand{}, false
	}
}
