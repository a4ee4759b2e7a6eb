// Package isa is the single source of truth for the byte-ISA's bitfield
// layout and opcode constants. Both encoder and vm derive their behaviour
// from the tables here so the two sides of the fetch/emit loop cannot
// drift apart.
package isa

// OperationMask selects the opcode class (top nibble) of an instruction
// byte. Class values below StoreClass are routed to the ALU; everything
// else is handled directly by the VM's dispatch loop.
const (
	OperationMask byte = 0b1111_0000
	Operand1Mask  byte = 0b0000_1100
	Operand2Mask  byte = 0b0000_0011
	SubopMask     byte = 0b0000_1111
)

// Opcode classes (top nibble). Classes 0x0-0x9 are ALU operations;
// 0xA-0xE are the non-ALU classes the VM core switches on directly.
const (
	MoveClass     byte = 0x0 << 4
	AddClass      byte = 0x1 << 4
	AddCarryClass byte = 0x2 << 4
	SubClass      byte = 0x3 << 4
	AndClass      byte = 0x4 << 4
	OrClass       byte = 0x5 << 4
	XorClass      byte = 0x6 << 4
	CmpClass      byte = 0x7 << 4
	UnaryClass    byte = 0x8 << 4 // NOT/NEG/DEC/INC, sub-op in Operand1Mask bits
	ShiftClass    byte = 0x9 << 4 // SHR/SHLA/SHRA/ROL, sub-op in Operand1Mask bits
	StoreClass    byte = 0xA << 4
	LoadClass     byte = 0xB << 4
	StackClass    byte = 0xC << 4 // sub-op in SubopMask bits
	ExtendedClass byte = 0xD << 4 // sub-op in SubopMask bits
	BranchClass   byte = 0xE << 4 // sub-op in SubopMask bits selects the predicate
)

// ALUClassLimit is the boundary below which vm.Step hands the whole
// instruction byte to the alu package (spec.md §4.7: "If < STORE,
// delegate to ALU").
const ALUClassLimit = StoreClass

// Unary sub-opcodes (bits 3:2 of the instruction, selected instead of a
// second register operand because these ops have only one operand).
// Values preserved from original_source/src/opcodes.rs.
const (
	UnaryNot byte = 0b0000_0000
	UnaryNeg byte = 0b0000_0100
	UnaryDec byte = 0b0000_1000
	UnaryInc byte = 0b0000_1100
)

// Shift sub-opcodes (bits 3:2).
const (
	ShiftShr  byte = 0b0000_0000
	ShiftShla byte = 0b0000_0100
	ShiftShra byte = 0b0000_1000
	ShiftRol  byte = 0b0000_1100
)

// Stack sub-opcodes (low nibble of StackClass instructions).
const (
	StackPush    byte = 0x0
	StackPop     byte = 0x1
	StackLdsa    byte = 0x2 // load SP+offset into register
	StackAddsp   byte = 0x3
	StackSetsp   byte = 0x4
	StackPushAll byte = 0x5
	StackPopAll  byte = 0x6
)

// Extended sub-opcodes (low nibble of ExtendedClass instructions).
// Halt's value (0xD4, i.e. ExtendedClass|ExtHalt) is the one concrete
// constant that survived from original_source/src/opcodes.rs verbatim.
const (
	ExtLdi0  byte = 0x0
	ExtLdi1  byte = 0x1
	ExtLdi2  byte = 0x2
	ExtLdi3  byte = 0x3
	ExtHalt  byte = 0x4
	ExtWait  byte = 0x5
	ExtJsr   byte = 0x6
	ExtRts   byte = 0x7
	ExtCrc   byte = 0x8
	ExtIoi   byte = 0x9
	ExtRti   byte = 0xA
	ExtOsix  byte = 0xB
	ExtRand  byte = 0xC
)

// Halt is the full instruction byte for HALT, kept as its own constant
// since the Mnemonics table and the tests use it directly.
const Halt = ExtendedClass | ExtHalt

// Branch sub-opcodes (low nibble). Mirrors the ARM-style 16 condition
// codes from spec.md's predicate table one-for-one; NOP occupies the
// "never" slot the way ARM's NV does.
const (
	BranchEQ byte = 0x0
	BranchNE byte = 0x1
	BranchHS byte = 0x2 // a.k.a. BCS
	BranchLO byte = 0x3 // a.k.a. BCC
	BranchMI byte = 0x4
	BranchPL byte = 0x5
	BranchVS byte = 0x6
	BranchVC byte = 0x7
	BranchHI byte = 0x8
	BranchLS byte = 0x9
	BranchGE byte = 0xA
	BranchLT byte = 0xB
	BranchGT byte = 0xC
	BranchLE byte = 0xD
	BranchAL byte = 0xE // BR: always
	BranchNV byte = 0xF // NOP: never
)

// Register file layout. Preserved exactly from
// original_source/src/machine.rs (COUNTER=4, STATUS=5, STACK=6, REG_SIZE=7).
const (
	R0 = 0
	R1 = 1
	R2 = 2
	R3 = 3

	Counter = 4 // program counter
	Status  = 5 // N/Z/C/V flags + interrupt-enable
	SP      = 6 // stack pointer

	RegisterCount = 7
)

// STATUS bit layout (low nibble), per spec.md §3.
const (
	StatusCarry    byte = 1 << 3
	StatusOverflow byte = 1 << 2
	StatusZero     byte = 1 << 1
	StatusNegative byte = 1 << 0
	StatusIRQEnable byte = 1 << 7
)

// MemorySize is the fixed flat address space of the byte-ISA, per
// spec.md §6.
const MemorySize = 256

// InterruptVectorBase is the low address of the interrupt vector table;
// vector v's PC/PS pair lives at InterruptVectorBase+2*v and +2*v+1.
const InterruptVectorBase = 0xF0

// Mnemonic describes one assembly mnemonic's encoding so the parser,
// encoder, and a disassembler can all be driven from the same table
// instead of duplicating per-mnemonic knowledge (spec.md §4.8's "single
// place" requirement for adding a new instruction).
type Mnemonic struct {
	Name     string
	Opcode   byte // full opcode byte for no-operand / class instructions, or class|subop
	Arity    int  // number of register operands the parser must consume
	HasImm   bool // true if the instruction takes a trailing immediate/offset byte
	ImmCount int  // number of trailing immediate bytes, defaults to 1 when HasImm is set
	IsAlu    bool
	Bytes    int // total encoded instruction length, opcode byte included
}

// Mnemonics is the descriptor table shared by the parser and the
// encoder. Register-register ALU ops are reg,reg (arity 2); unary/shift
// ALU ops are reg only (arity 1, acting on that register in place,
// mirroring alu.rs where reg_right is both operand and destination).
var Mnemonics = []Mnemonic{
	{Name: "mov", Opcode: MoveClass, Arity: 2, IsAlu: true, Bytes: 1},
	{Name: "add", Opcode: AddClass, Arity: 2, IsAlu: true, Bytes: 1},
	{Name: "addc", Opcode: AddCarryClass, Arity: 2, IsAlu: true, Bytes: 1},
	{Name: "sub", Opcode: SubClass, Arity: 2, IsAlu: true, Bytes: 1},
	{Name: "and", Opcode: AndClass, Arity: 2, IsAlu: true, Bytes: 1},
	{Name: "or", Opcode: OrClass, Arity: 2, IsAlu: true, Bytes: 1},
	{Name: "xor", Opcode: XorClass, Arity: 2, IsAlu: true, Bytes: 1},
	{Name: "cmp", Opcode: CmpClass, Arity: 2, IsAlu: true, Bytes: 1},
	{Name: "not", Opcode: UnaryClass | UnaryNot, Arity: 1, IsAlu: true, Bytes: 1},
	{Name: "neg", Opcode: UnaryClass | UnaryNeg, Arity: 1, IsAlu: true, Bytes: 1},
	{Name: "dec", Opcode: UnaryClass | UnaryDec, Arity: 1, IsAlu: true, Bytes: 1},
	{Name: "inc", Opcode: UnaryClass | UnaryInc, Arity: 1, IsAlu: true, Bytes: 1},
	{Name: "shr", Opcode: ShiftClass | ShiftShr, Arity: 1, IsAlu: true, Bytes: 1},
	{Name: "shla", Opcode: ShiftClass | ShiftShla, Arity: 1, IsAlu: true, Bytes: 1},
	{Name: "shra", Opcode: ShiftClass | ShiftShra, Arity: 1, IsAlu: true, Bytes: 1},
	{Name: "rol", Opcode: ShiftClass | ShiftRol, Arity: 1, IsAlu: true, Bytes: 1},

	{Name: "st", Opcode: StoreClass, Arity: 2, Bytes: 1},
	{Name: "ld", Opcode: LoadClass, Arity: 2, Bytes: 1},

	// Stack-class sub-opcodes spend the whole low nibble selecting the
	// operation, so unlike ALU/Store/Load there is no bitfield room
	// left for a register operand: push/pop/setsp/ldsa encode their
	// register(s) as trailing bytes instead of in the opcode byte.
	{Name: "push", Opcode: StackClass | StackPush, Arity: 1, Bytes: 2},
	{Name: "pop", Opcode: StackClass | StackPop, Arity: 1, Bytes: 2},
	{Name: "ldsa", Opcode: StackClass | StackLdsa, Arity: 1, HasImm: true, Bytes: 3},
	{Name: "addsp", Opcode: StackClass | StackAddsp, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "setsp", Opcode: StackClass | StackSetsp, Arity: 1, Bytes: 2},
	{Name: "pushall", Opcode: StackClass | StackPushAll, Arity: 0, Bytes: 1},
	{Name: "popall", Opcode: StackClass | StackPopAll, Arity: 0, Bytes: 1},

	{Name: "ldi", Opcode: ExtendedClass, Arity: 1, HasImm: true, Bytes: 2}, // register picks LDI0-3 sub-op
	{Name: "halt", Opcode: Halt, Arity: 0, Bytes: 1},
	{Name: "wait", Opcode: ExtendedClass | ExtWait, Arity: 0, Bytes: 1},
	{Name: "jsr", Opcode: ExtendedClass | ExtJsr, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "rts", Opcode: ExtendedClass | ExtRts, Arity: 0, Bytes: 1},
	{Name: "crc", Opcode: ExtendedClass | ExtCrc, Arity: 0, Bytes: 1},
	{Name: "ioi", Opcode: ExtendedClass | ExtIoi, Arity: 0, HasImm: true, Bytes: 2}, // immediate is the interrupt vector
	{Name: "rti", Opcode: ExtendedClass | ExtRti, Arity: 0, Bytes: 1},
	{Name: "osix", Opcode: ExtendedClass | ExtOsix, Arity: 0, HasImm: true, ImmCount: 2, Bytes: 3},
	{Name: "rand", Opcode: ExtendedClass | ExtRand, Arity: 0, HasImm: true, Bytes: 2}, // immediate is the destination register index

	{Name: "beq", Opcode: BranchClass | BranchEQ, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bz", Opcode: BranchClass | BranchEQ, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bne", Opcode: BranchClass | BranchNE, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bnz", Opcode: BranchClass | BranchNE, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bhs", Opcode: BranchClass | BranchHS, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bcs", Opcode: BranchClass | BranchHS, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "blo", Opcode: BranchClass | BranchLO, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bcc", Opcode: BranchClass | BranchLO, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bmi", Opcode: BranchClass | BranchMI, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bpl", Opcode: BranchClass | BranchPL, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bvs", Opcode: BranchClass | BranchVS, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bvc", Opcode: BranchClass | BranchVC, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bhi", Opcode: BranchClass | BranchHI, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bls", Opcode: BranchClass | BranchLS, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bge", Opcode: BranchClass | BranchGE, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "blt", Opcode: BranchClass | BranchLT, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "bgt", Opcode: BranchClass | BranchGT, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "ble", Opcode: BranchClass | BranchLE, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "br", Opcode: BranchClass | BranchAL, Arity: 0, HasImm: true, Bytes: 2},
	{Name: "nop", Opcode: BranchClass | BranchNV, Arity: 0, HasImm: true, Bytes: 2},
}

// Lookup finds a mnemonic descriptor by (case-normalized) name.
func Lookup(name string) (Mnemonic, bool) {
	for _, m := range Mnemonics {
		if m.Name == name {
			if m.HasImm && m.ImmCount == 0 {
				m.ImmCount = 1
			}
			return m, true
		}
	}
	return Mnemonic{}, false
}

// Op1 extracts the first register operand (bits 3:2) from an ALU-class
// instruction byte.
func Op1(instruction byte) byte {
	return (instruction & Operand1Mask) >> 2
}

// Op2 extracts the second register operand (bits 1:0) from an ALU-class
// instruction byte.
func Op2(instruction byte) byte {
	return instruction & Operand2Mask
}

// Subop extracts the sub-opcode nibble from a StackClass/ExtendedClass/
// BranchClass instruction byte.
func Subop(instruction byte) byte {
	return instruction & SubopMask
}

// Class extracts the opcode class (top nibble).
func Class(instruction byte) byte {
	return instruction & OperationMask
}
