// Package alu implements the byte-ISA's arithmetic-logic unit: a pure
// function from (opcode, operands, carry-in) to (result, updated flags),
// grounded on original_source/src/alu.rs. Nothing here touches storage;
// vm wires the results into the register file.
package alu

import "github.com/example/aqavm/isa"

// Flags holds the four condition bits the ALU can update.
type Flags struct {
	N bool // Negative: bit7 of the result
	Z bool // Zero: result == 0
	C bool // Carry
	V bool // Overflow
}

// Byte packs Flags into the STATUS register's low nibble.
func (f Flags) Byte() byte {
	var b byte
	if f.C {
		b |= isa.StatusCarry
	}
	if f.V {
		b |= isa.StatusOverflow
	}
	if f.Z {
		b |= isa.StatusZero
	}
	if f.N {
		b |= isa.StatusNegative
	}
	return b
}

// FlagsFromByte unpacks a STATUS byte's low nibble into Flags.
func FlagsFromByte(b byte) Flags {
	return Flags{
		C: b&isa.StatusCarry != 0,
		V: b&isa.StatusOverflow != 0,
		Z: b&isa.StatusZero != 0,
		N: b&isa.StatusNegative != 0,
	}
}

func nz(result byte) (n, z bool) {
	return result&0x80 != 0, result == 0
}

// Execute runs one ALU-class instruction byte against its two register
// operands and the current carry flag, returning the result to write
// into the right-hand register (or to discard, for CMP) and the updated
// flags. Instruction must satisfy isa.Class(instruction) < isa.ALUClassLimit.
func Execute(instruction, left, right byte, carryIn bool) (result byte, flags Flags) {
	switch isa.Class(instruction) {
	case isa.MoveClass:
		n, z := nz(left)
		return left, Flags{N: n, Z: z}

	case isa.AddClass, isa.AddCarryClass, isa.SubClass, isa.CmpClass:
		return executeAddFamily(instruction, left, right, carryIn)

	case isa.AndClass:
		r := left & right
		n, z := nz(r)
		return r, Flags{N: n, Z: z}

	case isa.OrClass:
		r := left | right
		n, z := nz(r)
		return r, Flags{N: n, Z: z}

	case isa.XorClass:
		r := left ^ right
		n, z := nz(r)
		return r, Flags{N: n, Z: z}

	case isa.UnaryClass:
		return executeUnary(instruction, right)

	case isa.ShiftClass:
		return executeShift(instruction, right)
	}

	n, z := nz(right)
	return right, Flags{N: n, Z: z}
}

// executeAddFamily handles ADD/ADDC/SUB/CMP, all of which go through the
// same overflowing-add-of-possibly-inverted-operand path in alu.rs: SUB
// and CMP flip the right operand and inject a carry-in of 1 to achieve
// two's-complement subtraction; ADDC injects the current carry; ADD
// injects no carry.
func executeAddFamily(instruction, left, right byte, carryIn bool) (byte, Flags) {
	class := isa.Class(instruction)

	operand := right
	var carry byte
	switch class {
	case isa.SubClass, isa.CmpClass:
		operand = ^right
		carry = 1
	case isa.AddCarryClass:
		if carryIn {
			carry = 1
		}
	}

	sum1 := left + operand
	carryA := sum1 < left
	result := sum1 + carry
	carryB := result < sum1

	signLeft := left&0x80 != 0
	signOperand := operand&0x80 != 0
	signResult := result&0x80 != 0
	overflow := signLeft == signOperand && signLeft != signResult

	n, z := nz(result)
	flags := Flags{N: n, Z: z, C: carryA || carryB, V: overflow}
	return result, flags
}

// executeUnary handles NOT/NEG/INC/DEC, which operate on a single
// register (encoded as "right", the same field position as op2).
func executeUnary(instruction, right byte) (byte, Flags) {
	sub := instruction & isa.Operand1Mask
	var result byte
	var carry, overflow bool

	switch sub {
	case isa.UnaryNot:
		result = ^right
	case isa.UnaryNeg:
		result = -right
		overflow = right == 0x80
	case isa.UnaryInc:
		result = right + 1
		carry = right == 0xFF
		overflow = right == 0x7F
	case isa.UnaryDec:
		result = right - 1
		carry = right == 0x00
		overflow = right == 0x80
	}

	n, z := nz(result)
	return result, Flags{N: n, Z: z, C: carry, V: overflow}
}

// executeShift handles SHR/SHLA/SHRA/ROL, all single-operand.
func executeShift(instruction, right byte) (byte, Flags) {
	sub := instruction & isa.Operand1Mask
	var result byte
	var carry, overflow bool

	switch sub {
	case isa.ShiftShr:
		result = right >> 1
		carry = right&1 != 0
	case isa.ShiftShra:
		result = byte(int8(right) >> 1)
		carry = right&1 != 0
	case isa.ShiftShla:
		result = right << 1
		carry = right&0x80 != 0
		overflow = (right & 0x80) != (result & 0x80)
	case isa.ShiftRol:
		result = right<<1 | right>>7
		carry = right&0x80 != 0
	}

	n, z := nz(result)
	return result, Flags{N: n, Z: z, C: carry, V: overflow}
}
