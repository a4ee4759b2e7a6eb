package alu

import (
	"testing"

	"github.com/example/aqavm/isa"
)

func TestMoveSetsNZClearsCV(t *testing.T) {
	result, flags := Execute(isa.MoveClass, 0x00, 0, false)
	if result != 0 || !flags.Z || flags.N || flags.C || flags.V {
		t.Fatalf("mov #0: result=%#x flags=%+v", result, flags)
	}

	result, flags = Execute(isa.MoveClass, 0xFF, 0, false)
	if result != 0xFF || flags.Z || !flags.N || flags.C || flags.V {
		t.Fatalf("mov #0xFF: result=%#x flags=%+v", result, flags)
	}
}

func TestAddBasic(t *testing.T) {
	result, flags := Execute(isa.AddClass, 0, 1, false)
	if result != 1 || flags.Z || flags.N || flags.C {
		t.Fatalf("0+1: result=%#x flags=%+v", result, flags)
	}
}

func TestIncWraps(t *testing.T) {
	result, flags := Execute(isa.UnaryClass|isa.UnaryInc, 0, 0xFF, false)
	if result != 0 || !flags.C || !flags.Z || flags.N {
		t.Fatalf("inc 0xFF: result=%#x flags=%+v", result, flags)
	}
}

func TestCmpEqualSetsZero(t *testing.T) {
	_, flags := Execute(isa.CmpClass, 5, 5, false)
	if !flags.Z {
		t.Fatalf("cmp 5,5: flags=%+v, want Z set", flags)
	}
}

func TestSubBorrow(t *testing.T) {
	result, flags := Execute(isa.SubClass, 0, 1, false)
	if result != 0xFF {
		t.Fatalf("0-1: result=%#x, want 0xFF", result)
	}
	if flags.C {
		t.Fatalf("0-1: carry should be clear (borrow occurred)")
	}
}

func TestShrCarriesOddBit(t *testing.T) {
	result, flags := Execute(isa.ShiftClass|isa.ShiftShr, 0, 0x03, false)
	if result != 0x01 || !flags.C {
		t.Fatalf("shr 3: result=%#x flags=%+v", result, flags)
	}
}

func TestRolWraps(t *testing.T) {
	result, flags := Execute(isa.ShiftClass|isa.ShiftRol, 0, 0x80, false)
	if result != 0x01 || !flags.C {
		t.Fatalf("rol 0x80: result=%#x flags=%+v", result, flags)
	}
}

func TestFlagsByteRoundTrip(t *testing.T) {
	f := Flags{N: true, Z: false, C: true, V: true}
	got := FlagsFromByte(f.Byte())
	if got != f {
		t.Fatalf("round trip: got %+v, want %+v", got, f)
	}
}
