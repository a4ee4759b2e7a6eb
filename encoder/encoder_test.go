package encoder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/aqavm/isa"
	"github.com/example/aqavm/parser"
)

func encode(t *testing.T, src string) []byte {
	t.Helper()
	program, errs := parser.NewParser(src, "test.s").Parse()
	if errs.HasErrors() {
		t.Fatalf("unexpected parse errors: %s", errs.Error())
	}
	image, err := Encode(program)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return image
}

func TestEncodeAluPacksBothRegistersIntoOpcodeByte(t *testing.T) {
	image := encode(t, "asect 0\nadd r1, r2\nhalt\nend\n")
	want := isa.AddClass | (isa.R1 << 2) | isa.R2
	if image[0] != want {
		t.Fatalf("add r1, r2 = %#02x, want %#02x", image[0], want)
	}
	if image[1] != isa.Halt {
		t.Fatalf("halt = %#02x, want %#02x", image[1], isa.Halt)
	}
}

func TestEncodeUnaryPacksSingleRegisterIntoOperand2(t *testing.T) {
	image := encode(t, "asect 0\ninc r2\nend\n")
	want := isa.UnaryClass | isa.UnaryInc | isa.R2
	if image[0] != want {
		t.Fatalf("inc r2 = %#02x, want %#02x", image[0], want)
	}
}

func TestEncodeLdiSelectsRegisterViaOpcodeNotTrailingByte(t *testing.T) {
	image := encode(t, "asect 0\nldi r2, 0x2A\nend\n")
	if image[0] != isa.ExtendedClass|isa.ExtLdi2 {
		t.Fatalf("ldi r2 opcode = %#02x, want %#02x", image[0], isa.ExtendedClass|isa.ExtLdi2)
	}
	if image[1] != 0x2A {
		t.Fatalf("ldi immediate = %#02x, want 0x2A", image[1])
	}
}

func TestEncodePushTrailsRegisterByte(t *testing.T) {
	image := encode(t, "asect 0\npush r3\nend\n")
	if image[0] != isa.StackClass|isa.StackPush {
		t.Fatalf("push opcode = %#02x", image[0])
	}
	if image[1] != isa.R3 {
		t.Fatalf("push register byte = %d, want %d", image[1], isa.R3)
	}
}

func TestEncodeBranchResolvesForwardLabel(t *testing.T) {
	image := encode(t, "asect 0\nbeq loop\nnop 0\nloop:\nhalt\nend\n")
	if image[0] != isa.BranchClass|isa.BranchEQ {
		t.Fatalf("beq opcode = %#02x", image[0])
	}
	if image[1] != 4 {
		t.Fatalf("beq target = %d, want 4 (the halt after the 2-byte nop)", image[1])
	}
	if image[4] != isa.Halt {
		t.Fatalf("image[4] = %#02x, want halt", image[4])
	}
}

func TestEncodeForwardBranchWithinRelocatableSectionIsRebased(t *testing.T) {
	// The rsect is placed right after the 1-byte asect, so its base is
	// 1: "later"'s section-local offset is 4, but its final address
	// must be base+4 = 5, not the unrebased local offset.
	image := encode(t, "asect 0\nhalt\nrsect data\nbeq later\nnop 0\nlater:\nhalt\nend\n")
	if image[0] != isa.Halt {
		t.Fatalf("image[0] = %#02x, want halt", image[0])
	}
	if image[1] != isa.BranchClass|isa.BranchEQ {
		t.Fatalf("beq opcode = %#02x", image[1])
	}
	if image[2] != 5 {
		t.Fatalf("beq target = %d, want 5 (base 1 + local offset 4, not the unrebased local offset)", image[2])
	}
	if image[5] != isa.Halt {
		t.Fatalf("image[5] = %#02x, want halt", image[5])
	}
}

func TestEncodeUnknownLabelFails(t *testing.T) {
	program, errs := parser.NewParser("asect 0\nbeq missing\nend\n", "test.s").Parse()
	require.False(t, errs.HasErrors(), "unexpected parse errors: %s", errs.Error())

	_, err := Encode(program)
	require.Error(t, err, "expected an unknown-label encode error")

	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, parser.ErrorUnknownLabel, perr.Kind)
}

func TestEncodeRelocatableSectionPlacedAfterAbsolute(t *testing.T) {
	image := encode(t, "asect 0\nhalt\nrsect data\ndc 0x99\nend\n")
	if image[0] != isa.Halt {
		t.Fatalf("image[0] = %#02x, want halt", image[0])
	}
	if image[1] != 0x99 {
		t.Fatalf("image[1] = %#02x, want 0x99 (relocatable section placed right after the 1-byte asect)", image[1])
	}
}

func TestEncodeDsReservesZeroedBytes(t *testing.T) {
	image := encode(t, "asect 0\nds 4\ndc 7\nend\n")
	for i := 0; i < 4; i++ {
		if image[i] != 0 {
			t.Fatalf("image[%d] = %d, want 0 (reserved)", i, image[i])
		}
	}
	if image[4] != 7 {
		t.Fatalf("image[4] = %d, want 7", image[4])
	}
}
