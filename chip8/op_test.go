package chip8

import "testing"

func TestOpcodeFields(t *testing.T) {
	o := Opcode(0xD63E)
	if g := o.X(); g != 0x6 {
		t.Errorf("X() = %x, want 6", g)
	}
	if g := o.Y(); g != 0x3 {
		t.Errorf("Y() = %x, want 3", g)
	}
	if g := o.N(); g != 0xE {
		t.Errorf("N() = %x, want e", g)
	}
	if g := o.KK(); g != 0x3E {
		t.Errorf("KK() = %x, want 3e", g)
	}
	if g := o.NNN(); g != 0x63E {
		t.Errorf("NNN() = %x, want 63e", g)
	}
}

func TestOpcodeString(t *testing.T) {
	for _, c := range []struct {
		op   Opcode
		want string
	}{
		{0x00E0, "CLS"},
		{0x00EE, "RET"},
		{0x1234, "JP 234"},
		{0x2345, "CALL 345"},
		{0x3142, "SE V1, 42"},
		{0x6A02, "LD VA, 02"},
		{0x8124, "ADD V1, V2"},
		{0x8126, "SHR V1"},
		{0x812E, "SHL V1"},
		{0xA2F0, "LD I, 2f0"},
		{0xC70F, "RND V7, 0f"},
		{0xD63E, "DRW V6, V3, e"},
		{0xEC9E, "SKP VC"},
		{0xECA1, "SKNP VC"},
		{0xF10A, "LD V1, K"},
		{0xF233, "LD B, V2"},
		{0xF255, "LD [I], V2"},
		{0xF265, "LD V2, [I]"},
		{0x5121, "5121"}, // no such instruction
		{0xFFFF, "ffff"},
	} {
		if g := c.op.String(); g != c.want {
			t.Errorf("Opcode(%.4x).String() = %q, want %q", uint16(c.op), g, c.want)
		}
	}
}
