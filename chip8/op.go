package chip8

import "fmt"

// Opcode is one 16-bit CHIP-8 instruction, fetched big-endian from two
// consecutive memory bytes.
type Opcode uint16

// Field extractors, named for the conventional instruction diagrams
// (3xkk, Dxyn, and so on).

func (o Opcode) X() byte     { return byte(o>>8) & 0xf }
func (o Opcode) Y() byte     { return byte(o>>4) & 0xf }
func (o Opcode) N() byte     { return byte(o) & 0xf }
func (o Opcode) KK() byte    { return byte(o) }
func (o Opcode) NNN() uint16 { return uint16(o) & 0xfff }

// String disassembles the opcode using the conventional mnemonics.
// Encodings that match no instruction render as raw hex.
func (o Opcode) String() string {
	x, y := o.X(), o.Y()
	switch o & 0xF000 {
	case 0x0000:
		switch o & 0x00FF {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
	case 0x1000:
		return fmt.Sprintf("JP %.3x", o.NNN())
	case 0x2000:
		return fmt.Sprintf("CALL %.3x", o.NNN())
	case 0x3000:
		return fmt.Sprintf("SE V%X, %.2x", x, o.KK())
	case 0x4000:
		return fmt.Sprintf("SNE V%X, %.2x", x, o.KK())
	case 0x5000:
		if o&0xF == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6000:
		return fmt.Sprintf("LD V%X, %.2x", x, o.KK())
	case 0x7000:
		return fmt.Sprintf("ADD V%X, %.2x", x, o.KK())
	case 0x8000:
		switch o & 0x000F {
		case 0x0:
			return fmt.Sprintf("LD V%X, V%X", x, y)
		case 0x1:
			return fmt.Sprintf("OR V%X, V%X", x, y)
		case 0x2:
			return fmt.Sprintf("AND V%X, V%X", x, y)
		case 0x3:
			return fmt.Sprintf("XOR V%X, V%X", x, y)
		case 0x4:
			return fmt.Sprintf("ADD V%X, V%X", x, y)
		case 0x5:
			return fmt.Sprintf("SUB V%X, V%X", x, y)
		case 0x6:
			return fmt.Sprintf("SHR V%X", x)
		case 0x7:
			return fmt.Sprintf("SUBN V%X, V%X", x, y)
		case 0xE:
			return fmt.Sprintf("SHL V%X", x)
		}
	case 0x9000:
		if o&0xF == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA000:
		return fmt.Sprintf("LD I, %.3x", o.NNN())
	case 0xB000:
		return fmt.Sprintf("JP V0, %.3x", o.NNN())
	case 0xC000:
		return fmt.Sprintf("RND V%X, %.2x", x, o.KK())
	case 0xD000:
		return fmt.Sprintf("DRW V%X, V%X, %x", x, y, o.N())
	case 0xE000:
		switch o & 0x00FF {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF000:
		switch o & 0x00FF {
		case 0x07:
			return fmt.Sprintf("LD V%X, DT", x)
		case 0x0A:
			return fmt.Sprintf("LD V%X, K", x)
		case 0x15:
			return fmt.Sprintf("LD DT, V%X", x)
		case 0x18:
			return fmt.Sprintf("LD ST, V%X", x)
		case 0x1E:
			return fmt.Sprintf("ADD I, V%X", x)
		case 0x29:
			return fmt.Sprintf("LD F, V%X", x)
		case 0x33:
			return fmt.Sprintf("LD B, V%X", x)
		case 0x55:
			return fmt.Sprintf("LD [I], V%X", x)
		case 0x65:
			return fmt.Sprintf("LD V%X, [I]", x)
		}
	}
	return fmt.Sprintf("%.4x", uint16(o))
}
