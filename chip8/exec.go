package chip8

import "fmt"

// Step runs one machine cycle: it fetches the two bytes at PC into Op,
// executes the instruction, and counts down the timers. It returns a
// FaultError if the opcode cannot be decoded or execution trips a halt
// condition; a faulted machine must not be stepped again.
func (m *Machine) Step() (err error) {
	pc := m.PC
	defer func() {
		if e := recover(); e != nil {
			if f, ok := e.(Fault); ok {
				err = FaultError{
					Fault: f,
					Op:    m.Op,
					Addr:  pc,
				}
			} else {
				panic(e)
			}
		}
	}()

	m.fetch()
	m.exec()
	m.tickTimers()
	return nil
}

func (m *Machine) fetch() {
	if int(m.PC) >= memorySize-1 {
		panic(OutOfRange)
	}
	m.Op = Opcode(m.Mem[m.PC])<<8 | Opcode(m.Mem[m.PC+1])
}

func (m *Machine) exec() {
	switch m.Op & 0xF000 {
	case 0x0000:
		switch m.Op & 0x00FF {
		case 0x00E0:
			m.cls()
		case 0x00EE:
			m.ret()
		default:
			panic(BadOpcode)
		}

	case 0x1000:
		m.jp()
	case 0x2000:
		m.call()
	case 0x3000:
		m.seByte()
	case 0x4000:
		m.sneByte()
	case 0x5000:
		if m.Op&0xF != 0 {
			panic(BadOpcode)
		}
		m.seReg()
	case 0x6000:
		m.ldByte()
	case 0x7000:
		m.addByte()

	case 0x8000:
		switch m.Op & 0x000F {
		case 0x0:
			m.ldReg()
		case 0x1:
			m.or()
		case 0x2:
			m.and()
		case 0x3:
			m.xor()
		case 0x4:
			m.add()
		case 0x5:
			m.sub()
		case 0x6:
			m.shr()
		case 0x7:
			m.subn()
		case 0xE:
			m.shl()
		default:
			panic(BadOpcode)
		}

	case 0x9000:
		if m.Op&0xF != 0 {
			panic(BadOpcode)
		}
		m.sneReg()
	case 0xA000:
		m.ldI()
	case 0xB000:
		m.jpV0()
	case 0xC000:
		m.rnd()
	case 0xD000:
		m.drw()

	case 0xE000:
		switch m.Op & 0x00FF {
		case 0x9E:
			m.skp()
		case 0xA1:
			m.sknp()
		default:
			panic(BadOpcode)
		}

	case 0xF000:
		switch m.Op & 0x00FF {
		case 0x07:
			m.getDelay()
		case 0x0A:
			m.waitKey()
		case 0x15:
			m.setDelay()
		case 0x18:
			m.setSound()
		case 0x1E:
			m.addI()
		case 0x29:
			m.fontAddr()
		case 0x33:
			m.bcd()
		case 0x55:
			m.store()
		case 0x65:
			m.load()
		default:
			panic(BadOpcode)
		}
	}
}

// (00E0) Clear the display.
func (m *Machine) cls() {
	m.Display = [DisplaySize]byte{}
	m.PC += 2
}

// (00EE) Return from a subroutine.
func (m *Machine) ret() {
	if m.SP == 0 {
		panic(StackUnderflow)
	}
	m.SP--
	m.PC = m.Stack[m.SP] + 2
}

// (1nnn) Jump.
func (m *Machine) jp() {
	m.PC = m.Op.NNN()
}

// (2nnn) Call a subroutine.
func (m *Machine) call() {
	if int(m.SP) == len(m.Stack) {
		panic(StackOverflow)
	}
	m.Stack[m.SP] = m.PC
	m.SP++
	m.PC = m.Op.NNN()
}

// (3xkk) Skip the next instruction if Vx == kk.
func (m *Machine) seByte() {
	if m.V[m.Op.X()] == m.Op.KK() {
		m.PC += 2
	}
	m.PC += 2
}

// (4xkk) Skip the next instruction if Vx != kk.
func (m *Machine) sneByte() {
	if m.V[m.Op.X()] != m.Op.KK() {
		m.PC += 2
	}
	m.PC += 2
}

// (5xy0) Skip the next instruction if Vx == Vy.
func (m *Machine) seReg() {
	if m.V[m.Op.X()] == m.V[m.Op.Y()] {
		m.PC += 2
	}
	m.PC += 2
}

// (6xkk) Set Vx to kk.
func (m *Machine) ldByte() {
	m.V[m.Op.X()] = m.Op.KK()
	m.PC += 2
}

// (7xkk) Add kk to Vx, wrapping, without touching the flag.
func (m *Machine) addByte() {
	m.V[m.Op.X()] += m.Op.KK()
	m.PC += 2
}

// (8xy0) Set Vx to Vy.
func (m *Machine) ldReg() {
	m.V[m.Op.X()] = m.V[m.Op.Y()]
	m.PC += 2
}

// (8xy1) Vx |= Vy.
func (m *Machine) or() {
	m.V[m.Op.X()] |= m.V[m.Op.Y()]
	m.PC += 2
}

// (8xy2) Vx &= Vy.
func (m *Machine) and() {
	m.V[m.Op.X()] &= m.V[m.Op.Y()]
	m.PC += 2
}

// (8xy3) Vx ^= Vy.
func (m *Machine) xor() {
	m.V[m.Op.X()] ^= m.V[m.Op.Y()]
	m.PC += 2
}

// (8xy4) Add Vy to Vx; VF is 1 on 8-bit overflow, else 0.
func (m *Machine) add() {
	x, y := m.Op.X(), m.Op.Y()
	sum := uint16(m.V[x]) + uint16(m.V[y])
	if sum > 0xff {
		m.V[0xF] = 1
	} else {
		m.V[0xF] = 0
	}
	m.V[x] = byte(sum)
	m.PC += 2
}

// (8xy5) Vx -= Vy; VF is 1 when no borrow occurs, 0 when it does.
func (m *Machine) sub() {
	x, y := m.Op.X(), m.Op.Y()
	vx, vy := m.V[x], m.V[y]
	if vx >= vy {
		m.V[0xF] = 1
	} else {
		m.V[0xF] = 0
	}
	m.V[x] = vx - vy
	m.PC += 2
}

// (8xy6) Shift Vx right; VF holds the bit shifted out.
func (m *Machine) shr() {
	x := m.Op.X()
	m.V[0xF] = m.V[x] & 0x01
	m.V[x] >>= 1
	m.PC += 2
}

// (8xy7) Vx = Vy - Vx; VF is 1 when no borrow occurs, 0 when it does.
func (m *Machine) subn() {
	x, y := m.Op.X(), m.Op.Y()
	vx, vy := m.V[x], m.V[y]
	if vy >= vx {
		m.V[0xF] = 1
	} else {
		m.V[0xF] = 0
	}
	m.V[x] = vy - vx
	m.PC += 2
}

// (8xyE) Shift Vx left; VF holds the raw top bit (0x80 or 0), not 0/1.
func (m *Machine) shl() {
	x := m.Op.X()
	m.V[0xF] = m.V[x] & 0x80
	m.V[x] <<= 1
	m.PC += 2
}

// (9xy0) Skip the next instruction if Vx != Vy.
func (m *Machine) sneReg() {
	if m.V[m.Op.X()] != m.V[m.Op.Y()] {
		m.PC += 2
	}
	m.PC += 2
}

// (Annn) Set I to nnn.
func (m *Machine) ldI() {
	m.I = m.Op.NNN()
	m.PC += 2
}

// (Bnnn) Jump to nnn + V0.
func (m *Machine) jpV0() {
	m.PC = m.Op.NNN() + uint16(m.V[0])
}

// (Cxkk) Set Vx to a random byte masked by kk.
func (m *Machine) rnd() {
	m.V[m.Op.X()] = byte(m.rand.Intn(256)) & m.Op.KK()
	m.PC += 2
}

// (Dxyn) Draw an n-row sprite from memory at I to (Vx, Vy).
//
// Sprites wrap in two steps, applied in this order: a target index past
// the last pixel moves up by 31 rows, then a row that runs past column
// 63 folds back onto its own left edge. A sprite bit landing on a lit
// pixel sets VF before the blend turns the pixel off.
func (m *Machine) drw() {
	var (
		x     = int(m.V[m.Op.X()])
		y     = int(m.V[m.Op.Y()])
		n     = int(m.Op.N())
		start = x + y*DisplayWidth
	)
	m.V[0xF] = 0
	for row := 0; row < n; row++ {
		addr := int(m.I) + row
		if addr >= memorySize {
			panic(OutOfRange)
		}
		sprite := m.Mem[addr]
		for col := 0; col < 8; col++ {
			var state byte
			if sprite&(0x80>>col) != 0 {
				state = 1
			}
			target := start + row*DisplayWidth + col
			if target > lastPixel {
				target -= DisplayWidth * (DisplayHeight - 1)
			}
			if x+col >= DisplayWidth {
				target -= DisplayWidth
			}
			if m.Pixel(target) == 1 {
				m.V[0xF] = 1
			}
			m.xorPixel(target, state)
		}
	}
	m.PC += 2
}

// (Ex9E) Skip the next instruction if the key named by Vx is down.
func (m *Machine) skp() {
	if m.keyDown() {
		m.PC += 2
	}
	m.PC += 2
}

// (ExA1) Skip the next instruction if the key named by Vx is up.
func (m *Machine) sknp() {
	if !m.keyDown() {
		m.PC += 2
	}
	m.PC += 2
}

func (m *Machine) keyDown() bool {
	k := m.V[m.Op.X()]
	if int(k) >= len(m.Keys) {
		panic(OutOfRange)
	}
	return m.Keys[k]
}

// (Fx07) Set Vx to the delay timer.
func (m *Machine) getDelay() {
	m.V[m.Op.X()] = m.Delay
	m.PC += 2
}

// (Fx0A) Wait for a key press and store it in Vx.
//
// With no key down the PC is left in place, so the next Step lands back
// here; control returns to the caller between polls rather than the
// machine spinning.
func (m *Machine) waitKey() {
	for k, down := range m.Keys {
		if down {
			m.V[m.Op.X()] = byte(k)
			m.PC += 2
			return
		}
	}
}

// (Fx15) Set the delay timer to Vx.
func (m *Machine) setDelay() {
	m.Delay = m.V[m.Op.X()]
	m.PC += 2
}

// (Fx18) Set the sound timer to Vx.
func (m *Machine) setSound() {
	m.Sound = m.V[m.Op.X()]
	m.PC += 2
}

// (Fx1E) Add Vx to I.
func (m *Machine) addI() {
	m.I += uint16(m.V[m.Op.X()])
	m.PC += 2
}

// (Fx29) Point I at the fontset sprite for the digit Vx.
func (m *Machine) fontAddr() {
	m.I = fontsetStart + uint16(m.V[m.Op.X()])*5
	m.PC += 2
}

// (Fx33) Store the decimal digits of Vx at I, I+1, I+2.
func (m *Machine) bcd() {
	if int(m.I)+2 >= memorySize {
		panic(OutOfRange)
	}
	vx := m.V[m.Op.X()]
	m.Mem[m.I] = vx / 100
	m.Mem[m.I+1] = vx / 10 % 10
	m.Mem[m.I+2] = vx % 10
	m.PC += 2
}

// (Fx55) Store V0 through Vx at I.
func (m *Machine) store() {
	x := int(m.Op.X())
	if int(m.I)+x >= memorySize {
		panic(OutOfRange)
	}
	for i := 0; i <= x; i++ {
		m.Mem[int(m.I)+i] = m.V[i]
	}
	m.PC += 2
}

// (Fx65) Load V0 through Vx from I.
func (m *Machine) load() {
	x := int(m.Op.X())
	if int(m.I)+x >= memorySize {
		panic(OutOfRange)
	}
	for i := 0; i <= x; i++ {
		m.V[i] = m.Mem[int(m.I)+i]
	}
	m.PC += 2
}

func (m *Machine) tickTimers() {
	if m.Delay > 0 {
		m.Delay--
	}
	if m.Sound > 0 {
		m.Sound--
	}
}

// FaultError is returned by Step when execution cannot continue.
type FaultError struct {
	Fault
	Op   Opcode
	Addr uint16
}

func (e FaultError) Error() string {
	return fmt.Sprintf("%s executing %.4x at %.4x", e.Fault, uint16(e.Op), e.Addr)
}

// Fault signifies the type of condition that stopped the machine.
type Fault byte

const (
	BadOpcode Fault = iota
	StackOverflow
	StackUnderflow
	BadPixel
	OutOfRange
)

func (f Fault) String() string {
	if s, ok := map[Fault]string{
		BadOpcode:      "unknown opcode",
		StackOverflow:  "stack overflow",
		StackUnderflow: "stack underflow",
		BadPixel:       "corrupt pixel",
		OutOfRange:     "address out of range",
	}[f]; ok {
		return s
	}
	return fmt.Sprintf("unknown fault (%.2x)", byte(f))
}
