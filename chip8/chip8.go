// Package chip8 provides an implementation of a CHIP-8 CPU, called Machine,
// that can be used to execute CHIP-8 program images.
package chip8

import (
	"math/rand"
	"time"
)

const (
	// DisplayWidth and DisplayHeight are the dimensions of the
	// monochrome display in logical pixels.
	DisplayWidth  = 64
	DisplayHeight = 32

	// DisplaySize is the size of the exported framebuffer in bytes.
	// Each logical pixel is stored as an RGB24 triplet whose three bytes
	// are always identical, so the buffer can be handed to a renderer
	// without conversion.
	DisplaySize = DisplayWidth * DisplayHeight * 3

	// ProgramStart is the address at which program images are loaded
	// and where execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the number of memory bytes available to a
	// program image.
	MaxProgramSize = memorySize - ProgramStart

	memorySize   = 4096
	fontsetStart = 0x000
	lastPixel    = DisplayWidth*DisplayHeight - 1
)

// fontset holds the built-in 5-byte sprite for each hexadecimal digit,
// loaded at fontsetStart when the machine is created.
var fontset = [80]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Machine is an implementation of a CHIP-8 CPU.
//
// The state fields are exported so that front ends can render them, but
// they must only be read between calls to Step; the caller is expected
// to serialize all access to a Machine.
type Machine struct {
	Op      Opcode // current opcode, overwritten by each fetch
	Mem     [memorySize]byte
	V       [16]byte // general registers; V[0xF] is the flag register
	I       uint16   // address register
	PC      uint16
	Display [DisplaySize]byte
	Stack   [16]uint16
	SP      byte
	Delay   byte
	Sound   byte
	Keys    [16]bool

	rand *rand.Rand
}

// New returns a machine with the fontset in low memory and the program
// counter at ProgramStart. Call Load to place a program image in memory.
func New() *Machine {
	m := &Machine{
		PC:   ProgramStart,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	copy(m.Mem[fontsetStart:], fontset[:])
	return m
}

// Load copies rom into memory at ProgramStart and returns the number of
// bytes copied. An image larger than MaxProgramSize is truncated rather
// than written past the end of memory; whether truncation is an error
// is the caller's decision.
func (m *Machine) Load(rom []byte) int {
	return copy(m.Mem[ProgramStart:], rom)
}

// Pixel byte values as stored in the framebuffer. Every byte of a
// pixel's RGB triplet holds the same value; anything else means the
// drawing logic has corrupted the buffer.
const (
	pixelOff = 0x00
	pixelOn  = 0xff
)

// Pixel reports the state of the logical pixel at index: 1 for on,
// 0 for off.
func (m *Machine) Pixel(index int) byte {
	if index < 0 || index > lastPixel {
		panic(OutOfRange)
	}
	switch m.Display[index*3] {
	case pixelOn:
		return 1
	case pixelOff:
		return 0
	default:
		panic(BadPixel)
	}
}

// SetPixel sets the logical pixel at index to state (1 on, 0 off),
// mirroring the value across all three bytes of its triplet.
func (m *Machine) SetPixel(index int, state byte) {
	if index < 0 || index > lastPixel {
		panic(OutOfRange)
	}
	var v byte
	switch state {
	case 1:
		v = pixelOn
	case 0:
		v = pixelOff
	default:
		panic(BadPixel)
	}
	i := index * 3
	m.Display[i] = v
	m.Display[i+1] = v
	m.Display[i+2] = v
}

// xorPixel blends state onto the pixel at index: a pixel receiving its
// own state turns off, any other combination turns it on. This is the
// machine's drawing rule, not a bitwise XOR of the two states.
func (m *Machine) xorPixel(index int, state byte) {
	if m.Pixel(index) == state {
		m.SetPixel(index, 0)
	} else {
		m.SetPixel(index, 1)
	}
}

// keypadLayout maps the host keyboard to the hex keypad, preserving the
// historical 4x4 arrangement:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var keypadLayout = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// UpdateKeypad records a host key press or release. Keys outside the
// keypad layout are ignored.
func (m *Machine) UpdateKeypad(key rune, down bool) {
	if k, ok := keypadLayout[key]; ok {
		m.Keys[k] = down
	}
}
