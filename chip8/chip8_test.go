package chip8

import (
	"bytes"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	m := New()

	if m.PC != ProgramStart {
		t.Errorf("PC is %.4x, want %.4x", m.PC, ProgramStart)
	}
	if g := m.Mem[fontsetStart : fontsetStart+80]; !bytes.Equal(g, fontset[:]) {
		t.Errorf("fontset is %x, want %x", g, fontset)
	}
	if m.SP != 0 || m.I != 0 || m.Delay != 0 || m.Sound != 0 {
		t.Errorf("machine not zeroed: SP=%d I=%.4x DT=%d ST=%d", m.SP, m.I, m.Delay, m.Sound)
	}
}

func TestLoad(t *testing.T) {
	for _, c := range []struct {
		romSize, wantN int
	}{
		{0x000, 0x000},
		{0x001, 0x001},
		{0xdff, 0xdff},
		{0xe00, 0xe00},
		{0xe01, 0xe00},
		{0xfff, 0xe00},
	} {
		t.Run(fmt.Sprintf("%.3x", c.romSize), func(t *testing.T) {
			m := New()
			if n := m.Load(bytes.Repeat([]byte{1}, c.romSize)); n != c.wantN {
				t.Errorf("Load copied %d bytes, want %d", n, c.wantN)
			}
			for i := ProgramStart; i < len(m.Mem); i++ {
				w := byte(0)
				if i < ProgramStart+c.romSize {
					w = 1
				}
				if g := m.Mem[i]; g != w {
					t.Errorf("Mem[%.3x] == %.2x, want %.2x", i, g, w)
				}
			}
			// Loading must leave the fontset alone.
			if g := m.Mem[:80]; !bytes.Equal(g, fontset[:]) {
				t.Errorf("fontset is %x, want %x", g, fontset)
			}
		})
	}
}

func TestFetch(t *testing.T) {
	m := New()
	m.Mem[m.PC] = 0xD6
	m.Mem[m.PC+1] = 0x3E

	m.fetch()
	if m.Op != 0xD63E {
		t.Errorf("Op is %.4x, want d63e", uint16(m.Op))
	}
}

func TestPixel(t *testing.T) {
	m := New()

	m.SetPixel(70, 1)
	for i, b := range m.Display[70*3 : 70*3+3] {
		if b != 0xff {
			t.Errorf("display byte %d of pixel 70 is %.2x, want ff", i, b)
		}
	}
	if g := m.Pixel(70); g != 1 {
		t.Errorf("Pixel(70) = %d, want 1", g)
	}
	m.SetPixel(70, 0)
	if g := m.Pixel(70); g != 0 {
		t.Errorf("Pixel(70) = %d, want 0", g)
	}
}

func TestPixelCorrupt(t *testing.T) {
	m := New()
	m.Display[3] = 0x7f // neither on nor off

	defer func() {
		if f, ok := recover().(Fault); !ok || f != BadPixel {
			t.Errorf("recovered %v, want %v", f, BadPixel)
		}
	}()
	m.Pixel(1)
}

// TestXorPixel verifies the drawing rule's truth table: a pixel
// receiving its own state turns off, any other combination turns it on.
func TestXorPixel(t *testing.T) {
	for _, c := range []struct {
		existing, state, want byte
	}{
		{0, 0, 0},
		{1, 1, 0},
		{0, 1, 1},
		{1, 0, 1},
	} {
		t.Run(fmt.Sprintf("%d_%d", c.existing, c.state), func(t *testing.T) {
			m := New()
			m.SetPixel(9, c.existing)
			m.xorPixel(9, c.state)
			if g := m.Pixel(9); g != c.want {
				t.Errorf("pixel is %d, want %d", g, c.want)
			}
		})
	}
}

func TestUpdateKeypad(t *testing.T) {
	m := New()

	m.UpdateKeypad('a', true)
	m.UpdateKeypad('f', true)
	m.UpdateKeypad('f', false)
	m.UpdateKeypad('m', true) // not on the keypad

	if !m.Keys[0x7] {
		t.Error("key 7 is up, want down")
	}
	if m.Keys[0xE] {
		t.Error("key E is down, want up")
	}
	for k, down := range m.Keys {
		if down && k != 0x7 {
			t.Errorf("key %X is down, want up", k)
		}
	}
}

func TestTimers(t *testing.T) {
	m := New()
	m.Load([]byte{0x60, 0x00, 0x60, 0x00, 0x60, 0x00})
	m.Delay = 2
	m.Sound = 1

	for _, w := range []struct{ delay, sound byte }{
		{1, 0},
		{0, 0},
		{0, 0}, // floored, never negative
	} {
		if err := m.Step(); err != nil {
			t.Fatal(err)
		}
		if m.Delay != w.delay || m.Sound != w.sound {
			t.Errorf("timers are DT=%d ST=%d, want DT=%d ST=%d", m.Delay, m.Sound, w.delay, w.sound)
		}
	}
}
