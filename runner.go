package main

import (
	"fmt"
	"log"
	"time"

	"github.com/abbioro/chip8/chip8"
)

// StateKind describes why the Runner is reporting machine state to the
// debugger.
type StateKind int

const (
	ClearState StateKind = iota
	PauseState
	BreakState
	HaltState

	// QuietState refreshes watched values without replacing the
	// debugger's state line.
	QuietState
)

// StateFunc receives machine state from the Runner. It is called from
// the machine goroutine and must not retain m after returning.
type StateFunc func(m *chip8.Machine, k StateKind)

type keyEvent struct {
	key  rune
	down bool
}

type debugCmd struct {
	cmd  string
	addr uint16
}

// Runner drives a chip8.Machine. It owns the goroutine that steps the
// CPU, so keypad input, ROM swaps, debugger control, and framebuffer
// handoff to the GUI all pass through its channels; the machine itself
// is never touched from two goroutines.
type Runner struct {
	gui      bool
	resident bool // keep running after a fault (debug/watch mode)
	hz       int
	state    StateFunc

	keys  chan keyEvent
	swap  chan []byte
	debug chan debugCmd
}

func NewRunner(enableGUI, resident bool, hz int, state StateFunc) *Runner {
	if hz <= 0 {
		hz = 500
	}
	return &Runner{
		gui:      enableGUI,
		resident: resident,
		hz:       hz,
		state:    state,
		keys:     make(chan keyEvent),
		swap:     make(chan []byte),
		debug:    make(chan debugCmd),
	}
}

// Swap replaces the running machine with a fresh one loaded with rom.
func (r *Runner) Swap(rom []byte) { r.swap <- rom }

// Debug passes a debugger command to the machine loop.
func (r *Runner) Debug(cmd string, addr uint16) { r.debug <- debugCmd{cmd, addr} }

// Run executes rom until the machine faults, or forever in resident
// mode. If the GUI is enabled Run drives the window until exit.
func (r *Runner) Run(rom []byte) error {
	g := newGUI(r)
	exit := make(chan bool)
	go r.loop(newMachine(rom), g, exit)
	if r.gui {
		if err := g.Run(exit); err != nil {
			return fmt.Errorf("gui: %v", err)
		}
		return nil
	}
	<-exit
	return nil
}

func newMachine(rom []byte) *chip8.Machine {
	m := chip8.New()
	m.Load(rom)
	return m
}

func (r *Runner) loop(m *chip8.Machine, g *gui, exit chan bool) {
	var (
		tick   = time.NewTicker(time.Second / time.Duration(r.hz))
		paused = false
		halted = false
		brk    = -1
	)
	defer tick.Stop()

	step := func() {
		if err := m.Step(); err != nil {
			log.Printf("chip8: %v", err)
			halted = true
			r.notify(m, HaltState)
		}
	}

	for {
		select {
		case <-tick.C:
			if paused || halted {
				break
			}
			if int(m.PC) == brk {
				paused = true
				r.notify(m, BreakState)
				break
			}
			step()
			if halted && !r.resident {
				close(exit)
				return
			}

		case k := <-r.keys:
			m.UpdateKeypad(k.key, k.down)

		case rom := <-r.swap:
			m = newMachine(rom)
			halted = false
			r.notify(m, ClearState)

		case c := <-r.debug:
			switch c.cmd {
			case "pause", "p":
				paused = true
				r.notify(m, PauseState)
			case "continue", "c":
				if int(m.PC) == brk && !halted {
					step()
				}
				paused = false
				r.notify(m, ClearState)
			case "step", "s":
				if halted {
					break
				}
				step()
				if !halted {
					paused = true
					r.notify(m, PauseState)
				}
			case "break", "b":
				// Addresses beyond the 12-bit range clear the breakpoint.
				if c.addr > 0xfff {
					brk = -1
				} else {
					brk = int(c.addr)
				}
			case "exit":
				close(exit)
				return
			}

		case g.update <- m:
			<-g.updateDone
			r.notify(m, QuietState)
		}
	}
}

func (r *Runner) notify(m *chip8.Machine, k StateKind) {
	if r.state != nil {
		r.state(m, k)
	}
}
