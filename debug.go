package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/abbioro/chip8/chip8"
)

// debugView is a terminal debugger: a log pane, a pane of watched
// memory addresses, a machine state line, and a command input.
//
// Commands:
//
//	p | pause       stop the machine
//	c | continue    resume it
//	s | step        execute one instruction
//	b [addr]        set (or, with no address, clear) the breakpoint
//	w addr          watch a memory byte
//	exit            quit the debugger
//
// Addresses are hex.
type debugView struct {
	r *Runner

	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	brk *uint16

	mu      sync.Mutex
	watches []uint16
}

func newDebugView() *debugView {
	d := &debugView{
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 4, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := d.input.GetText()
		if line == "" {
			return
		}
		d.input.SetText("")
		d.command(line)
	})
	return d
}

func (d *debugView) command(line string) {
	if line == "exit" {
		d.app.Stop()
		return
	}
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "p", "pause", "c", "continue", "s", "step":
		d.r.Debug(cmd, 0)

	case "b", "break":
		if arg == "" {
			d.mu.Lock()
			d.brk = nil
			d.mu.Unlock()
			d.r.Debug("break", 0xffff)
			log.Print("cleared break")
			return
		}
		addr, ok := parseAddr(arg)
		if !ok {
			log.Printf("invalid addr %q", arg)
			return
		}
		d.mu.Lock()
		d.brk = &addr
		d.mu.Unlock()
		d.r.Debug("break", addr)
		log.Printf("set break %.4x", addr)

	case "w", "watch":
		addr, ok := parseAddr(arg)
		if !ok {
			log.Printf("invalid addr %q", arg)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches, addr)
		d.mu.Unlock()
		log.Printf("watching %.4x", addr)

	default:
		log.Printf("unknown command %q", line)
	}
}

func parseAddr(s string) (uint16, bool) {
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil || n > 0xfff {
		return 0, false
	}
	return uint16(n), true
}

func (d *debugView) Run() error { return d.app.Run() }

// StateFunc is handed to the Runner; it runs on the machine goroutine.
func (d *debugView) StateFunc(m *chip8.Machine, k StateKind) {
	var (
		watch = d.watchContent(m)
		state string
	)
	if k != ClearState && k != QuietState {
		state = stateMsg(m, k)
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case PauseState, ClearState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		if k != QuietState {
			d.state.SetText(state)
		}
	})
}

func stateMsg(m *chip8.Machine, k StateKind) string {
	kind := "       "
	switch k {
	case BreakState:
		kind = "[break]"
	case PauseState:
		kind = "[pause]"
	case HaltState:
		kind = "[HALT!]"
	}

	var next chip8.Opcode
	if int(m.PC)+1 < len(m.Mem) {
		next = chip8.Opcode(m.Mem[m.PC])<<8 | chip8.Opcode(m.Mem[m.PC+1])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%.4x %-14s %s i=%.4x dt=%.2x st=%.2x\n",
		m.PC, next, kind, m.I, m.Delay, m.Sound)
	for i, v := range m.V {
		if i == 8 {
			b.WriteByte('\n')
		} else if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "V%X=%.2x", i, v)
	}
	b.WriteString("\nstack:")
	for _, a := range m.Stack[:m.SP] {
		fmt.Fprintf(&b, " %.4x", a)
	}
	b.WriteString("  keys:")
	for i, down := range m.Keys {
		if down {
			fmt.Fprintf(&b, " %X", i)
		}
	}
	return b.String()
}

func (d *debugView) watchContent(m *chip8.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	if a := d.brk; a != nil {
		fmt.Fprintf(&b, "[%.4x] brk!\n", *a)
	}
	for _, addr := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%.4x] %.2x", addr, m.Mem[addr])
	}
	return b.String()
}
