// Command chip8 executes CHIP-8 ROM images in a window.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/abbioro/chip8/chip8"
)

func main() {
	log.SetPrefix("chip8: ")
	log.SetFlags(0)

	var (
		cliFlag   = flag.Bool("cli", false, "run without a display window")
		debugFlag = flag.Bool("debug", false, "enable the debugger")
		watchFlag = flag.Bool("watch", false, "reload the ROM when the file changes")
		hzFlag    = flag.Int("hz", 500, "instruction rate in cycles per second")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-cli] [-debug] [-watch] <program.rom>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err := run(flag.Arg(0), !*cliFlag, *debugFlag, *watchFlag, *hzFlag)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(romFile string, gui, debug, watch bool, hz int) error {
	rom, err := loadROM(romFile)
	if err != nil {
		return err
	}

	var dbg *debugView
	var state StateFunc
	if debug {
		dbg = newDebugView()
		state = dbg.StateFunc
	}

	r := NewRunner(gui, debug || watch, hz, state)

	if dbg != nil {
		dbg.r = r
		log.SetPrefix("")
		log.SetOutput(dbg.log)
		go func() {
			if err := dbg.Run(); err != nil {
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("chip8: ")
			r.Debug("exit", 0)
		}()
	}
	if watch {
		if err := watchROM(r, romFile); err != nil {
			return err
		}
	}

	return r.Run(rom)
}

// loadROM reads a ROM image, rejecting files too large for program memory.
func loadROM(name string) ([]byte, error) {
	rom, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if len(rom) > chip8.MaxProgramSize {
		return nil, fmt.Errorf("%s: image is %d bytes, at most %d fit in memory",
			name, len(rom), chip8.MaxProgramSize)
	}
	return rom, nil
}
