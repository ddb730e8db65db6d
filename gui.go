package main

import (
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/abbioro/chip8/chip8"
)

const windowScale = 8

func newGUI(r *Runner) *gui {
	return &gui{
		runner:     r,
		update:     make(chan *chip8.Machine),
		updateDone: make(chan bool),
	}
}

// gui presents the machine's framebuffer in a window and feeds key
// events back to the Runner. It receives the machine on update only
// while the machine loop is parked on updateDone, which makes the
// direct field reads in copyFrame safe.
type gui struct {
	runner *Runner

	update     chan *chip8.Machine
	updateDone chan bool

	frame [chip8.DisplaySize]byte
	tone  bool
	dirty bool

	src *image.RGBA
	buf screen.Buffer
	tex screen.Texture
}

func (g *gui) Run(exit <-chan bool) error {
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Title:  "chip8",
			Width:  chip8.DisplayWidth * windowScale,
			Height: chip8.DisplayHeight * windowScale,
		})
		if err != nil {
			log.Fatal(err)
		}
		defer w.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / 60)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					w.Send(update{})
					return
				}
			}
		}()

		defer g.release()

		var sz size.Event
		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case key.Event:
				if e.Direction == key.DirNone {
					break
				}
				g.runner.keys <- keyEvent{
					key:  unicode.ToLower(e.Rune),
					down: e.Direction == key.DirPress,
				}

			case update:
				select {
				case m := <-g.update:
					g.copyFrame(m)
					g.updateDone <- true
				default:
					// machine is busy
				}
				if g.dirty {
					g.paint(s, w, sz)
					g.dirty = false
				}

			case paint.Event:

			case error:
				log.Print(e)

			default:
				format := "got %#v\n"
				if _, ok := e.(fmt.Stringer); ok {
					format = "got %v\n"
				}
				log.Printf(format, e)
			}
		}
	})
	return nil
}

func (g *gui) copyFrame(m *chip8.Machine) {
	g.frame = m.Display
	g.dirty = true

	// The sound device proper is a square-wave generator; the terminal
	// bell stands in for it at the start of each tone.
	tone := m.Sound > 0
	if tone && !g.tone {
		os.Stdout.WriteString("\a")
	}
	g.tone = tone
}

func (g *gui) paint(s screen.Screen, w screen.Window, sz size.Event) {
	if sz.WidthPx == 0 || sz.HeightPx == 0 {
		return
	}
	if g.src == nil {
		g.src = image.NewRGBA(image.Rect(0, 0, chip8.DisplayWidth, chip8.DisplayHeight))
	}
	// Expand the RGB triplets into the RGBA source image.
	for i, o := 0, 0; i < len(g.frame); i, o = i+3, o+4 {
		g.src.Pix[o] = g.frame[i]
		g.src.Pix[o+1] = g.frame[i+1]
		g.src.Pix[o+2] = g.frame[i+2]
		g.src.Pix[o+3] = 0xff
	}

	win := image.Point{sz.WidthPx, sz.HeightPx}
	if g.buf == nil || g.buf.Size() != win {
		g.release()
		var err error
		if g.buf, err = s.NewBuffer(win); err != nil {
			log.Fatalf("gui: %v", err)
		}
		if g.tex, err = s.NewTexture(win); err != nil {
			log.Fatalf("gui: %v", err)
		}
	}

	// Nearest-neighbour scaling keeps the pixel edges hard.
	xdraw.NearestNeighbor.Scale(g.buf.RGBA(), g.buf.Bounds(), g.src, g.src.Bounds(), xdraw.Src, nil)
	g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
	w.Copy(image.Point{}, g.tex, g.tex.Bounds(), draw.Src, nil)
	w.Publish()
}

func (g *gui) release() {
	if g.tex != nil {
		g.tex.Release()
		g.tex = nil
	}
	if g.buf != nil {
		g.buf.Release()
		g.buf = nil
	}
}
