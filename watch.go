package main

import (
	"log"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
)

// watchROM swaps the ROM into the runner whenever the file changes,
// debounced so editors that write in several steps trigger one reload.
func watchROM(r *Runner, romFile string) error {
	romFile = filepath.Clean(romFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		var reload <-chan time.Time
		for {
			select {
			case <-reload:
				rom, err := loadROM(romFile)
				if err != nil {
					log.Printf("watch: %v", err)
					break
				}
				log.Printf("watch: reload %s", filepath.Base(romFile))
				r.Swap(rom)
			case ev := <-watcher.Event:
				if ev.Name == romFile && !ev.IsAttrib() {
					reload = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("watch: %v", err)
			}
		}
	}()
	return nil
}
