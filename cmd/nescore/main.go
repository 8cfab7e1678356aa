// Command nescore runs an iNES ROM as a playable NES, using ebiten
// for video output and input polling.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/kjbrown/nescore/console"
	"github.com/kjbrown/nescore/mappers"
	"github.com/kjbrown/nescore/nesrom"
)

var romFile = flag.String("nes_rom", "", "Path to NES ROM to run.")

func main() {
	flag.Parse()
	defer glog.Flush()

	rom, err := nesrom.New(*romFile)
	if err != nil {
		glog.Fatalf("invalid ROM: %v", err)
	}

	m, err := mappers.Get(rom)
	if err != nil {
		glog.Fatalf("couldn't get mapper: %v", err)
	}

	nes := console.New(m)
	if rom.IsNesTest() {
		nes.SetNesTestMode(true)
	}

	if err := ebiten.RunGame(nes); err != nil {
		glog.Errorf("ebiten exited: %v", err)
		os.Exit(1)
	}
}
