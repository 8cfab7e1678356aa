// Package mappers implements the cartridge bank-switching logic
// referenced numerically by the iNES header's mapper field.
package mappers

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/kjbrown/nescore/nesrom"
)

// A global registry of mappers, keyed by mapper id.
var allMappers map[uint16]func() Mapper = map[uint16]func() Mapper{}

func registerMapper(id uint16, factory func() Mapper) {
	if _, ok := allMappers[id]; ok {
		panic(fmt.Sprintf("can't re-register mapper id %d", id))
	}
	allMappers[id] = factory
}

// Get returns a freshly initialized mapper for rom, or an error if
// the ROM names a mapper id this core doesn't implement.
func Get(rom *nesrom.ROM) (Mapper, error) {
	id := rom.MapperNum()
	factory, ok := allMappers[id]
	if !ok {
		return nil, fmt.Errorf("mapper %d not supported", id)
	}

	m := factory()
	m.init(rom)
	glog.Infof("mapper: loaded %s (id %d), mirroring=%d", m.Name(), id, m.MirroringMode())
	return m, nil
}

const (
	MirrorHorizontal uint8 = iota
	MirrorVertical
	MirrorFourScreen
	MirrorSingleLow
	MirrorSingleHigh
)

// Mapper is satisfied by every cartridge bank-switching scheme this
// core implements. PRG addresses are the full CPU address
// ($6000-$FFFF); CHR addresses are the full PPU pattern-table range
// ($0000-$1FFF).
type Mapper interface {
	ID() uint16
	Name() string
	PrgRead(addr uint16) uint8
	PrgWrite(addr uint16, val uint8)
	ChrRead(addr uint16) uint8
	ChrWrite(addr uint16, val uint8)
	MirroringMode() uint8
	// SignalScanline is called by the PPU once per visible
	// scanline while rendering is enabled; only mapper 4 reacts.
	SignalScanline()
	// IRQPending reports whether the mapper currently asserts
	// the CPU's IRQ line, and clears it if acknowledge is true.
	IRQPending(acknowledge bool) bool

	init(rom *nesrom.ROM)
}

// base holds the machinery common to every mapper: the PRG/CHR
// backing arrays, the 4x8KiB / 8x1KiB bank index tables, and
// optional PRG-RAM.
type base struct {
	id      uint16
	name    string
	rom     *nesrom.ROM
	prg     []byte
	chr     []byte
	chrIsRAM bool
	prgRAM  []byte
	prgMap  [4]int // 8KiB slots covering $8000-$FFFF
	chrMap  [8]int // 1KiB slots covering $0000-$1FFF
	mirror  uint8
}

func newBase(id uint16, name string) *base {
	return &base{id: id, name: name}
}

func (b *base) init(rom *nesrom.ROM) {
	b.rom = rom
	b.prg = rom.PrgBytes()
	b.chr = rom.ChrBytes()
	b.chrIsRAM = rom.ChrIsRAM()
	b.prgRAM = make([]byte, 0x2000)
	b.mirror = rom.MirroringMode()
}

func (b *base) ID() uint16   { return b.id }
func (b *base) Name() string { return b.name }

func (b *base) MirroringMode() uint8 { return b.mirror }

func (b *base) SignalScanline()                 {}
func (b *base) IRQPending(acknowledge bool) bool { return false }

// mapPRG assigns page_kb*1024-byte bank `bank` (negative counts
// from the end of PRG) to page-sized slot `slot`, which covers the
// pageKB/8 consecutive 8KiB entries of prgMap starting at
// slot*pageKB/8.
func (b *base) mapPRG(pageKB int, slot int, bank int) {
	size := len(b.prg)
	if bank < 0 {
		bank = size/(1024*pageKB) + bank
	}
	for i := 0; i < pageKB/8; i++ {
		b.prgMap[(pageKB/8)*slot+i] = (pageKB*1024*bank + 0x2000*i) % size
	}
}

// mapCHR assigns page_kb*1024-byte bank `bank` to page-sized slot
// `slot`, which covers the pageKB consecutive 1KiB entries of chrMap
// starting at slot*pageKB.
func (b *base) mapCHR(pageKB int, slot int, bank int) {
	size := len(b.chr)
	if size == 0 {
		return
	}
	if bank < 0 {
		bank = size/(1024*pageKB) + bank
	}
	for i := 0; i < pageKB; i++ {
		b.chrMap[pageKB*slot+i] = (pageKB*1024*bank + 0x400*i) % size
	}
}

func (b *base) prgRead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return b.prgRAM[addr-0x6000]
	case addr >= 0x8000:
		off := addr - 0x8000
		return b.prg[b.prgMap[off/0x2000]+int(off%0x2000)]
	}
	return 0
}

func (b *base) prgWriteRAM(addr uint16, val uint8) bool {
	if addr >= 0x6000 && addr < 0x8000 {
		b.prgRAM[addr-0x6000] = val
		return true
	}
	return false
}

func (b *base) chrRead(addr uint16) uint8 {
	return b.chr[b.chrMap[addr/0x400]+int(addr%0x400)]
}

func (b *base) chrWrite(addr uint16, val uint8) {
	if b.chrIsRAM {
		b.chr[b.chrMap[addr/0x400]+int(addr%0x400)] = val
	}
}
