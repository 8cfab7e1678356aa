package mappers

import "github.com/kjbrown/nescore/nesrom"

// mapper0 implements NROM: a fixed 32KiB PRG window and a fixed
// 8KiB CHR window, no bank registers at all.
type mapper0 struct {
	*base
}

func newMapper0() Mapper {
	return &mapper0{base: newBase(0, "NROM")}
}

func init() {
	registerMapper(0, newMapper0)
}

func (m *mapper0) init(rom *nesrom.ROM) {
	m.base.init(rom)
	m.mapPRG(32, 0, 0)
	m.mapCHR(8, 0, 0)
}

func (m *mapper0) PrgRead(addr uint16) uint8 { return m.prgRead(addr) }

// PrgWrite is a no-op for PRG-ROM; the shared $6000-$7FFF PRG-RAM
// window still accepts writes.
func (m *mapper0) PrgWrite(addr uint16, val uint8) {
	m.prgWriteRAM(addr, val)
}

func (m *mapper0) ChrRead(addr uint16) uint8 { return m.chrRead(addr) }
func (m *mapper0) ChrWrite(addr uint16, val uint8) {
	m.chrWrite(addr, val)
}
