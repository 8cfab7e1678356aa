package mappers

import "github.com/kjbrown/nescore/nesrom"

// mapper3 implements CNROM: fixed PRG (16KiB mirrored or 32KiB) and
// a single switchable 8KiB CHR bank latched by any write with bit
// 15 of the address set.
type mapper3 struct {
	*base

	chrSelect uint8
}

func newMapper3() Mapper {
	return &mapper3{base: newBase(3, "CNROM")}
}

func init() {
	registerMapper(3, newMapper3)
}

func (m *mapper3) init(rom *nesrom.ROM) {
	m.base.init(rom)
	if rom.NumPrgBlocks() == 1 {
		m.mapPRG(16, 0, 0)
		m.mapPRG(16, 1, 0)
	} else {
		m.mapPRG(16, 0, 0)
		m.mapPRG(16, 1, 1)
	}
	m.mapCHR(8, 0, 0)
}

func (m *mapper3) PrgRead(addr uint16) uint8 { return m.prgRead(addr) }

func (m *mapper3) PrgWrite(addr uint16, val uint8) {
	if m.prgWriteRAM(addr, val) {
		return
	}
	if addr&0x8000 != 0 {
		m.chrSelect = val & 0x03
		m.mapCHR(8, 0, int(m.chrSelect))
	}
}

func (m *mapper3) ChrRead(addr uint16) uint8 { return m.chrRead(addr) }
func (m *mapper3) ChrWrite(addr uint16, val uint8) {
	m.chrWrite(addr, val)
}
