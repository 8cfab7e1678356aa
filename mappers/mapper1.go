package mappers

import (
	"github.com/golang/glog"

	"github.com/kjbrown/nescore/nesrom"
)

// mapper1 implements MMC1: a 5-bit serial shift register loaded one
// bit per write, with the fifth write selecting the destination
// register by bits 13-14 of the write address.
type mapper1 struct {
	*base

	shift    uint8
	shiftN   uint8
	control  uint8
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8
}

func newMapper1() Mapper {
	return &mapper1{base: newBase(1, "MMC1")}
}

func init() {
	registerMapper(1, newMapper1)
}

func (m *mapper1) init(rom *nesrom.ROM) {
	m.base.init(rom)
	m.control = 0x0C // power-on: PRG mode 3 (fixed-last), 8KiB CHR mode
	m.applyPRG()
	m.applyCHR()
}

func (m *mapper1) PrgRead(addr uint16) uint8 { return m.prgRead(addr) }

func (m *mapper1) PrgWrite(addr uint16, val uint8) {
	if m.prgWriteRAM(addr, val) {
		return
	}
	if addr < 0x8000 {
		return
	}

	if val&0x80 != 0 {
		m.shift, m.shiftN = 0, 0
		m.control |= 0x0C
		m.applyPRG()
		return
	}

	m.shift |= (val & 1) << m.shiftN
	m.shiftN++
	if m.shiftN < 5 {
		return
	}

	reg := (addr >> 13) & 0b11
	data := m.shift
	m.shift, m.shiftN = 0, 0

	switch reg {
	case 0: // $8000-$9FFF: control
		m.control = data
		switch data & 0x03 {
		case 0, 1:
			glog.Errorf("mapper1: single-screen mirroring (%d) not supported, keeping mirroring %d", data&0x03, m.mirror)
		case 2:
			m.mirror = MirrorVertical
		case 3:
			m.mirror = MirrorHorizontal
		}
	case 1: // $A000-$BFFF: CHR bank 0
		m.chrBank0 = data
	case 2: // $C000-$DFFF: CHR bank 1
		m.chrBank1 = data
	case 3: // $E000-$FFFF: PRG bank
		m.prgBank = data & 0x0F
	}

	m.applyPRG()
	m.applyCHR()
}

func (m *mapper1) applyPRG() {
	switch (m.control >> 2) & 0x03 {
	case 0, 1: // 32KiB switchable mode, ignoring the low bank bit
		m.mapPRG(32, 0, int(m.prgBank>>1))
	case 2: // fixed first bank, switchable last
		m.mapPRG(16, 0, 0)
		m.mapPRG(16, 1, int(m.prgBank))
	case 3: // switchable first bank, fixed last
		m.mapPRG(16, 0, int(m.prgBank))
		m.mapPRG(16, 1, -1)
	}
}

func (m *mapper1) applyCHR() {
	if m.control&0x10 == 0 {
		m.mapCHR(8, 0, int(m.chrBank0>>1))
		return
	}
	m.mapCHR(4, 0, int(m.chrBank0))
	m.mapCHR(4, 1, int(m.chrBank1))
}

func (m *mapper1) ChrRead(addr uint16) uint8 { return m.chrRead(addr) }
func (m *mapper1) ChrWrite(addr uint16, val uint8) {
	m.chrWrite(addr, val)
}
