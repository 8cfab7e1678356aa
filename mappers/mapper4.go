package mappers

import "github.com/kjbrown/nescore/nesrom"

// mapper4 implements MMC3: eight bank registers selected through
// $8000/$8001, a swappable PRG/CHR layout, and a scanline counter
// that asserts the CPU IRQ line when it decrements to zero while
// enabled.
type mapper4 struct {
	*base

	bankSelect uint8
	bankReg    [8]uint8
	prgRAMProtect uint8

	irqPeriod  uint8
	irqCounter uint8
	irqReload  bool
	irqEnabled bool
	irqPending bool
}

func newMapper4() Mapper {
	return &mapper4{base: newBase(4, "MMC3")}
}

func init() {
	registerMapper(4, newMapper4)
}

func (m *mapper4) init(rom *nesrom.ROM) {
	m.base.init(rom)
	m.mapPRG(8, 3, -1) // last bank always fixed to the top slot
	m.applyPRG()
	m.applyCHR()
}

func (m *mapper4) PrgRead(addr uint16) uint8 { return m.prgRead(addr) }

func (m *mapper4) PrgWrite(addr uint16, val uint8) {
	if m.prgWriteRAM(addr, val) {
		return
	}
	if addr < 0x8000 {
		return
	}

	odd := addr&1 == 1
	switch {
	case addr < 0xA000 && !odd: // $8000: bank select
		m.bankSelect = val
		m.applyPRG()
		m.applyCHR()
	case addr < 0xA000 && odd: // $8001: bank data
		m.bankReg[m.bankSelect&0x07] = val
		m.applyPRG()
		m.applyCHR()
	case addr < 0xC000 && !odd: // $A000: mirroring
		if val&1 == 0 {
			m.mirror = MirrorVertical
		} else {
			m.mirror = MirrorHorizontal
		}
	case addr < 0xC000 && odd: // $A001: PRG-RAM protect, not modeled further
		m.prgRAMProtect = val
	case addr < 0xE000 && !odd: // $C000: IRQ latch/period
		m.irqPeriod = val
	case addr < 0xE000 && odd: // $C001: IRQ reload
		m.irqCounter = 0
		m.irqReload = true
	case addr >= 0xE000 && !odd: // $E000: disable and acknowledge IRQ
		m.irqEnabled = false
		m.irqPending = false
	default: // $E001: enable IRQ
		m.irqEnabled = true
	}
}

func (m *mapper4) applyPRG() {
	mode := m.bankSelect & 0x40
	r6 := int(m.bankReg[6])
	r7 := int(m.bankReg[7])
	if mode == 0 {
		m.mapPRG(8, 0, r6)
		m.mapPRG(8, 1, r7)
		m.mapPRG(8, 2, -2)
	} else {
		m.mapPRG(8, 2, r6)
		m.mapPRG(8, 0, -2)
		m.mapPRG(8, 1, r7)
	}
	m.mapPRG(8, 3, -1)
}

func (m *mapper4) applyCHR() {
	chrMode := m.bankSelect & 0x80
	r := m.bankReg
	if chrMode == 0 {
		m.mapCHR(2, 0, int(r[0])>>1)
		m.mapCHR(2, 1, int(r[1])>>1)
		m.mapCHR(1, 4, int(r[2]))
		m.mapCHR(1, 5, int(r[3]))
		m.mapCHR(1, 6, int(r[4]))
		m.mapCHR(1, 7, int(r[5]))
	} else {
		m.mapCHR(1, 0, int(r[2]))
		m.mapCHR(1, 1, int(r[3]))
		m.mapCHR(1, 2, int(r[4]))
		m.mapCHR(1, 3, int(r[5]))
		m.mapCHR(2, 2, int(r[0])>>1)
		m.mapCHR(2, 3, int(r[1])>>1)
	}
}

func (m *mapper4) ChrRead(addr uint16) uint8 { return m.chrRead(addr) }
func (m *mapper4) ChrWrite(addr uint16, val uint8) {
	m.chrWrite(addr, val)
}

// SignalScanline is called by the PPU once per visible scanline
// (dot 260) while background or sprite rendering is enabled.
func (m *mapper4) SignalScanline() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqPeriod
		m.irqReload = false
	} else {
		m.irqCounter--
	}

	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

func (m *mapper4) IRQPending(acknowledge bool) bool {
	p := m.irqPending
	if acknowledge {
		m.irqPending = false
	}
	return p
}
