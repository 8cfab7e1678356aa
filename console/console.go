// Package console wires the CPU, PPU, controller ports and cartridge
// mapper together into a single NES, and hosts it as an ebiten.Game.
package console

import (
	"math"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/kjbrown/nescore/mappers"
	"github.com/kjbrown/nescore/mos6502"
	"github.com/kjbrown/nescore/ppu"
)

const (
	NES_BASE_MEMORY = 0x800 // 2KiB built-in work RAM

	MAX_ADDRESS          = math.MaxUint16
	MAX_NES_BASE_RAM     = 0x1FFF
	MAX_PPU_REG_MIRRORED = 0x3FFF
	MAX_IO_REG           = 0x4020
	MAX_SRAM             = 0x6000
)

const (
	OAMDMA = 0x4014 // Triggers DMA from CPU memory to OAM
	JOY1   = 0x4016
	JOY2   = 0x4017

	DOTS_PER_SCANLINE   = 341
	SCANLINES_PER_FRAME = 262
)

// Console is the parent NES object: it owns the CPU, PPU, cartridge
// mapper and controller port, and satisfies both mos6502.Bus and
// ppu.Bus so those packages never need to know about each other
// directly.
type Console struct {
	cpu    *mos6502.CPU
	ppu    *ppu.PPU
	mapper mappers.Mapper
	ram    [NES_BASE_MEMORY]uint8

	controller1 controller

	cycles uint64 // total CPU cycles elapsed, for OAM DMA's odd/even stall
	paused bool
}

// New returns a Console wired up for the given cartridge mapper and
// powers on the CPU and PPU.
func New(m mappers.Mapper) *Console {
	c := &Console{mapper: m}

	c.cpu = mos6502.New(c)
	c.ppu = ppu.New(c)

	w, h := ppu.NES_RES_WIDTH, ppu.NES_RES_HEIGHT
	ebiten.SetWindowSize(w*2, h*2) // Start with 2x the screen size
	ebiten.SetWindowTitle("nescore")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	glog.Infof("console: powered on with mapper %s", m.Name())

	return c
}

// SetNesTestMode forces the CPU to start execution at $C000 (rather
// than the reset vector) and resets it, matching how the nestest
// automation ROM expects to be driven.
func (c *Console) SetNesTestMode(on bool) {
	c.cpu.SetNesTestMode(on)
	c.cpu.Reset()
}

// CPU exposes the underlying processor, for tooling that wants to
// inspect registers directly (tests, a future debugger).
func (c *Console) CPU() *mos6502.CPU { return c.cpu }

// TriggerNMI is called by the PPU, through the ppu.Bus interface,
// when it enters vertical blank with NMI generation enabled.
func (c *Console) TriggerNMI() {
	c.cpu.RequestNMI()
}

// ChrRead and ChrWrite give the PPU access to the cartridge's pattern
// tables (CHR-ROM or CHR-RAM, depending on the board).
func (c *Console) ChrRead(addr uint16) uint8 {
	return c.mapper.ChrRead(addr)
}

func (c *Console) ChrWrite(addr uint16, val uint8) {
	c.mapper.ChrWrite(addr, val)
}

// MirroringMode reports the cartridge's current nametable mirroring,
// which some mappers change at runtime (e.g. MMC1, MMC3).
func (c *Console) MirroringMode() uint8 {
	return c.mapper.MirroringMode()
}

// SignalScanline is called by the PPU once per visible scanline while
// rendering is enabled. Only mapper 4 (MMC3) reacts; the resulting
// IRQ state is latched onto the CPU's IRQ line immediately, since the
// mapper itself only tracks whether it's asserting, not how to tell
// the CPU.
func (c *Console) SignalScanline() {
	c.mapper.SignalScanline()
	c.cpu.SetIRQLine(c.mapper.IRQPending(false))
}

// Layout returns the constant resolution of the NES and is part of
// the ebiten.Game interface. By returning constants here, we force
// ebiten to scale the display when the window size changes.
func (c *Console) Layout(w, h int) (int, int) {
	return ppu.NES_RES_WIDTH, ppu.NES_RES_HEIGHT
}

// Draw copies the PPU's completed frame buffer to the ebiten screen.
func (c *Console) Draw(screen *ebiten.Image) {
	screen.WritePixels(c.ppu.Frame().Pix)
}

// Update is ebiten's per-tick hook, called roughly every 1/60s; it
// drives one full frame of emulation.
func (c *Console) Update() error {
	if c.paused {
		return nil
	}
	c.RunFrame()
	return nil
}

// SetPaused halts (or resumes) frame scheduling; Update becomes a
// no-op while paused.
func (c *Console) SetPaused(p bool) {
	c.paused = p
}

// RunFrame advances the PPU and CPU together through exactly one
// 262-scanline frame. The PPU runs every dot; the CPU, being three
// times slower, only steps every third dot, matching the NTSC NES's
// fixed 1:3 clock ratio.
func (c *Console) RunFrame() {
	for i := 0; i < DOTS_PER_SCANLINE*SCANLINES_PER_FRAME; i++ {
		c.ppu.Step()
		if i%3 == 0 {
			c.cpu.Step()
			c.cycles++
		}
	}
}

// Read implements mos6502.Bus: the full CPU address space, including
// RAM mirroring, PPU register mirroring, and the controller ports
// (OAM DMA is triggered by Write only).
func (c *Console) Read(addr uint16) uint8 {
	// https://www.nesdev.org/wiki/CPU_memory_map
	switch {
	case addr <= MAX_NES_BASE_RAM:
		// 0x800-0x1FFF mirrors 0x0000-0x07FF
		return c.ram[addr&0x7FF]
	case addr <= MAX_PPU_REG_MIRRORED:
		// PPU registers are mirrored every 8 bytes between 0x2000 and 0x4000
		return c.ppu.ReadReg(0x2000 + (addr & 0x0007))
	case addr == JOY1:
		return c.controller1.read()
	case addr == JOY2:
		// A second controller isn't wired to any input source;
		// stub it at the open-bus padding value real hardware
		// settles to once a port's shift register is exhausted.
		return 1
	case addr < MAX_IO_REG:
		// APU registers: not implemented.
		return 0
	case addr < MAX_SRAM:
		// Cartridge expansion area: no board in this core uses it.
		return 0
	case addr <= MAX_ADDRESS:
		return c.mapper.PrgRead(addr)
	}

	panic("unreachable")
}

// Write implements mos6502.Bus.
func (c *Console) Write(addr uint16, val uint8) {
	// https://www.nesdev.org/wiki/CPU_memory_map
	switch {
	case addr <= MAX_NES_BASE_RAM:
		// 0x800-0x1FFF mirrors 0x0000-0x07FF
		c.ram[addr&0x07FF] = val
	case addr <= MAX_PPU_REG_MIRRORED:
		// PPU registers are mirrored every 8 bytes between 0x2000 and 0x4000
		c.ppu.WriteReg(0x2000+(addr&0x0007), val)
	case addr == OAMDMA:
		c.doOAMDMA(val)
	case addr == JOY1:
		// $4016 strobes controller 1's shift register. $4017's
		// write side belongs to the (unimplemented) APU frame
		// counter on real hardware, not a second controller.
		c.controller1.write(val)
	case addr < MAX_IO_REG:
		// APU registers: not implemented.
	case addr < MAX_SRAM:
		// Cartridge expansion area: no board in this core uses it.
	case addr <= MAX_ADDRESS:
		c.mapper.PrgWrite(addr, val)
	}
}

// doOAMDMA performs the 256-byte copy from $XX00-$XXFF (XX = val)
// into OAM via the PPU, and stalls the CPU for the real hardware's
// 513 cycles (514 if the DMA began on an odd CPU cycle).
func (c *Console) doOAMDMA(val uint8) {
	base := uint16(val) << 8
	page := make([]uint8, 256)
	for i := range page {
		page[i] = c.Read(base + uint16(i))
	}
	c.ppu.WriteOAMDMA(page)

	stall := 513
	if c.cycles%2 != 0 {
		stall++
	}
	c.cpu.Stall(stall)
}
