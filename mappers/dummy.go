package mappers

import (
	"math"

	"github.com/kjbrown/nescore/nesrom"
)

// dummyMapper is a flat, unbanked address space used by package
// tests that need a Mapper but don't care about banking semantics.
type dummyMapper struct {
	memory []uint8
	mm     uint8 // mirroring mode - tests can set as needed
}

func (dm *dummyMapper) ID() uint16   { return 0xFFFF }
func (dm *dummyMapper) Name() string { return "dummy mapper" }

func (dm *dummyMapper) PrgRead(addr uint16) uint8      { return dm.memory[addr] }
func (dm *dummyMapper) PrgWrite(addr uint16, val uint8) { dm.memory[addr] = val }
func (dm *dummyMapper) ChrRead(addr uint16) uint8      { return dm.memory[addr] }
func (dm *dummyMapper) ChrWrite(addr uint16, val uint8) { dm.memory[addr] = val }
func (dm *dummyMapper) MirroringMode() uint8           { return dm.mm }
func (dm *dummyMapper) SignalScanline()                {}
func (dm *dummyMapper) IRQPending(bool) bool           { return false }
func (dm *dummyMapper) init(rom *nesrom.ROM) {}

// Dummy is a shared flat-memory mapper for use by other packages'
// tests.
var Dummy *dummyMapper = &dummyMapper{memory: make([]uint8, math.MaxUint16+1)}
