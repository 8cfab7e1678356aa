// Package mos6502 implements the MOS Technologies 6502 processor
// https://en.wikipedia.org/wiki/MOS_Technology_6502
package mos6502

import (
	"errors"
	"fmt"
	"strings"
)

// 6502 Interrupt Vectors
// https://en.wikipedia.org/wiki/Interrupts_in_65xx_processors
const (
	INT_IRQ   = 0xFFFE
	INT_BRK   = INT_IRQ
	INT_RESET = 0xFFFC
	INT_NMI   = 0xFFFA
)

// 6502 Processor Status Flags
// https://www.nesdev.org/obelisk-6502-guide/registers.html
const (
	STATUS_FLAG_CARRY             = 1 << 0 // C
	STATUS_FLAG_ZERO              = 1 << 1 // Z
	STATUS_FLAG_INTERRUPT_DISABLE = 1 << 2 // I
	STATUS_FLAG_DECIMAL           = 1 << 3 // D
	STATUS_FLAG_BREAK             = 1 << 4 // B
	UNUSED_STATUS_FLAG            = 1 << 5 // This is never used but is always on
	STATUS_FLAG_OVERFLOW          = 1 << 6 // V
	STATUS_FLAG_NEGATIVE          = 1 << 7 // N
)

// How much addressable memory the CPU can see through its Bus.
const MEM_SIZE = 0x10000

var flagMap map[uint8]byte = map[uint8]byte{
	STATUS_FLAG_CARRY:             'C',
	STATUS_FLAG_ZERO:              'Z',
	STATUS_FLAG_INTERRUPT_DISABLE: 'I',
	STATUS_FLAG_DECIMAL:           'D',
	STATUS_FLAG_BREAK:             'B',
	UNUSED_STATUS_FLAG:            '-',
	STATUS_FLAG_OVERFLOW:          'V',
	STATUS_FLAG_NEGATIVE:          'N',
}

func statusString(p uint8) string {
	var sb strings.Builder

	flags := []uint8{
		STATUS_FLAG_NEGATIVE,
		STATUS_FLAG_OVERFLOW,
		UNUSED_STATUS_FLAG,
		STATUS_FLAG_BREAK,
		STATUS_FLAG_DECIMAL,
		STATUS_FLAG_INTERRUPT_DISABLE,
		STATUS_FLAG_ZERO,
		STATUS_FLAG_CARRY,
	}

	for _, f := range flags {
		if p&f > 0 {
			sb.WriteByte(flagMap[f])
		} else {
			sb.WriteByte('.')
		}
	}

	return sb.String()
}

// Bus is the address space the CPU reaches everything else in the
// console through: work RAM, PPU registers, APU/controller ports and
// cartridge PRG, all mapped into the same 16-bit space by whatever
// owns the Bus (see the console package).
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// CPU implements all of the machine state for the 6502 found in the
// NES, reaching memory exclusively through a Bus rather than owning
// RAM or cartridge access itself.
type CPU struct {
	acc    uint8  // main register
	x, y   uint8  // index registers
	status uint8  // a register for storing various status bits
	sp     uint8  // stack pointer - stack is 0x0100-0x01FF so only 8 bits needed
	pc     uint16 // the program counter
	bus    Bus
	cycles int // how many cycles to wait until next instruction

	pageCrossed bool // set by getOperandAddr for indexed/indirect-indexed modes
	nesTest     bool // force PC=$C000 on reset, for the nestest automation ROM

	nmiPending bool // latched edge, cleared once serviced
	irqLine    bool // level-triggered, held by whichever mapper is asserting it
}

func (c *CPU) String() string {
	return fmt.Sprintf("A,X,Y: %4d, %4d, %4d; PC: 0x%04x, SP: 0x%02x, P: %s; OP: %s", c.acc, c.x, c.y, c.pc, c.sp, statusString(c.status), opcodes[c.Read(c.pc)])
}

// New returns a CPU wired to bus, powered up per
// https://nesdev-wiki.nes.science/wikipages/CPU_ALL.xhtml#Power_up_state
// B is not normally visible in the register, but per docs, is set at
// startup.
func New(bus Bus) *CPU {
	c := &CPU{
		sp:     0xFD,
		bus:    bus,
		status: UNUSED_STATUS_FLAG | STATUS_FLAG_BREAK | STATUS_FLAG_INTERRUPT_DISABLE,
	}
	c.pc = c.Read16(INT_RESET)
	return c
}

// SetNesTestMode forces Reset to load PC from $C000 rather than the
// reset vector, matching how the nestest automation ROM is normally
// driven without a UI to punch in the entry point. Call Reset after
// enabling it to take effect.
func (c *CPU) SetNesTestMode(on bool) {
	c.nesTest = on
}

// RequestNMI latches a non-maskable interrupt, serviced at the next
// instruction boundary.
func (c *CPU) RequestNMI() {
	c.nmiPending = true
}

// SetIRQLine raises or lowers the (level-triggered) IRQ line. The
// mapper is the only IRQ source this core implements; the console
// sets the line from the mapper's pending-IRQ state after each
// scanline signal.
func (c *CPU) SetIRQLine(asserted bool) {
	c.irqLine = asserted
}

// IRQLine reports whether the IRQ line is currently asserted.
func (c *CPU) IRQLine() bool {
	return c.irqLine
}

// Stall idles the CPU for n cycles, as real hardware does while OAM
// DMA holds the bus.
func (c *CPU) Stall(n int) {
	c.cycles += n
}

var invalidInstruction = errors.New("invalid instruction")

func (c *CPU) getInst() (opcode, error) {
	m := c.Read(c.pc)
	op, ok := opcodes[m]
	if !ok {
		return opcode{}, fmt.Errorf("pc: %d, inst: 0x%02x - %w", c.pc, m, invalidInstruction)
	}

	return op, nil
}

// Read returns the byte from the bus at addr.
func (c *CPU) Read(addr uint16) uint8 {
	return c.bus.Read(addr)
}

// Write writes val to the bus at addr.
func (c *CPU) Write(addr uint16, val uint8) {
	c.bus.Write(addr, val)
}

// Read16 returns the two bytes from the bus at addr (lower byte is
// first).
func (c *CPU) Read16(addr uint16) uint16 {
	lsb := uint16(c.Read(addr))
	msb := uint16(c.Read(addr + 1))

	return (msb << 8) | lsb
}

func (c *CPU) Write16(addr uint16, val uint16) {
	c.Write(addr, uint8(val&0x00FF))
	c.Write(addr+1, uint8(val>>8))
}

// getOperandAddr takes a mode and returns an address for the operand
// referenced by the program counter. It assumes that the counter was
// incremented past the actual instruction itself.
func (c *CPU) getOperandAddr(mode uint8) uint16 {
	c.pageCrossed = false

	var addr uint16
	switch mode {
	case ACCUMULATOR:
		panic("ACCUMULATOR Address mode should never use this method")
	case IMPLICIT:
		panic("IMPLICIT Address mode should never use this method")
	case IMMEDIATE:
		addr = c.pc
	case ZERO_PAGE:
		addr = uint16(c.Read(c.pc))
	case ZERO_PAGE_X:
		return uint16(c.Read(c.pc) + c.x)
	case ZERO_PAGE_X_BUT_Y:
		return uint16(c.Read(c.pc) + c.y)
	case ZERO_PAGE_Y:
		return uint16(c.Read(c.pc) + c.y)
	case ABSOLUTE:
		return c.Read16(c.pc)
	case ABSOLUTE_X:
		a := c.Read16(c.pc)
		addr = a + uint16(c.x)
		c.pageCrossed = extraCycles(a, addr) == 1
	case ABSOLUTE_Y:
		a := c.Read16(c.pc)
		addr = a + uint16(c.y)
		c.pageCrossed = extraCycles(a, addr) == 1
	case INDIRECT:
		base := c.Read16(c.pc)
		// The real 6502 fails to carry into the high byte of the
		// pointer when the low byte is $FF.
		hi := (base & 0xFF00) | ((base + 1) & 0x00FF)
		return uint16(c.Read(base)) | (uint16(c.Read(hi)) << 8)
	case INDIRECT_X:
		// The pointer is read from the zero page; its high byte
		// wraps from $FF to $00.
		zp := c.Read(c.pc) + c.x
		return uint16(c.Read(uint16(zp))) | uint16(c.Read(uint16(zp+1)))<<8
	case INDIRECT_Y:
		zp := c.Read(c.pc)
		a := uint16(c.Read(uint16(zp))) | uint16(c.Read(uint16(zp+1)))<<8
		addr = a + uint16(c.y)
		c.pageCrossed = extraCycles(a, addr) == 1
	case RELATIVE:
		// Relative from PC at time of instruction
		// execution. We advance pc as soon as we eat the byte
		// from memory to decode the instruction, so we need
		// to account for that here and step over the relative
		// argument while calculating the new target address.
		addr = (c.pc + 1) + uint16(int8(c.Read(c.pc)))
	default:
		panic("Invalid addressing mode")

	}

	return addr
}

// Reset puts the CPU through the reset sequence: SP moves back 3 (as
// if 3 bytes had been pushed, with no actual bus activity), flags are
// cleared except I and the always-on unused bit, and PC loads from
// the reset vector (or $C000, in nestest mode).
func (c *CPU) Reset() {
	c.sp -= 3
	c.status = UNUSED_STATUS_FLAG | STATUS_FLAG_INTERRUPT_DISABLE
	if c.nesTest {
		c.pc = 0xC000
	} else {
		c.pc = c.Read16(INT_RESET)
	}
}

// serviceInterrupt runs the NMI/IRQ sequence: push PC, push flags
// with B clear, set I, load PC from vector, bill 7 cycles. BRK uses
// its own opcode handler instead, since it bills its cycles through
// the instruction table like any other opcode.
func (c *CPU) serviceInterrupt(vector uint16) {
	c.pushAddress(c.pc)
	c.pushStack((c.status &^ STATUS_FLAG_BREAK) | UNUSED_STATUS_FLAG)
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
	c.pc = c.Read16(vector)
	c.cycles += 7
}

func (c *CPU) step() {
	if c.cycles > 0 {
		c.cycles -= 1
		return
	}

	if c.nmiPending {
		c.nmiPending = false
		c.serviceInterrupt(INT_NMI)
		return
	}

	if c.irqLine && c.status&STATUS_FLAG_INTERRUPT_DISABLE == 0 {
		c.serviceInterrupt(INT_IRQ)
		return
	}

	op, err := c.getInst()
	if err != nil {
		panic(err)
	}

	c.cycles += int(op.cycles)
	c.pc += 1
	opc := c.pc

	instructionTable[op.inst](c, op.mode)

	if pageCrossBonus(op.inst) && c.pageCrossed {
		c.cycles += 1
	}

	// If we didn't branch, move the PC beyond the full width of
	// the instruction. We consumed the first byte for the
	// instruction code, so only skip over the remaining argument
	// bytes.
	if c.pc == opc {
		c.pc += uint16(op.bytes) - 1
	}
}

// Step advances the CPU by one clock cycle: either it's idle finishing
// out a prior instruction's cycle budget, or an interrupt is serviced,
// or the next instruction is fetched and executed.
func (c *CPU) Step() {
	c.step()
}

// setNegativeAndZeroFlags sets the STATUS_FLAG_NEGATIVE and
// STATUS_FLAG_ZERO bits of the status register accordingly for the
// value specified in n.
func (c *CPU) setNegativeAndZeroFlags(n uint8) {
	if n == 0 {
		c.flagsOn(STATUS_FLAG_ZERO)
	} else {
		c.flagsOff(STATUS_FLAG_ZERO)
	}

	if n&0b1000_0000 != 0 {
		c.flagsOn(STATUS_FLAG_NEGATIVE)
	} else {
		c.flagsOff(STATUS_FLAG_NEGATIVE)
	}
}

func (c *CPU) getStackAddr() uint16 {
	return STACK_PAGE + uint16(c.sp)
}

// StackAddr returns the current top-of-stack address, for tests and
// debugging.
func (c *CPU) StackAddr() uint16 {
	return c.getStackAddr()
}

// memRange returns a slice of bus contents from low to high inclusive.
// Mostly useful for debugging.
func (c *CPU) memRange(low, high uint16) []uint8 {
	ret := make([]uint8, 0, high-low+1)
	for i := low; i <= high; i += 1 {
		ret = append(ret, c.Read(uint16(i)))
	}

	return ret
}

// LoadMem writes data into the bus starting at addr, e.g. for loading
// a test binary image.
func (c *CPU) LoadMem(addr uint16, data []byte) {
	for i, b := range data {
		c.Write(addr+uint16(i), b)
	}
}

// PC returns the current program counter.
func (c *CPU) PC() uint16 {
	return c.pc
}

// SetPC forces the program counter to addr.
func (c *CPU) SetPC(addr uint16) {
	c.pc = addr
}

// encodeBCD packs a decimal value 0-99 into its binary-coded-decimal
// byte representation.
func encodeBCD(decimal uint8) uint8 {
	return ((decimal / 10) << 4) | (decimal % 10)
}

// decodeBCD unpacks a binary-coded-decimal byte into its decimal
// value 0-99.
func decodeBCD(bcd uint8) uint8 {
	return (bcd>>4)*10 + (bcd & 0x0F)
}

func (c *CPU) pushStack(val uint8) {
	c.Write(c.getStackAddr(), val)
	c.sp -= 1
}

func (c *CPU) popStack() uint8 {
	c.sp += 1
	return c.Read(c.getStackAddr())
}

func (c *CPU) pushAddress(addr uint16) {
	c.pushStack(uint8(addr >> 8))     // high
	c.pushStack(uint8(addr & 0x00FF)) // low
}

func (c *CPU) popAddress() uint16 {
	return uint16(c.popStack()) | (uint16(c.popStack()) << 8)
}

// flagsOn forces the flags in mask (STATUS_FLAG_XXX|STATUS_FLAG_YYY)
// on in the status register.
func (c *CPU) flagsOn(mask uint8) {
	c.status = c.status | mask
}

// flagsOff forces the flags in mask (STATUS_FLAG_XXX|STATUS_FLAG_YYY)
// off in the status register.
func (c *CPU) flagsOff(mask uint8) {
	c.status = c.status &^ mask
}

// extraCycles returns 0 if addr1 and add2 are in the same page, 1
// otherwise. This is useful for instructions that take a variable
// number of cycles, depending on whether or not a page boundary is
// crossed.
func extraCycles(addr1, addr2 uint16) uint8 {
	if addr1&0xFF00 != addr2&0xFF00 {
		return 1
	}
	return 0
}

// branch will adjust the PC conditionally based on whether the mask
// bits are set and the resulting comparison is expected to be true or
// false. This allows you to check for STATUS_FLAG being set or
// cleared by: branch(STATUS_FLAG_OVERFLOW, false) -> branch
// when OVERFLOW not set.
func (c *CPU) branch(mask uint8, predicate bool) {
	if (c.status&mask > 0) == predicate {
		a := c.getOperandAddr(RELATIVE)
		// Branching instructions take an extra cycle if they
		// cause a page break pc-1 because we increment it
		// right after reading the op, but that's where we
		// branch from so that's where we compare for page
		// break
		c.cycles += int(extraCycles(a, c.pc-1))
		c.cycles += 1 // successful branches take an extra cycle
		c.pc = a
	}
}

// addWithOverflow adds b to c.acc handling overflow, carry and ZN
// flag setting as appropriate.
func (c *CPU) addWithOverflow(b uint8) {
	res16 := uint16(c.acc) + uint16(b) + uint16(c.status&STATUS_FLAG_CARRY)
	res := uint8(res16)

	var mask uint8
	if (res16 & 0x100) != 0 {
		mask = mask | STATUS_FLAG_CARRY
	}
	if (c.acc^res)&(b^res)&0x80 != 0 {
		mask = mask | STATUS_FLAG_OVERFLOW
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_OVERFLOW | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.flagsOn(mask)

	c.acc = res
	c.setNegativeAndZeroFlags(c.acc)
}

// baseCMP does comparison operations on a and b, setting flags
// accordingly.
func (c *CPU) baseCMP(a, b uint8) {
	c.setNegativeAndZeroFlags(a - b)
	if a >= b {
		c.flagsOn(STATUS_FLAG_CARRY)
	} else {
		c.flagsOff(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) ADC(mode uint8) {
	v := c.Read(c.getOperandAddr(mode))
	if c.status&STATUS_FLAG_DECIMAL != 0 {
		c.decimalAdd(v)
		return
	}
	c.addWithOverflow(v)
}

// decimalAdd performs BCD addition for ADC when the decimal flag is
// set. The NES's 2A03 has decimal mode wired off, but this core isn't
// NES-specific at the CPU level, so it's implemented for parity with
// a real 6502.
func (c *CPU) decimalAdd(b uint8) {
	sum := int(decodeBCD(c.acc)) + int(decodeBCD(b)) + int(c.status&STATUS_FLAG_CARRY)

	var carry uint8
	if sum > 99 {
		sum -= 100
		carry = STATUS_FLAG_CARRY
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_OVERFLOW | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.flagsOn(carry)
	c.acc = encodeBCD(uint8(sum))
	c.setNegativeAndZeroFlags(c.acc)
}

// decimalSub performs BCD subtraction for SBC when the decimal flag
// is set.
func (c *CPU) decimalSub(b uint8) {
	borrowIn := 1 - int(c.status&STATUS_FLAG_CARRY)
	diff := int(decodeBCD(c.acc)) - int(decodeBCD(b)) - borrowIn

	carry := uint8(STATUS_FLAG_CARRY)
	if diff < 0 {
		diff += 100
		carry = 0
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_OVERFLOW | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.flagsOn(carry)
	c.acc = encodeBCD(uint8(diff))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) AND(mode uint8) {
	c.acc = c.acc & c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) ASL(mode uint8) {
	var ov, nv uint8 // old value, new value
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = c.acc << 1
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		nv = ov << 1
		c.Write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) BCC(mode uint8) {
	c.branch(STATUS_FLAG_CARRY, false)
}

func (c *CPU) BCS(mode uint8) {
	c.branch(STATUS_FLAG_CARRY, true)
}

func (c *CPU) BEQ(mode uint8) {
	c.branch(STATUS_FLAG_ZERO, true)
}

func (c *CPU) BIT(mode uint8) {
	o := c.Read(c.getOperandAddr(mode))

	c.flagsOff(STATUS_FLAG_NEGATIVE | STATUS_FLAG_OVERFLOW | STATUS_FLAG_ZERO)
	var flags uint8
	if (o & c.acc) == 0 {
		flags = flags | STATUS_FLAG_ZERO
	}
	flags = flags | (o & (STATUS_FLAG_NEGATIVE | STATUS_FLAG_OVERFLOW))

	c.flagsOn(flags)
}

func (c *CPU) BMI(mode uint8) {
	c.branch(STATUS_FLAG_NEGATIVE, true)
}

func (c *CPU) BNE(mode uint8) {
	c.branch(STATUS_FLAG_ZERO, false)
}

func (c *CPU) BPL(mode uint8) {
	c.branch(STATUS_FLAG_NEGATIVE, false)
}

func (c *CPU) BRK(mode uint8) {
	// BRK is 2 bytes
	c.pushAddress(c.pc + 1)
	c.pushStack(c.status | STATUS_FLAG_BREAK)
	c.pc = c.Read16(INT_BRK)
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) BVC(mode uint8) {
	c.branch(STATUS_FLAG_OVERFLOW, false)
}

func (c *CPU) BVS(mode uint8) {
	c.branch(STATUS_FLAG_OVERFLOW, true)
}

func (c *CPU) CLC(mode uint8) {
	c.flagsOff(STATUS_FLAG_CARRY)
}

func (c *CPU) CLD(mode uint8) {
	c.flagsOff(STATUS_FLAG_DECIMAL)
}

func (c *CPU) CLI(mode uint8) {
	c.flagsOff(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) CLV(mode uint8) {
	c.flagsOff(STATUS_FLAG_OVERFLOW)
}

func (c *CPU) CMP(mode uint8) {
	c.baseCMP(c.acc, c.Read(c.getOperandAddr(mode)))
}

func (c *CPU) CPX(mode uint8) {
	c.baseCMP(c.x, c.Read(c.getOperandAddr(mode)))
}

func (c *CPU) CPY(mode uint8) {
	c.baseCMP(c.y, c.Read(c.getOperandAddr(mode)))
}

func (c *CPU) DEC(mode uint8) {
	a := c.getOperandAddr(mode)
	c.Write(a, c.Read(a)-1)
	c.setNegativeAndZeroFlags(c.Read(a))
}

func (c *CPU) DEX(mode uint8) {
	c.x -= 1
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) DEY(mode uint8) {
	c.y -= 1
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) EOR(mode uint8) {
	c.acc = c.acc ^ c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) INC(mode uint8) {
	a := c.getOperandAddr(mode)
	c.Write(a, c.Read(a)+1)
	c.setNegativeAndZeroFlags(c.Read(a))
}

func (c *CPU) INX(mode uint8) {
	c.x += 1
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) INY(mode uint8) {
	c.y += 1
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) JMP(mode uint8) {
	c.pc = c.getOperandAddr(mode)
}

func (c *CPU) JSR(mode uint8) {
	c.pushAddress(c.pc + 1) // this is the second byte of the JSR argument
	c.pc = c.getOperandAddr(mode)
}

func (c *CPU) LDA(mode uint8) {
	c.acc = c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) LDX(mode uint8) {
	c.x = c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) LDY(mode uint8) {
	c.y = c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) LSR(mode uint8) {
	var ov, nv uint8
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = c.acc >> 1
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		nv = ov >> 1
		c.Write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&STATUS_FLAG_CARRY != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}

}

func (c *CPU) NOP(mode uint8) {
	if mode != IMPLICIT {
		// IGN/SKB: still perform the addressing-mode read (for the
		// page-cross cycle and open-bus side effects) but discard it.
		c.Read(c.getOperandAddr(mode))
	}
}

func (c *CPU) ORA(mode uint8) {
	c.acc = c.acc | c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) PHA(mode uint8) {
	c.pushStack(c.acc)
}

func (c *CPU) PHP(mode uint8) {
	// 6502 always sets BREAK when pushing the status register to
	// the stack
	c.pushStack(c.status | STATUS_FLAG_BREAK)
}

func (c *CPU) PLA(mode uint8) {
	c.acc = c.popStack()
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) PLP(mode uint8) {
	c.status = c.popStack() & ^uint8(STATUS_FLAG_BREAK)
}

func (c *CPU) ROL(mode uint8) {
	var ov, nv uint8 // old value, new value
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = ov<<1 | (c.status & STATUS_FLAG_CARRY)
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		c.Write(addr, ov<<1|(c.status&STATUS_FLAG_CARRY))
		nv = c.Read(addr)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) ROR(mode uint8) {
	var ov, nv uint8 // old value, new value
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = ov>>1 | ((c.status & STATUS_FLAG_CARRY) << 7)
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		c.Write(addr, ov>>1|((c.status&STATUS_FLAG_CARRY)<<7))
		nv = c.Read(addr)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&STATUS_FLAG_CARRY != 0 { // was carry bit set in the old _value_?
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) RTI(mode uint8) {
	// Bits 4 (B) and 5 (unused) are not restored from the stack.
	keep := c.status & (STATUS_FLAG_BREAK | UNUSED_STATUS_FLAG)
	c.status = (c.popStack() &^ (STATUS_FLAG_BREAK | UNUSED_STATUS_FLAG)) | keep
	c.pc = c.popAddress()
}

func (c *CPU) RTS(mode uint8) {
	c.pc = c.popAddress() + 1
}

func (c *CPU) SBC(mode uint8) {
	v := c.Read(c.getOperandAddr(mode))
	if c.status&STATUS_FLAG_DECIMAL != 0 {
		c.decimalSub(v)
		return
	}
	c.addWithOverflow(^v)
}

func (c *CPU) SEC(mode uint8) {
	c.flagsOn(STATUS_FLAG_CARRY)
}

func (c *CPU) SED(mode uint8) {
	c.flagsOn(STATUS_FLAG_DECIMAL)
}

func (c *CPU) SEI(mode uint8) {
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) STA(mode uint8) {
	c.Write(c.getOperandAddr(mode), c.acc)
}

func (c *CPU) STX(mode uint8) {
	c.Write(c.getOperandAddr(mode), c.x)
}

func (c *CPU) STY(mode uint8) {
	c.Write(c.getOperandAddr(mode), c.y)
}

func (c *CPU) TAX(mode uint8) {
	c.x = c.acc
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) TAY(mode uint8) {
	c.y = c.acc
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) TSX(mode uint8) {
	c.x = c.sp
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) TXA(mode uint8) {
	c.acc = c.x
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) TXS(mode uint8) {
	c.sp = c.x
}

func (c *CPU) TYA(mode uint8) {
	c.acc = c.y
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) LAX(mode uint8) {
	v := c.Read(c.getOperandAddr(mode))
	c.acc = v
	c.x = v
	c.setNegativeAndZeroFlags(v)
}

func (c *CPU) SAX(mode uint8) {
	c.Write(c.getOperandAddr(mode), c.acc&c.x)
}

func (c *CPU) DCP(mode uint8) {
	addr := c.getOperandAddr(mode)
	v := c.Read(addr) - 1
	c.Write(addr, v)
	c.baseCMP(c.acc, v)
}

func (c *CPU) ISC(mode uint8) {
	addr := c.getOperandAddr(mode)
	v := c.Read(addr) + 1
	c.Write(addr, v)
	c.addWithOverflow(^v)
}

func (c *CPU) RLA(mode uint8) {
	addr := c.getOperandAddr(mode)
	ov := c.Read(addr)
	nv := ov<<1 | (c.status & STATUS_FLAG_CARRY)
	c.Write(addr, nv)

	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.acc &= nv
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) RRA(mode uint8) {
	addr := c.getOperandAddr(mode)
	ov := c.Read(addr)
	nv := ov>>1 | ((c.status & STATUS_FLAG_CARRY) << 7)
	c.Write(addr, nv)

	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&STATUS_FLAG_CARRY != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.addWithOverflow(nv)
}

func (c *CPU) SLO(mode uint8) {
	addr := c.getOperandAddr(mode)
	ov := c.Read(addr)
	nv := ov << 1
	c.Write(addr, nv)

	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.acc |= nv
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) SRE(mode uint8) {
	addr := c.getOperandAddr(mode)
	ov := c.Read(addr)
	nv := ov >> 1
	c.Write(addr, nv)

	c.flagsOff(STATUS_FLAG_CARRY)
	if ov&STATUS_FLAG_CARRY != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
	c.acc ^= nv
	c.setNegativeAndZeroFlags(c.acc)
}
