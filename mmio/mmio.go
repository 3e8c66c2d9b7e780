// Package mmio is the memory-mapped register surface used by the HAL.
//
// All register access goes through a Bus so the same peripheral code runs
// against real hardware under TinyGo and against a simulated register file
// in host tests.
package mmio

// Bus performs volatile loads and stores at physical addresses.
type Bus interface {
	Load32(addr uintptr) uint32
	Store32(addr uintptr, v uint32)
	Store8(addr uintptr, v uint8)
}

// Reg is a single 32-bit register on a bus. Its method set follows
// runtime/volatile.Register32.
type Reg struct {
	bus  Bus
	addr uintptr
}

// At returns the register at addr on bus.
func At(bus Bus, addr uintptr) Reg {
	return Reg{bus: bus, addr: addr}
}

// Addr returns the physical address of the register.
func (r Reg) Addr() uintptr { return r.addr }

func (r Reg) Get() uint32 { return r.bus.Load32(r.addr) }

func (r Reg) Set(v uint32) { r.bus.Store32(r.addr, v) }

func (r Reg) SetBits(mask uint32) { r.Set(r.Get() | mask) }

func (r Reg) ClearBits(mask uint32) { r.Set(r.Get() &^ mask) }

// HasBits reports whether any bit in mask is set.
func (r Reg) HasBits(mask uint32) bool { return r.Get()&mask != 0 }

// ReplaceBits replaces the field (mask << pos) with value.
func (r Reg) ReplaceBits(value, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | (value&mask)<<pos)
}

// Field extracts the field (mask << pos).
func (r Reg) Field(mask uint32, pos uint8) uint32 {
	return (r.Get() >> pos) & mask
}

// Modify performs a read-modify-write with a single load and a single store.
func (r Reg) Modify(fn func(v uint32) uint32) {
	r.Set(fn(r.Get()))
}
