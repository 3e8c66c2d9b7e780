//go:build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// direct accesses physical memory.
type direct struct{}

func (direct) Load32(addr uintptr) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

func (direct) Store32(addr uintptr, v uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(addr)), v)
}

func (direct) Store8(addr uintptr, v uint8) {
	volatile.StoreUint8((*uint8)(unsafe.Pointer(addr)), v)
}

// Default returns the bus backed by physical memory.
func Default() Bus {
	return direct{}
}
