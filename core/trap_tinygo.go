//go:build tinygo && riscv

package core

import "unsafe"

// _start_trap_hal is the assembly trap entry. It saves a TrapFrame on the
// stack, calls _start_trap_rust_hal and restores the frame before mret.
// The symbol is provided by the board's startup assembly.
//
//go:extern _start_trap_hal
var _start_trap_hal [0]byte

// TrapEntry returns the address to pass to CLIC.Install.
func TrapEntry() uintptr {
	return uintptr(unsafe.Pointer(&_start_trap_hal))
}

// The entry point name is fixed by the startup assembly.
//
//export _start_trap_rust_hal
func startTrapHAL(tf *TrapFrame) {
	c := activeCLIC
	if c == nil {
		panic("unhandled trap")
	}
	c.Dispatch(tf)
}
