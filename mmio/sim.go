package mmio

import "sync"

// Access is one recorded store on a Sim.
type Access struct {
	Addr  uintptr
	Value uint32
	Width uint8 // 1 or 4 bytes
}

// Sim is a map-backed register file. It records every store in order so
// tests can check hardware sequencing, and lets callers model status bits
// with load hooks.
type Sim struct {
	mu      sync.Mutex
	mem     map[uintptr]uint32
	log     []Access
	loads   map[uintptr]int
	onLoad  map[uintptr]func(stored uint32) uint32
	onStore map[uintptr]func(v uint32)
}

func NewSim() *Sim {
	return &Sim{
		mem:     make(map[uintptr]uint32),
		loads:   make(map[uintptr]int),
		onLoad:  make(map[uintptr]func(uint32) uint32),
		onStore: make(map[uintptr]func(uint32)),
	}
}

func (s *Sim) Load32(addr uintptr) uint32 {
	s.mu.Lock()
	v := s.mem[addr]
	s.loads[addr]++
	hook := s.onLoad[addr]
	s.mu.Unlock()
	if hook != nil {
		v = hook(v)
	}
	return v
}

func (s *Sim) Store32(addr uintptr, v uint32) {
	s.mu.Lock()
	s.mem[addr] = v
	s.log = append(s.log, Access{Addr: addr, Value: v, Width: 4})
	hook := s.onStore[addr]
	s.mu.Unlock()
	if hook != nil {
		hook(v)
	}
}

// Store8 writes one byte lane of the containing little-endian word.
func (s *Sim) Store8(addr uintptr, v uint8) {
	word := addr &^ 3
	shift := (addr & 3) * 8
	s.mu.Lock()
	s.mem[word] = s.mem[word]&^(0xff<<shift) | uint32(v)<<shift
	s.log = append(s.log, Access{Addr: addr, Value: uint32(v), Width: 1})
	hook := s.onStore[addr]
	s.mu.Unlock()
	if hook != nil {
		hook(uint32(v))
	}
}

// Poke sets a register without recording a store.
func (s *Sim) Poke(addr uintptr, v uint32) {
	s.mu.Lock()
	s.mem[addr] = v
	s.mu.Unlock()
}

// Peek returns the stored value without running hooks or counting a load.
func (s *Sim) Peek(addr uintptr) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem[addr]
}

// PeekByte returns the byte at addr.
func (s *Sim) PeekByte(addr uintptr) uint8 {
	word := s.Peek(addr &^ 3)
	return uint8(word >> ((addr & 3) * 8))
}

// OnLoad installs fn to compute the value returned for loads of addr.
// fn receives the stored value. A nil fn removes the hook.
func (s *Sim) OnLoad(addr uintptr, fn func(stored uint32) uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.onLoad, addr)
		return
	}
	s.onLoad[addr] = fn
}

// OnStore installs fn to observe stores to addr. A nil fn removes the hook.
func (s *Sim) OnStore(addr uintptr, fn func(v uint32)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.onStore, addr)
		return
	}
	s.onStore[addr] = fn
}

// Loads returns how many times addr was loaded.
func (s *Sim) Loads(addr uintptr) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads[addr]
}

// Writes returns a copy of the store log.
func (s *Sim) Writes() []Access {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Access, len(s.log))
	copy(out, s.log)
	return out
}

// WritesTo returns the stores that hit addr, in order.
func (s *Sim) WritesTo(addr uintptr) []Access {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Access
	for _, a := range s.log {
		if a.Addr == addr {
			out = append(out, a)
		}
	}
	return out
}

// FirstWrite returns the log index of the first store to any address in
// [lo, hi), or -1.
func (s *Sim) FirstWrite(lo, hi uintptr) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.log {
		if a.Addr >= lo && a.Addr < hi {
			return i
		}
	}
	return -1
}

// ClearLog drops recorded stores and load counters.
func (s *Sim) ClearLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
	s.loads = make(map[uintptr]int)
}
