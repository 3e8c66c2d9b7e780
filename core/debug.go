package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent captures a HAL event for post-mortem analysis
type TraceEvent struct {
	EventType uint8  // Event type code
	Clock     uint32 // Low word of mcycle at the event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtSafeDefault  = 1 // root clock forced to RC32M (v1=Hz)
	EvtXtalReady    = 2 // crystal ready (v1=polls)
	EvtXtalTimeout  = 3 // crystal never became ready (v1=polls)
	EvtPLLLocked    = 4 // PLL lock wait done (v1=xtal Hz, v2=tap)
	EvtRootSwitch   = 5 // root clock on PLL (v1=sysclk Hz, v2=tap)
	EvtFrozen       = 6 // clock tree frozen (v1=sysclk Hz, v2=bclk Hz)
	EvtTrap         = 7 // trap dispatched to a handler (v1=mcause, v2=irq)
	EvtTrapFallback = 8 // trap routed to the exception handler (v1=mcause)
)

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Trace ring buffer (non-blocking, for post-mortem)
	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8        // Next write position
	traceEnabled  bool  = true // Always capture events
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, stdout, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// SetTraceEnabled turns event capture on or off
func SetTraceEnabled(enabled bool) {
	traceEnabled = enabled
}

// RecordEvent captures an event in the ring buffer.
// Safe to call from trap handlers; it never blocks or allocates.
func RecordEvent(eventType uint8, clock, value1, value2 uint32) {
	if !traceEnabled {
		return
	}
	idx := traceRingHead
	traceRing[idx] = TraceEvent{
		EventType: eventType,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	traceRingHead = (idx + 1) % TraceRingSize
}

// TraceEvents returns the recorded events, oldest first
func TraceEvents() []TraceEvent {
	out := make([]TraceEvent, 0, TraceRingSize)
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := traceRing[(start+i)%TraceRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// EventName returns the log name of an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtSafeDefault:
		return "SAFE_DEFAULT"
	case EvtXtalReady:
		return "XTAL_READY"
	case EvtXtalTimeout:
		return "XTAL_TIMEOUT!"
	case EvtPLLLocked:
		return "PLL_LOCKED"
	case EvtRootSwitch:
		return "ROOT_SWITCH"
	case EvtFrozen:
		return "FROZEN"
	case EvtTrap:
		return "TRAP"
	case EvtTrapFallback:
		return "TRAP_FALLBACK"
	}
	return "UNKNOWN"
}

// DumpTrace outputs the trace ring buffer (call on shutdown/error)
func DumpTrace() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TRACE] === Trace Ring Dump ===")
	for _, evt := range TraceEvents() {
		debugPrintln("[TRACE] " + EventName(evt.EventType) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[TRACE] === End Dump ===")
}

// ClearTrace clears the trace buffer
func ClearTrace() {
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
}
