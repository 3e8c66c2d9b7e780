package core

import "blhal/mmio"

// RTC is the always-on 40-bit counter in the HBN block, clocked at 32 kHz.
type RTC struct {
	bus mmio.Bus
}

func newRTC(bus mmio.Bus) *RTC {
	return &RTC{bus: bus}
}

// Start clears the counter and starts it.
func (r *RTC) Start() {
	ctl := mmio.At(r.bus, HBN_CTL)
	ctl.ClearBits(HBN_CTL_RTC_EN)
	ctl.SetBits(HBN_CTL_RTC_EN)
}

// Counter latches and returns the raw counter.
func (r *RTC) Counter() uint64 {
	hi := mmio.At(r.bus, HBN_RTC_TIME_H)
	hi.SetBits(HBN_RTC_TIME_H_LATCH)
	h := hi.Get() & 0xFF
	l := mmio.At(r.bus, HBN_RTC_TIME_L).Get()
	return uint64(h)<<32 | uint64(l)
}

// Millis returns the milliseconds since Start.
func (r *RTC) Millis() uint64 {
	return rtcCounterToMillis(r.Counter())
}

// rtcCounterToMillis converts counter ticks to milliseconds using the vendor
// SDK's approximation of the 32 kHz RC frequency.
func rtcCounterToMillis(cnt uint64) uint64 {
	return cnt * (1024 - 16 - 8) / 32768
}
