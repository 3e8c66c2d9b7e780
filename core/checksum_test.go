package core

import (
	"bytes"
	"io"
	"testing"

	"blhal/mmio"
)

// ipv4Header is the example header from RFC 1071 discussions with its
// checksum field zeroed.
var ipv4Header = []byte{
	0x45, 0x00, 0x00, 0x73, 0x00, 0x00, 0x40, 0x00, 0x40, 0x11,
	0x00, 0x00, 0xc0, 0xa8, 0x00, 0x01, 0xc0, 0xa8, 0x00, 0xc7,
}

func TestInternetChecksum(t *testing.T) {
	if got := InternetChecksum(ipv4Header); got != 0xb861 {
		t.Errorf("InternetChecksum = %#04x, want 0xb861", got)
	}

	// with the checksum filled in the header sums to zero
	filled := append([]byte(nil), ipv4Header...)
	filled[10], filled[11] = 0xb8, 0x61
	if got := InternetChecksum(filled); got != 0 {
		t.Errorf("InternetChecksum(filled) = %#04x, want 0", got)
	}

	if got := InternetChecksum([]byte{0x01}); got != 0xfeff {
		t.Errorf("odd length = %#04x, want 0xfeff", got)
	}
	if got := InternetChecksum(nil); got != 0xffff {
		t.Errorf("empty = %#04x, want 0xffff", got)
	}
}

func TestChecksumEngine(t *testing.T) {
	sim := mmio.NewSim()

	// model the engine: sum every byte written since the last clear
	var fed []byte
	sim.OnStore(CKS_CONFIG, func(v uint32) {
		if v&CKS_CONFIG_CLR != 0 {
			fed = nil
		}
	})
	sim.OnStore(CKS_DATA_IN, func(v uint32) { fed = append(fed, byte(v)) })
	sim.OnLoad(CKS_OUT, func(uint32) uint32 { return uint32(InternetChecksum(fed)) })

	c := newChecksum(sim)
	c.Reset(BigEndian)
	if got := sim.Peek(CKS_CONFIG); got != CKS_CONFIG_CLR|CKS_CONFIG_BYTE_SWAP {
		t.Errorf("config = %#x after Reset(BigEndian)", got)
	}

	if _, err := io.Copy(c, bytes.NewReader(ipv4Header)); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n := len(sim.WritesTo(CKS_DATA_IN)); n != len(ipv4Header) {
		t.Errorf("%d data writes, want %d", n, len(ipv4Header))
	}
	if got := c.Sum16(); got != 0xb861 {
		t.Errorf("Sum16 = %#04x, want 0xb861", got)
	}

	c.SetEndianness(LittleEndian)
	if got := sim.Peek(CKS_CONFIG); got != 0 {
		t.Errorf("config = %#x after SetEndianness(LittleEndian)", got)
	}
	if len(fed) != len(ipv4Header) {
		t.Error("SetEndianness cleared the running sum")
	}
}
