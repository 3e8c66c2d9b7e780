package core

import "blhal/mmio"

// Endianness is the byte order the checksum engine sums 16-bit words in.
type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

// Checksum is the hardware internet checksum (RFC 1071) engine.
type Checksum struct {
	bus mmio.Bus
}

func newChecksum(bus mmio.Bus) *Checksum {
	return &Checksum{bus: bus}
}

func swapBit(e Endianness) uint32 {
	if e == BigEndian {
		return CKS_CONFIG_BYTE_SWAP
	}
	return 0
}

// Reset clears the running sum and selects the byte order.
func (c *Checksum) Reset(e Endianness) {
	mmio.At(c.bus, CKS_CONFIG).Set(CKS_CONFIG_CLR | swapBit(e))
}

// SetEndianness changes the byte order without clearing the sum.
func (c *Checksum) SetEndianness(e Endianness) {
	mmio.At(c.bus, CKS_CONFIG).Set(swapBit(e))
}

// Write feeds p into the engine one byte at a time. It never fails.
func (c *Checksum) Write(p []byte) (int, error) {
	in := mmio.At(c.bus, CKS_DATA_IN)
	for _, b := range p {
		in.Set(uint32(b))
	}
	return len(p), nil
}

// Sum16 returns the checksum of the bytes written since Reset.
func (c *Checksum) Sum16() uint16 {
	return uint16(mmio.At(c.bus, CKS_OUT).Get())
}

// InternetChecksum computes the RFC 1071 checksum of b in software, with
// the 16-bit words taken big-endian.
func InternetChecksum(b []byte) uint16 {
	var sum uint32
	for len(b) >= 2 {
		sum += uint32(b[0])<<8 | uint32(b[1])
		b = b[2:]
	}
	if len(b) == 1 {
		sum += uint32(b[0]) << 8
	}
	for sum>>16 != 0 {
		sum = sum&0xFFFF + sum>>16
	}
	return ^uint16(sum)
}
