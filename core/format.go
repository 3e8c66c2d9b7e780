package core

// Formatting helpers for debug output. fmt is too heavy for the firmware
// image, so numbers are rendered into fixed buffers.

// utoa formats n in decimal.
func utoa(n uint32) string {
	var buf [10]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return string(buf[i:])
}

// Hex32 formats n as 0x followed by eight lowercase hex digits.
func Hex32(n uint32) string {
	const digits = "0123456789abcdef"
	buf := [10]byte{'0', 'x'}
	for i := len(buf) - 1; i >= 2; i-- {
		buf[i] = digits[n&0xf]
		n >>= 4
	}
	return string(buf[:])
}
