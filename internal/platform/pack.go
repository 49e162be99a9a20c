package platform

import "pixelcode-go/drivers/rmt"

// packSymbols recovers the bytes behind an MSB-first symbol stream. A symbol
// reads as 1 when the line is high for longer than it is low, which is how
// the LED itself samples the bit.
func packSymbols(dst []byte, symbols []rmt.Symbol) []byte {
	var cur byte
	for i, s := range symbols {
		cur <<= 1
		if 2*s.HighTicks() > s.Ticks() {
			cur |= 1
		}
		if i%8 == 7 {
			dst = append(dst, cur)
			cur = 0
		}
	}
	return dst
}
