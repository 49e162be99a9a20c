package platform

import (
	"log/slog"

	"pixelcode-go/drivers/rmt"
	"pixelcode-go/x/mathx"
)

// byteWriter is the part of ws2812.Device the MCU backend drives.
type byteWriter interface {
	WriteByte(c byte) error
}

// writeFrame sends buf a byte at a time and stops at the first error.
// ws2812.Device.Write discards per-byte errors, so it is not used.
func writeFrame(w byteWriter, buf []byte) error {
	for _, c := range buf {
		if err := w.WriteByte(c); err != nil {
			return err
		}
	}
	return nil
}

// logAdvisoryTiming records that the bit-banged driver shapes the pulses
// itself; only the bit values of the configured symbols reach the pin.
func logAdvisoryTiming(log *slog.Logger, cfg rmt.TxChannelConfig) {
	log.Debug("platform:timings advisory, pulse shape set by ws2812 driver",
		slog.Int("pin", cfg.Pin),
		slog.String("clock", cfg.Clock.String()),
		slog.Uint64("resolution_hz", uint64(cfg.ResolutionHz)),
		slog.Int("mem_block_symbols", cfg.MemBlockSymbols),
	)
}

// esp32s3Pin reports whether the ESP32-S3 has GPIO pin: 0..21 and 26..48.
func esp32s3Pin(pin int) bool {
	return mathx.Between(pin, 0, 21) || mathx.Between(pin, 26, 48)
}

// anyPin is the bound for other TinyGo targets; machine rejects pins the
// chip lacks.
func anyPin(pin int) bool { return mathx.Between(pin, 0, 63) }
