package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pixelcode-go/drivers/rmt"
	"pixelcode-go/drivers/sk68xx"
)

func TestPackSymbolsRecoversBytes(t *testing.T) {
	for _, timing := range []sk68xx.Timing{sk68xx.TimingSK68xxMiniHS, sk68xx.TimingWS2812} {
		cfg := timing.Encoder(sk68xx.DefaultResolutionHz)
		enc, err := rmt.NewBytesEncoder(cfg)
		if err != nil {
			t.Fatal(err)
		}
		data := []byte{0x00, 0xFF, 0xA5, 0x3C}
		got := packSymbols(nil, enc.Encode(nil, data))
		assert.Equal(t, data, got)
	}
}

func TestPackSymbolsDropsPartialByte(t *testing.T) {
	enc, _ := rmt.NewBytesEncoder(sk68xx.TimingSK68xxMiniHS.Encoder(sk68xx.DefaultResolutionHz))
	syms := enc.Encode(nil, []byte{0xFF})
	assert.Empty(t, packSymbols(nil, syms[:5]))
}
