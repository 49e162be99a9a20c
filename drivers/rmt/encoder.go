package rmt

import "pixelcode-go/errcode"

// BytesEncoderConfig maps logical bits to symbols.
type BytesEncoderConfig struct {
	Bit0     Symbol // symbol for a logical 0
	Bit1     Symbol // symbol for a logical 1
	MSBFirst bool
}

// Validate checks levels, duration ranges and that the two symbols differ.
func (c BytesEncoderConfig) Validate() error {
	const op = "bytes_encoder_config"
	if !c.Bit0.valid() {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "bit0 symbol out of range"}
	}
	if !c.Bit1.valid() {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "bit1 symbol out of range"}
	}
	if c.Bit0 == c.Bit1 {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "bit0 and bit1 symbols are identical"}
	}
	return nil
}

// BytesEncoder serialises bytes into symbols, eight per byte.
// It is immutable once created and safe to share between channels.
type BytesEncoder struct {
	cfg BytesEncoderConfig
}

// NewBytesEncoder validates cfg and returns an encoder bound to it.
func NewBytesEncoder(cfg BytesEncoderConfig) (*BytesEncoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BytesEncoder{cfg: cfg}, nil
}

// Config returns a copy of the encoder's configuration.
func (e *BytesEncoder) Config() BytesEncoderConfig { return e.cfg }

// Encode appends the symbols for data to dst and returns the extended slice.
func (e *BytesEncoder) Encode(dst []Symbol, data []byte) []Symbol {
	for _, b := range data {
		for i := 0; i < 8; i++ {
			var bit byte
			if e.cfg.MSBFirst {
				bit = b >> (7 - i) & 1
			} else {
				bit = b >> i & 1
			}
			if bit == 1 {
				dst = append(dst, e.cfg.Bit1)
			} else {
				dst = append(dst, e.cfg.Bit0)
			}
		}
	}
	return dst
}
