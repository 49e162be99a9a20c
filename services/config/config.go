// Package config resolves the board's embedded configuration into typed
// driver and cycle settings. Pulse timings live here as data so another part
// of the same LED family only needs a new document.
package config

import (
	"time"

	"gopkg.in/yaml.v2"

	"pixelcode-go/drivers/rmt"
	"pixelcode-go/drivers/sk68xx"
	"pixelcode-go/errcode"
	"pixelcode-go/types"
	"pixelcode-go/x/strx"
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// Config is one board's document.
type Config struct {
	Pixel PixelConfig `yaml:"pixel"`
	Cycle CycleConfig `yaml:"cycle"`
}

// Pulse is one symbol's high and low time in ticks.
type Pulse struct {
	High uint16 `yaml:"high"`
	Low  uint16 `yaml:"low"`
}

// PixelConfig describes the LED's channel and encoder. Zero fields take the
// driver defaults.
type PixelConfig struct {
	Pin             *int   `yaml:"pin"`
	Clock           string `yaml:"clock"`
	ResolutionHz    uint32 `yaml:"resolution_hz"`
	MemBlockSymbols int    `yaml:"mem_block_symbols"`
	TransQueueDepth int    `yaml:"trans_queue_depth"`
	Timing          string `yaml:"timing"` // preset name; excludes bit0/bit1
	Bit0            *Pulse `yaml:"bit0"`
	Bit1            *Pulse `yaml:"bit1"`
	MSBFirst        *bool  `yaml:"msb_first"`
	WaitTimeoutMs   int    `yaml:"wait_timeout_ms"`
}

// CycleConfig is the color sequence the application steps through.
type CycleConfig struct {
	IntervalMs int          `yaml:"interval_ms"`
	Steps      []types.Step `yaml:"steps"`
}

// DefaultSteps is red, green, blue, off.
func DefaultSteps() []types.Step {
	return []types.Step{
		{Name: "red", R: 255},
		{Name: "green", G: 255},
		{Name: "blue", B: 255},
		{Name: "off"},
	}
}

// Load parses the embedded document for board.
func Load(board string) (Config, error) {
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return Config{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "no embedded config for board: " + board}
	}
	return Parse(raw)
}

// Parse decodes a YAML (or JSON) document and fills defaults.
func Parse(raw []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(raw, &c); err != nil {
		return Config{}, &errcode.E{C: errcode.InvalidPayload, Op: "config", Msg: "decode", Err: err}
	}
	if c.Cycle.IntervalMs <= 0 {
		c.Cycle.IntervalMs = 1000
	}
	if len(c.Cycle.Steps) == 0 {
		c.Cycle.Steps = DefaultSteps()
	}
	return c, nil
}

// Interval is the pause after each step.
func (c CycleConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Device maps the pixel section onto a driver config. defaultPin is used
// when the document does not name a pin.
func (p PixelConfig) Device(defaultPin int) (sk68xx.Config, error) {
	const op = "config"
	pin := defaultPin
	if p.Pin != nil {
		pin = *p.Pin
	}
	cfg := sk68xx.DefaultConfig(pin)

	switch strx.Coalesce(p.Clock, "default") {
	case "default":
		cfg.Channel.Clock = rmt.ClockDefault
	case "apb":
		cfg.Channel.Clock = rmt.ClockAPB
	case "xtal":
		cfg.Channel.Clock = rmt.ClockXTAL
	default:
		return sk68xx.Config{}, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "unknown clock: " + p.Clock}
	}
	if p.ResolutionHz != 0 {
		cfg.Channel.ResolutionHz = p.ResolutionHz
	}
	if p.MemBlockSymbols != 0 {
		cfg.Channel.MemBlockSymbols = p.MemBlockSymbols
	}
	if p.TransQueueDepth != 0 {
		cfg.Channel.TransQueueDepth = p.TransQueueDepth
	}
	if p.WaitTimeoutMs > 0 {
		cfg.WaitTimeout = time.Duration(p.WaitTimeoutMs) * time.Millisecond
	}

	res := cfg.Channel.ResolutionHz
	switch {
	case p.Timing != "" && (p.Bit0 != nil || p.Bit1 != nil):
		return sk68xx.Config{}, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "timing preset and bit pulses are exclusive"}
	case p.Timing != "":
		t, ok := sk68xx.TimingByName(p.Timing)
		if !ok {
			return sk68xx.Config{}, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "unknown timing: " + p.Timing}
		}
		cfg.Encoder = t.Encoder(res)
	case p.Bit0 != nil && p.Bit1 != nil:
		cfg.Encoder.Bit0 = p.Bit0.symbol()
		cfg.Encoder.Bit1 = p.Bit1.symbol()
	case p.Bit0 != nil || p.Bit1 != nil:
		return sk68xx.Config{}, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "bit0 and bit1 must be given together"}
	default:
		cfg.Encoder = sk68xx.TimingSK68xxMiniHS.Encoder(res)
	}
	if p.MSBFirst != nil {
		cfg.Encoder.MSBFirst = *p.MSBFirst
	}

	if err := cfg.Channel.Validate(); err != nil {
		return sk68xx.Config{}, err
	}
	if err := cfg.Encoder.Validate(); err != nil {
		return sk68xx.Config{}, err
	}
	return cfg, nil
}

func (p Pulse) symbol() rmt.Symbol {
	return rmt.Symbol{Level0: rmt.High, Duration0: p.High, Level1: rmt.Low, Duration1: p.Low}
}
