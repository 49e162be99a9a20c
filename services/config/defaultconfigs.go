package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board name (boards.Selected.Name)
// Val: raw YAML for that board
// -----------------------------------------------------------------------------

const cycleRGBOff = `
cycle:
  interval_ms: 1000
  steps:
    - {name: red,   r: 255, g: 0,   b: 0}
    - {name: green, r: 0,   g: 255, b: 0}
    - {name: blue,  r: 0,   g: 0,   b: 255}
    - {name: "off", r: 0,   g: 0,   b: 0}
`

// SK68XXMINI-HS timing: 0.35 µs + 1 µs per bit at 20 MHz.
const cfgDevKitCv11 = `
pixel:
  pin: 38
  clock: default
  resolution_hz: 20000000
  mem_block_symbols: 64
  trans_queue_depth: 4
  bit0: {high: 7, low: 20}
  bit1: {high: 20, low: 7}
  msb_first: true
  wait_timeout_ms: 100
` + cycleRGBOff

// Board v1.0 wires the LED to GPIO48; standard WS2812 timing works there.
const cfgDevKitCv10 = `
pixel:
  pin: 48
  timing: ws2812
  wait_timeout_ms: 100
` + cycleRGBOff

const cfgHost = `
pixel:
  timing: sk68xx
` + cycleRGBOff

var embeddedConfigs = map[string][]byte{
	"esp32s3-devkitc-1":      []byte(cfgDevKitCv11),
	"esp32s3-devkitc-1-v1.0": []byte(cfgDevKitCv10),
	"host":                   []byte(cfgHost),
}
