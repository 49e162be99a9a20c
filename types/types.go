package types

// RGB is one pixel's color in natural order.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// Step is one entry of the color cycle.
type Step struct {
	Name string `json:"name" yaml:"name"`
	R    uint8  `json:"r" yaml:"r"`
	G    uint8  `json:"g" yaml:"g"`
	B    uint8  `json:"b" yaml:"b"`
}

// Color returns the step's color.
func (s Step) Color() RGB { return RGB{R: s.R, G: s.G, B: s.B} }

// PixelInfo describes the configured LED for logs and the simulator.
type PixelInfo struct {
	Board        string `json:"board"`
	Pin          int    `json:"pin"`
	ResolutionHz uint32 `json:"resolution_hz"`
	BitPeriodNs  int64  `json:"bit_period_ns"`
	QueueDepth   int    `json:"queue_depth"`
}
