//go:build !tinygo

package boards

// Host builds pretend to be a v1.1 DevKitC with the LED on GPIO38.
var Selected = Descriptor{
	Name:   "host",
	LEDPin: 38,
}
