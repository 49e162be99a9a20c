//go:build tinygo && !board_devkitc_v10

package boards

// ESP32-S3-DevKitC-1 v1.1: the SK68XXMINI-HS sits on GPIO38.
var Selected = Descriptor{
	Name:   "esp32s3-devkitc-1",
	LEDPin: 38,
}
