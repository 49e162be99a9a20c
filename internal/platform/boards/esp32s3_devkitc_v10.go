//go:build tinygo && board_devkitc_v10

package boards

// ESP32-S3-DevKitC-1 v1.0 routes the LED to GPIO48.
var Selected = Descriptor{
	Name:   "esp32s3-devkitc-1-v1.0",
	LEDPin: 48,
}
