//go:build tinygo && esp32s3

package platform

var validPin = esp32s3Pin
