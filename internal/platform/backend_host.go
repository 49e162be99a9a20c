//go:build !tinygo

// This file is built only for non-TinyGo targets (host-based runs and tests).
package platform

import (
	"io"
	"log/slog"
	"os"

	"pixelcode-go/drivers/rmt"
	"pixelcode-go/drivers/rmt/analyzer"
)

// hostCaptureDepth bounds analyzer memory on a long-running host loop.
const hostCaptureDepth = 64

// NewBackend returns an analyzer standing in for the LED pin. The analyzer
// does not log.
func NewBackend(_ *slog.Logger) rmt.Backend { return analyzer.NewBounded(hostCaptureDepth) }

// LogOutput is where the firmware's logger writes.
func LogOutput() io.Writer { return os.Stderr }
