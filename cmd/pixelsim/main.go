//go:build !tinygo

// pixelsim runs the color cycle against the analyzer backend and prints each
// decoded wire frame, so the firmware's output can be checked without a board.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"pixelcode-go/drivers/rmt/analyzer"
	"pixelcode-go/drivers/sk68xx"
	"pixelcode-go/internal/platform/boards"
	"pixelcode-go/services/config"
	"pixelcode-go/services/cycle"
)

func main() {
	var (
		board    = flag.String("board", boards.Selected.Name, "embedded config to load")
		file     = flag.String("config", "", "YAML config file (overrides -board)")
		passes   = flag.Int("n", 1, "passes over the color steps")
		interval = flag.Duration("interval", 0, "delay between steps (0 = as configured)")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if err := run(os.Stdout, *board, *file, *passes, *interval, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "pixelsim:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, board, file string, passes int, interval time.Duration, verbose bool) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var (
		cfg config.Config
		err error
	)
	if file != "" {
		raw, rerr := os.ReadFile(file)
		if rerr != nil {
			return rerr
		}
		cfg, err = config.Parse(raw)
	} else {
		cfg, err = config.Load(board)
	}
	if err != nil {
		return err
	}
	devCfg, err := cfg.Pixel.Device(boards.Selected.LEDPin)
	if err != nil {
		return err
	}
	if interval <= 0 {
		interval = cfg.Cycle.Interval()
	}

	an := analyzer.New()
	dev, err := sk68xx.Configure(an, devCfg, sk68xx.WithLogger(logger))
	if err != nil {
		return err
	}
	defer dev.Close()

	fmt.Fprintf(w, "pin=%d resolution=%dHz bit=%s\n",
		devCfg.Channel.Pin, devCfg.Channel.ResolutionHz,
		devCfg.Encoder.Bit0.Period(devCfg.Channel.ResolutionHz))

	svc := cycle.New(dev, cfg.Cycle.Steps, interval, logger)
	ctx := context.Background()
	for p := 0; p < passes; p++ {
		for i, st := range cfg.Cycle.Steps {
			an.Reset()
			if err := svc.Step(ctx, i); err != nil {
				return err
			}
			frames, err := an.Frames(devCfg.Encoder)
			if err != nil {
				return err
			}
			for _, f := range frames {
				fmt.Fprintf(w, "%-6s wire=% X\n", st.Name, f)
			}
			if p < passes-1 || i < len(cfg.Cycle.Steps)-1 {
				time.Sleep(interval)
			}
		}
	}
	return nil
}
