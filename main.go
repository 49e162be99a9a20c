package main

import (
	"context"
	"log/slog"
	"time"

	"pixelcode-go/drivers/sk68xx"
	"pixelcode-go/internal/platform"
	"pixelcode-go/internal/platform/boards"
	"pixelcode-go/services/config"
	"pixelcode-go/services/cycle"
	"pixelcode-go/types"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	logger := slog.New(slog.NewTextHandler(platform.LogOutput(), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	board := boards.Selected

	cfg, err := config.Load(board.Name)
	if err != nil {
		printErrForever(logger, "load config", slog.String("board", board.Name), slog.Any("reason", err))
	}
	devCfg, err := cfg.Pixel.Device(board.LEDPin)
	if err != nil {
		printErrForever(logger, "pixel config", slog.Any("reason", err))
	}

	dev, err := sk68xx.Configure(platform.NewBackend(logger), devCfg, sk68xx.WithLogger(logger))
	if err != nil {
		printErrForever(logger, "configure LED", slog.Any("reason", err))
	}
	info := types.PixelInfo{
		Board:        board.Name,
		Pin:          devCfg.Channel.Pin,
		ResolutionHz: devCfg.Channel.ResolutionHz,
		BitPeriodNs:  devCfg.Encoder.Bit0.Period(devCfg.Channel.ResolutionHz).Nanoseconds(),
		QueueDepth:   devCfg.Channel.TransQueueDepth,
	}
	logger.Info("LED ready",
		slog.String("board", info.Board),
		slog.Int("pin", info.Pin),
		slog.Uint64("resolution_hz", uint64(info.ResolutionHz)),
		slog.Int64("bit_period_ns", info.BitPeriodNs),
		slog.Int("queue_depth", info.QueueDepth),
	)

	svc := cycle.New(dev, cfg.Cycle.Steps, cfg.Cycle.Interval(), logger)
	if err := svc.Run(context.Background()); err != nil {
		_ = dev.Close()
		printErrForever(logger, "cycle", slog.Any("reason", err))
	}
}

// printErrForever logs msg once a second so a serial monitor attached late
// still sees it. It never returns.
func printErrForever(logger *slog.Logger, msg string, args ...any) {
	for {
		logger.Error(msg, args...)
		time.Sleep(time.Second)
	}
}
