// Package cycle steps one LED through a fixed color sequence forever.
package cycle

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"pixelcode-go/errcode"
	"pixelcode-go/types"
)

// Sender puts one color on the LED. *sk68xx.Device satisfies it.
type Sender interface {
	Send(r, g, b uint8) error
}

type Service struct {
	dev      Sender
	steps    []types.Step
	interval time.Duration
	log      *slog.Logger
	iters    atomic.Uint64
}

// New returns a service that sends steps in order, pausing interval after
// each. A nil logger uses slog.Default.
func New(dev Sender, steps []types.Step, interval time.Duration, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{dev: dev, steps: steps, interval: interval, log: log}
}

// Iterations is the number of completed passes over all steps.
func (s *Service) Iterations() uint64 { return s.iters.Load() }

// Step sends step i (modulo the step count).
func (s *Service) Step(ctx context.Context, i int) error {
	if len(s.steps) == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "cycle", Msg: "no steps"}
	}
	st := s.steps[i%len(s.steps)]
	s.log.LogAttrs(ctx, slog.LevelInfo, "setting LED",
		slog.String("step", st.Name),
		slog.Int("r", int(st.R)), slog.Int("g", int(st.G)), slog.Int("b", int(st.B)),
	)
	if err := s.dev.Send(st.R, st.G, st.B); err != nil {
		return &errcode.E{C: errcode.Of(err), Op: "cycle", Msg: "step " + st.Name, Err: err}
	}
	return nil
}

// Run cycles until ctx is done, which returns nil. The first send error is
// returned; the caller decides what happens next.
func (s *Service) Run(ctx context.Context) error {
	if s.dev == nil {
		return &errcode.E{C: errcode.NotReady, Op: "cycle", Msg: "nil sender"}
	}
	// Fired and drained so every Reset starts clean.
	t := time.NewTimer(0)
	defer t.Stop()
	<-t.C

	for i := 0; ctx.Err() == nil; {
		if err := s.Step(ctx, i); err != nil {
			return err
		}
		if i++; i == len(s.steps) {
			i = 0
			s.iters.Add(1)
		}

		t.Reset(s.interval)
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
	return nil
}
