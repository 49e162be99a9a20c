package cycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelcode-go/drivers/rmt/analyzer"
	"pixelcode-go/drivers/sk68xx"
	"pixelcode-go/errcode"
	"pixelcode-go/types"
)

var rgbOff = []types.Step{
	{Name: "red", R: 255},
	{Name: "green", G: 255},
	{Name: "blue", B: 255},
	{Name: "off"},
}

type fakeSender struct {
	mu   sync.Mutex
	sent []types.RGB
	err  error
	at   int // fail on this send (1-based); 0 never
}

func (f *fakeSender) Send(r, g, b uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, types.RGB{R: r, G: g, B: b})
	if f.at > 0 && len(f.sent) == f.at {
		return f.err
	}
	return nil
}

func (f *fakeSender) snapshot() []types.RGB {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.RGB(nil), f.sent...)
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestStepOrder(t *testing.T) {
	f := &fakeSender{}
	s := New(f, rgbOff, time.Millisecond, quiet())
	for i := 0; i < 8; i++ {
		require.NoError(t, s.Step(context.Background(), i))
	}
	want := []types.RGB{{R: 255}, {G: 255}, {B: 255}, {}, {R: 255}, {G: 255}, {B: 255}, {}}
	assert.Equal(t, want, f.snapshot())
}

func TestStepNoSteps(t *testing.T) {
	s := New(&fakeSender{}, nil, time.Millisecond, quiet())
	assert.Equal(t, errcode.InvalidParams, errcode.Of(s.Step(context.Background(), 0)))
}

func TestRunStopsOnCancel(t *testing.T) {
	f := &fakeSender{}
	s := New(f, rgbOff, time.Millisecond, quiet())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Iterations() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	sent := f.snapshot()
	for i, c := range sent {
		assert.Equal(t, rgbOff[i%4].Color(), c, "send %d", i)
	}
}

func TestRunPacesSteps(t *testing.T) {
	f := &fakeSender{}
	s := New(f, rgbOff, 30*time.Millisecond, quiet())
	ctx, cancel := context.WithTimeout(context.Background(), 75*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	// Sends at 0, 30 and 60 ms.
	n := len(f.snapshot())
	assert.GreaterOrEqual(t, n, 2)
	assert.LessOrEqual(t, n, 3)
}

func TestRunReturnsSendError(t *testing.T) {
	f := &fakeSender{err: &errcode.E{C: errcode.Timeout, Op: "transmit"}, at: 3}
	s := New(f, rgbOff, time.Millisecond, quiet())
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errcode.Timeout, errcode.Of(err))
	assert.Contains(t, err.Error(), "blue")
	assert.Len(t, f.snapshot(), 3)
}

func TestRunNilSender(t *testing.T) {
	s := New(nil, rgbOff, time.Millisecond, quiet())
	assert.Equal(t, errcode.NotReady, errcode.Of(s.Run(context.Background())))
}

func TestRunAgainstAnalyzer(t *testing.T) {
	an := analyzer.NewBounded(8)
	dev, err := sk68xx.Configure(an, sk68xx.DefaultConfig(38), sk68xx.WithLogger(quiet()))
	require.NoError(t, err)
	defer dev.Close()

	s := New(dev, rgbOff, 0, quiet())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Iterations() >= 500 }, 10*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, dev.Pending())

	frames, err := an.Frames(sk68xx.DefaultConfig(0).Encoder)
	require.NoError(t, err)
	require.NotEmpty(t, frames)
	assert.LessOrEqual(t, len(frames), 8)
	valid := map[[3]byte]bool{
		{0x00, 0xFF, 0x00}: true, {0xFF, 0x00, 0x00}: true,
		{0x00, 0x00, 0xFF}: true, {0x00, 0x00, 0x00}: true,
	}
	for _, f := range frames {
		require.Len(t, f, 3)
		assert.True(t, valid[[3]byte(f)], "unexpected frame % x", f)
	}
}

func TestErrorsIsThroughStep(t *testing.T) {
	cause := errors.New("boom")
	f := &fakeSender{err: cause, at: 1}
	s := New(f, rgbOff, time.Millisecond, quiet())
	err := s.Step(context.Background(), 0)
	assert.ErrorIs(t, err, cause)
}
