package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// Capture format for recognition audio.
const (
	CaptureSampleRate = 16000
	CaptureChannels   = 1

	// calibrationWindow is how long the ambient-noise floor is sampled
	// before listening for speech.
	calibrationWindow = 1 * time.Second

	// silenceWindow is the trailing quiet period that ends an utterance.
	// Keep conservative to avoid cutting the user mid-sentence.
	silenceWindow = 700 * time.Millisecond

	pollInterval = 50 * time.Millisecond

	// minVoiceRMS is the floor below which the calibrated threshold never
	// drops, so a dead-quiet room does not turn breathing into speech.
	minVoiceRMS = 250.0
)

// CaptureFunc records one utterance of 16 kHz mono s16le PCM. A nil/empty
// result with nil error means nothing was said before the timeout.
type CaptureFunc func(ctx context.Context, timeout, phraseLimit time.Duration) ([]byte, error)

// CaptureUtterance acquires the default microphone, calibrates against
// ambient noise, waits up to timeout for speech to start and records until
// the trailing silence window (or phraseLimit) is reached. The device is
// released on every exit path.
func CaptureUtterance(ctx context.Context, timeout, phraseLimit time.Duration) ([]byte, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	var mu sync.Mutex
	var captured []byte

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = CaptureChannels
	deviceConfig.SampleRate = CaptureSampleRate
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			mu.Lock()
			captured = append(captured, input...)
			mu.Unlock()
		},
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("init microphone: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return nil, fmt.Errorf("start microphone: %w", err)
	}
	defer func() { _ = device.Stop() }()

	snapshot := func() []byte {
		mu.Lock()
		defer mu.Unlock()
		out := make([]byte, len(captured))
		copy(out, captured)
		return out
	}

	// Ambient-noise calibration: sample the room for a second and derive
	// the voice threshold from its noise floor.
	if err := sleepCtx(ctx, calibrationWindow); err != nil {
		return nil, err
	}
	ambient := rmsOf(snapshot())
	threshold := math.Max(ambient*2.5, minVoiceRMS)

	// Wait for speech onset, bounded by timeout.
	speechStart := -1
	waitDeadline := time.Now().Add(timeout)
	scanned := len(snapshot())
	for speechStart < 0 {
		if time.Now().After(waitDeadline) {
			return nil, nil
		}
		if err := sleepCtx(ctx, pollInterval); err != nil {
			return nil, err
		}
		buf := snapshot()
		if rmsOf(buf[scanned:]) >= threshold {
			speechStart = scanned
		}
		scanned = len(buf)
	}

	// Record until the trailing quiet window, or until the phrase limit.
	lastVoice := time.Now()
	var phraseDeadline time.Time
	if phraseLimit > 0 {
		phraseDeadline = time.Now().Add(phraseLimit)
	}
	for {
		if err := sleepCtx(ctx, pollInterval); err != nil {
			return nil, err
		}
		buf := snapshot()
		if rmsOf(buf[scanned:]) >= threshold {
			lastVoice = time.Now()
		}
		scanned = len(buf)

		if time.Since(lastVoice) >= silenceWindow {
			return buf[speechStart:], nil
		}
		if !phraseDeadline.IsZero() && time.Now().After(phraseDeadline) {
			return buf[speechStart:], nil
		}
	}
}

// rmsOf computes root-mean-square energy over s16le PCM, sampling sparsely
// on larger chunks to reduce CPU.
func rmsOf(pcm []byte) float64 {
	if len(pcm) < 2 {
		return 0
	}
	step := 2
	if len(pcm) > 3200 {
		step = 4
	}
	var sumSquares float64
	count := 0
	for i := 0; i+1 < len(pcm); i += 2 * step {
		v := int16(binary.LittleEndian.Uint16(pcm[i : i+2]))
		sumSquares += float64(v) * float64(v)
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sumSquares / float64(count))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
