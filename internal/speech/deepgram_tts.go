package speech

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/websocket/interfaces"
	clientinterfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces/v1"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
)

// DeepgramSynthesizer streams linear16 PCM from Deepgram's speak API and
// returns it as one buffer once the stream goes idle.
type DeepgramSynthesizer struct {
	apiKey     string
	model      string
	sampleRate int
}

func NewDeepgramSynthesizer(apiKey, model string) *DeepgramSynthesizer {
	if model == "" {
		model = "aura-2-thalia-en"
	}
	return &DeepgramSynthesizer{apiKey: apiKey, model: model, sampleRate: playbackSampleRate}
}

func (d *DeepgramSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, Format, error) {
	format := Format{Encoding: "pcm_s16le", SampleRate: d.sampleRate, Channels: 1}
	if d.apiKey == "" {
		return nil, Format{}, fmt.Errorf("deepgram: API key missing")
	}
	if text == "" {
		return nil, format, nil
	}

	options := &clientinterfaces.WSSpeakOptions{
		Model:      d.model,
		Encoding:   "linear16",
		SampleRate: d.sampleRate,
	}

	var mu sync.Mutex
	var audio []byte
	lastRecv := time.Now()

	cb := &speakCallback{onBinary: func(data []byte) error {
		if len(data) == 0 {
			return nil
		}
		mu.Lock()
		audio = append(audio, data...)
		lastRecv = time.Now()
		mu.Unlock()
		return nil
	}}

	dg, err := speak.NewWSUsingCallback(ctx, d.apiKey, &clientinterfaces.ClientOptions{}, options, cb)
	if err != nil {
		return nil, Format{}, fmt.Errorf("deepgram: create ws client: %w", err)
	}
	defer dg.Stop()

	if ok := dg.Connect(); !ok {
		return nil, Format{}, fmt.Errorf("deepgram: connect failed")
	}
	if err := dg.SpeakWithText(text); err != nil {
		return nil, Format{}, fmt.Errorf("deepgram: speak text: %w", err)
	}
	if err := dg.Flush(); err != nil {
		log.Printf("deepgram: flush error: %v", err)
	}

	// Collect until the stream goes idle or the overall deadline passes.
	idleWindow := 400 * time.Millisecond
	deadline := time.Now().Add(12 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, Format{}, ctx.Err()
		case <-ticker.C:
			mu.Lock()
			gotAudio := len(audio) > 0
			idle := time.Since(lastRecv) > idleWindow
			mu.Unlock()
			if gotAudio && idle {
				mu.Lock()
				out := make([]byte, len(audio))
				copy(out, audio)
				mu.Unlock()
				return out, format, nil
			}
			if time.Now().After(deadline) {
				if !gotAudio {
					return nil, Format{}, fmt.Errorf("deepgram: no audio before deadline")
				}
				mu.Lock()
				out := make([]byte, len(audio))
				copy(out, audio)
				mu.Unlock()
				return out, format, nil
			}
		}
	}
}

type speakCallback struct{ onBinary func([]byte) error }

func (s *speakCallback) Open(*msginterfaces.OpenResponse) error         { return nil }
func (s *speakCallback) Metadata(*msginterfaces.MetadataResponse) error { return nil }
func (s *speakCallback) Flush(*msginterfaces.FlushedResponse) error     { return nil }
func (s *speakCallback) Clear(*msginterfaces.ClearedResponse) error     { return nil }
func (s *speakCallback) Close(*msginterfaces.CloseResponse) error       { return nil }
func (s *speakCallback) Warning(*msginterfaces.WarningResponse) error   { return nil }
func (s *speakCallback) Error(*msginterfaces.ErrorResponse) error       { return nil }
func (s *speakCallback) UnhandledEvent([]byte) error                    { return nil }
func (s *speakCallback) Binary(byMsg []byte) error {
	if s.onBinary != nil {
		return s.onBinary(byMsg)
	}
	return nil
}
