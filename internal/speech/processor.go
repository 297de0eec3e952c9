package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

// speakableText keeps word characters, whitespace and basic punctuation;
// everything else is stripped before synthesis.
var speakableText = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?-]`)

// Options configures a Processor.
type Options struct {
	RecognitionLanguage string
	// DefaultTimeout bounds how long Recognize waits for speech onset when
	// the caller passes no explicit timeout.
	DefaultTimeout time.Duration
	// PhraseLimit caps a single utterance; zero means unlimited.
	PhraseLimit time.Duration
	// TempDir for synthesized audio artifacts; empty means the OS default.
	TempDir string
}

// Processor bridges microphone audio to text and agent text to spoken
// audio. Every failure degrades to an empty/ignored value plus an advisory
// callback; nothing propagates to callers.
type Processor struct {
	opts     Options
	primary  Recognizer
	fallback Recognizer
	synth    Synthesizer
	player   Player
	capture  CaptureFunc
	onStatus func(msg string)

	listening atomic.Bool
}

// NewProcessor wires a Processor. fallback and onStatus may be nil.
func NewProcessor(opts Options, primary, fallback Recognizer, synth Synthesizer, player Player, onStatus func(string)) *Processor {
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 5 * time.Second
	}
	return &Processor{
		opts:     opts,
		primary:  primary,
		fallback: fallback,
		synth:    synth,
		player:   player,
		capture:  CaptureUtterance,
		onStatus: onStatus,
	}
}

// IsListening reports whether a recognition call is in flight. It is
// advisory only: the manual trigger checks it to avoid overlapping the
// conversation loop.
func (p *Processor) IsListening() bool {
	return p.listening.Load()
}

// Recognize blocks for one utterance and returns its lowercased transcript,
// or "" when nothing usable was heard. Intended to run off the interaction
// goroutine.
func (p *Processor) Recognize(ctx context.Context, timeout, phraseLimit time.Duration) string {
	p.listening.Store(true)
	defer p.listening.Store(false)

	if timeout <= 0 {
		timeout = p.opts.DefaultTimeout
	}
	if phraseLimit <= 0 {
		phraseLimit = p.opts.PhraseLimit
	}

	p.status("Listening...")
	pcm, err := p.capture(ctx, timeout, phraseLimit)
	if err != nil {
		p.status(fmt.Sprintf("Error: %v", err))
		return ""
	}
	if len(pcm) == 0 {
		return ""
	}

	p.status("Processing speech...")
	wav := EncodeWAV(pcm, CaptureSampleRate, CaptureChannels)

	text, err := p.primary.Recognize(ctx, wav, p.opts.RecognitionLanguage)
	if errors.Is(err, ErrUnavailable) && p.fallback != nil {
		text, err = p.fallback.Recognize(ctx, wav, p.opts.RecognitionLanguage)
		if err == nil {
			p.status("User: " + text + " (fallback)")
			return normalizeTranscript(text)
		}
	}
	switch {
	case err == nil:
		p.status("User: " + text)
		return normalizeTranscript(text)
	case errors.Is(err, ErrUnintelligible):
		p.status("Could not understand audio")
		return ""
	default:
		p.status("Speech recognition services unavailable")
		return ""
	}
}

// Speak synthesizes and plays the given text, blocking until playback
// completes. The synthesized artifact is removed on every path; synthesis
// and playback failures surface only as advisories.
func (p *Processor) Speak(text string) {
	if text == "" {
		return
	}

	cleaned := strings.TrimSpace(speakableText.ReplaceAllString(text, ""))
	if cleaned == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	audio, format, err := p.synth.Synthesize(ctx, cleaned)
	if err != nil {
		p.status(fmt.Sprintf("Error in speech synthesis: %v", err))
		return
	}

	f, err := os.CreateTemp(p.opts.TempDir, "response-*."+artifactExt(format))
	if err != nil {
		p.status(fmt.Sprintf("Error in speech synthesis: %v", err))
		return
	}
	path := f.Name()
	// best-effort cleanup regardless of playback outcome
	defer os.Remove(path)

	if _, err := f.Write(audio); err != nil {
		_ = f.Close()
		p.status(fmt.Sprintf("Error in speech synthesis: %v", err))
		return
	}
	if err := f.Close(); err != nil {
		p.status(fmt.Sprintf("Error in speech synthesis: %v", err))
		return
	}

	if err := p.player.PlayFile(path, format); err != nil {
		p.status(fmt.Sprintf("Error in speech synthesis: %v", err))
	}
}

func normalizeTranscript(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func artifactExt(f Format) string {
	if f.Encoding == "mp3" {
		return "mp3"
	}
	return "pcm"
}

func (p *Processor) status(msg string) {
	if p.onStatus != nil {
		p.onStatus(msg)
	}
}
