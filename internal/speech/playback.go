package speech

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
)

const (
	// playbackSampleRate is the fixed output format every source is
	// converted into before it reaches the device.
	playbackSampleRate = 24000
	playbackChannels   = 2

	playbackPoll = 100 * time.Millisecond
)

// Player renders finished audio artifacts through the default output
// device. The oto context is created lazily on first use and reused; oto
// supports only one context per process.
type Player interface {
	PlayFile(path string, format Format) error
}

// OtoPlayer is the real speaker-backed Player.
type OtoPlayer struct {
	mu  sync.Mutex
	ctx *oto.Context
}

func NewOtoPlayer() *OtoPlayer {
	return &OtoPlayer{}
}

func (p *OtoPlayer) context() (*oto.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx != nil {
		return p.ctx, nil
	}
	opts := &oto.NewContextOptions{
		SampleRate:   playbackSampleRate,
		ChannelCount: playbackChannels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	<-ready
	p.ctx = ctx
	return ctx, nil
}

// PlayFile decodes the artifact, converts it to the device format and blocks
// until playback finishes, polling at a fixed interval.
func (p *OtoPlayer) PlayFile(path string, format Format) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read audio artifact: %w", err)
	}

	pcm, err := toDeviceFormat(data, format)
	if err != nil {
		return err
	}

	ctx, err := p.context()
	if err != nil {
		return err
	}

	player := ctx.NewPlayer(bytes.NewReader(pcm))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(playbackPoll)
	}
	return player.Close()
}

// toDeviceFormat converts mp3 or raw pcm into 24 kHz stereo s16le.
func toDeviceFormat(data []byte, format Format) ([]byte, error) {
	switch format.Encoding {
	case "mp3":
		dec, err := mp3.NewDecoder(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode mp3: %w", err)
		}
		pcm, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("decode mp3: %w", err)
		}
		// go-mp3 always yields stereo s16le at the file's sample rate.
		return resampleStereo16(pcm, dec.SampleRate(), playbackSampleRate), nil
	case "pcm_s16le":
		pcm := data
		if format.Channels == 1 {
			pcm = monoToStereo16(pcm)
		}
		rate := format.SampleRate
		if rate == 0 {
			rate = playbackSampleRate
		}
		return resampleStereo16(pcm, rate, playbackSampleRate), nil
	default:
		return nil, fmt.Errorf("unsupported audio encoding %q", format.Encoding)
	}
}

// monoToStereo16 duplicates each s16le sample into both channels.
func monoToStereo16(pcm []byte) []byte {
	out := make([]byte, 0, len(pcm)*2)
	for i := 0; i+1 < len(pcm); i += 2 {
		out = append(out, pcm[i], pcm[i+1], pcm[i], pcm[i+1])
	}
	return out
}

// resampleStereo16 nearest-neighbour resamples stereo s16le audio. Good
// enough for voice playback; no interpolation.
func resampleStereo16(pcm []byte, from, to int) []byte {
	if from == to || from <= 0 || to <= 0 {
		return pcm
	}
	const frameSize = 4 // 2 bytes x 2 channels
	frames := len(pcm) / frameSize
	outFrames := frames * to / from
	out := make([]byte, outFrames*frameSize)
	for i := 0; i < outFrames; i++ {
		src := i * from / to
		copy(out[i*frameSize:(i+1)*frameSize], pcm[src*frameSize:src*frameSize+frameSize])
	}
	return out
}
