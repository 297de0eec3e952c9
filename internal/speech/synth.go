package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Format describes a synthesized audio buffer.
type Format struct {
	// Encoding is "mp3" or "pcm_s16le".
	Encoding   string
	SampleRate int
	Channels   int
}

// Synthesizer converts agent text to audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, Format, error)
}

// GoogleTTS fetches speech from the Google Translate TTS endpoint. The TLD
// selects the regional accent variant (co.in for Indian English).
type GoogleTTS struct {
	HTTPClient *http.Client
	Language   string
	TLD        string
	// BaseURL is overridable for tests; empty derives the endpoint from TLD.
	BaseURL string
}

func NewGoogleTTS(language, tld string) *GoogleTTS {
	if language == "" {
		language = "en-IN"
	}
	if tld == "" {
		tld = "co.in"
	}
	return &GoogleTTS{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Language:   language,
		TLD:        tld,
	}
}

func (g *GoogleTTS) Synthesize(ctx context.Context, text string) ([]byte, Format, error) {
	if text == "" {
		return nil, Format{}, fmt.Errorf("empty text")
	}
	base := g.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://translate.google.%s/translate_tts", g.TLD)
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", g.Language)
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, Format{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, Format{}, fmt.Errorf("google tts request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, Format{}, fmt.Errorf("google tts error: status=%d body=%s", resp.StatusCode, string(b))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Format{}, err
	}
	if len(audio) == 0 {
		return nil, Format{}, fmt.Errorf("google tts: empty audio")
	}
	return audio, Format{Encoding: "mp3", SampleRate: 24000, Channels: 1}, nil
}
