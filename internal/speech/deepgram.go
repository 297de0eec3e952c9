package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DeepgramRecognizer transcribes prerecorded utterances through Deepgram's
// listen REST API.
type DeepgramRecognizer struct {
	HTTPClient *http.Client
	APIKey     string
	Model      string
	// BaseURL is overridable for tests; empty means the public endpoint.
	BaseURL string
}

func NewDeepgramRecognizer(apiKey string) *DeepgramRecognizer {
	return &DeepgramRecognizer{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIKey:     apiKey,
		Model:      "nova-2",
	}
}

type deepgramAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type deepgramChannel struct {
	Alternatives []deepgramAlternative `json:"alternatives"`
}

type deepgramResults struct {
	Channels []deepgramChannel `json:"channels"`
}

type deepgramResponse struct {
	Results deepgramResults `json:"results"`
}

func (d *DeepgramRecognizer) Recognize(ctx context.Context, wav []byte, language string) (string, error) {
	if d.APIKey == "" {
		return "", fmt.Errorf("deepgram api key missing: %w", ErrUnavailable)
	}
	base := d.BaseURL
	if base == "" {
		base = "https://api.deepgram.com/v1"
	}

	params := url.Values{}
	params.Set("model", d.Model)
	params.Set("smart_format", "true")
	if language != "" {
		params.Set("language", language)
	}
	endpoint := fmt.Sprintf("%s/listen?%s", base, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(wav))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+d.APIKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram request failed: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("deepgram error: status=%d body=%s: %w", resp.StatusCode, string(b), ErrUnavailable)
	}

	var dr deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return "", fmt.Errorf("deepgram: decode response: %w", err)
	}
	if len(dr.Results.Channels) == 0 || len(dr.Results.Channels[0].Alternatives) == 0 {
		return "", ErrUnintelligible
	}
	transcript := strings.TrimSpace(dr.Results.Channels[0].Alternatives[0].Transcript)
	if transcript == "" {
		return "", ErrUnintelligible
	}
	return transcript, nil
}
