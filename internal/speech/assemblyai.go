package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AssemblyAIRecognizer is the fallback transcription engine: upload the
// audio, create a transcript job, poll until it settles.
type AssemblyAIRecognizer struct {
	HTTPClient *http.Client
	APIKey     string
	// BaseURL is overridable for tests; empty means the public endpoint.
	BaseURL string
	// PollInterval between transcript status checks.
	PollInterval time.Duration
}

func NewAssemblyAIRecognizer(apiKey string) *AssemblyAIRecognizer {
	return &AssemblyAIRecognizer{
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		APIKey:       apiKey,
		PollInterval: 500 * time.Millisecond,
	}
}

type assemblyUploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type assemblyTranscript struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

func (a *AssemblyAIRecognizer) Recognize(ctx context.Context, wav []byte, language string) (string, error) {
	if a.APIKey == "" {
		return "", fmt.Errorf("assemblyai api key missing: %w", ErrUnavailable)
	}
	base := a.BaseURL
	if base == "" {
		base = "https://api.assemblyai.com/v2"
	}

	uploadURL, err := a.upload(ctx, base, wav)
	if err != nil {
		return "", err
	}

	id, err := a.createTranscript(ctx, base, uploadURL, language)
	if err != nil {
		return "", err
	}

	interval := a.PollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	for {
		tr, err := a.getTranscript(ctx, base, id)
		if err != nil {
			return "", err
		}
		switch tr.Status {
		case "completed":
			text := strings.TrimSpace(tr.Text)
			if text == "" {
				return "", ErrUnintelligible
			}
			return text, nil
		case "error":
			return "", fmt.Errorf("assemblyai transcript failed: %s: %w", tr.Error, ErrUnintelligible)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("assemblyai poll: %v: %w", ctx.Err(), ErrUnavailable)
		case <-time.After(interval):
		}
	}
}

func (a *AssemblyAIRecognizer) upload(ctx context.Context, base string, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/upload", bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assemblyai upload failed: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("assemblyai upload: status=%d body=%s: %w", resp.StatusCode, string(b), ErrUnavailable)
	}
	var ur assemblyUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("assemblyai upload: decode response: %w", err)
	}
	return ur.UploadURL, nil
}

func (a *AssemblyAIRecognizer) createTranscript(ctx context.Context, base, audioURL, language string) (string, error) {
	payload := map[string]interface{}{"audio_url": audioURL}
	if language != "" {
		// AssemblyAI expects bare language codes ("en"), not BCP-47 tags.
		payload["language_code"] = strings.SplitN(language, "-", 2)[0]
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assemblyai create transcript failed: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("assemblyai create transcript: status=%d body=%s: %w", resp.StatusCode, string(b), ErrUnavailable)
	}
	var tr assemblyTranscript
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("assemblyai create transcript: decode response: %w", err)
	}
	return tr.ID, nil
}

func (a *AssemblyAIRecognizer) getTranscript(ctx context.Context, base, id string) (*assemblyTranscript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/transcript/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", a.APIKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assemblyai poll failed: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("assemblyai poll: status=%d body=%s: %w", resp.StatusCode, string(b), ErrUnavailable)
	}
	var tr assemblyTranscript
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("assemblyai poll: decode response: %w", err)
	}
	return &tr, nil
}
