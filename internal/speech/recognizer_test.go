package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDeepgramRecognizer_Transcript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/listen" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "en-IN" {
			t.Errorf("unexpected language %q", got)
		}
		json.NewEncoder(w).Encode(deepgramResponse{Results: deepgramResults{
			Channels: []deepgramChannel{{Alternatives: []deepgramAlternative{{Transcript: "  namaste ji  ", Confidence: 0.97}}}},
		}})
	}))
	defer srv.Close()

	d := NewDeepgramRecognizer("test-key")
	d.BaseURL = srv.URL

	got, err := d.Recognize(context.Background(), []byte("fakewav"), "en-IN")
	if err != nil {
		t.Fatal(err)
	}
	if got != "namaste ji" {
		t.Fatalf("expected trimmed transcript, got %q", got)
	}
}

func TestDeepgramRecognizer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "server error is unavailable",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			want: ErrUnavailable,
		},
		{
			name: "empty transcript is unintelligible",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(deepgramResponse{Results: deepgramResults{
					Channels: []deepgramChannel{{Alternatives: []deepgramAlternative{{Transcript: "   "}}}},
				}})
			},
			want: ErrUnintelligible,
		},
		{
			name: "no channels is unintelligible",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(deepgramResponse{})
			},
			want: ErrUnintelligible,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			d := NewDeepgramRecognizer("test-key")
			d.BaseURL = srv.URL

			_, err := d.Recognize(context.Background(), []byte("fakewav"), "en-IN")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDeepgramRecognizer_MissingKeyIsUnavailable(t *testing.T) {
	d := NewDeepgramRecognizer("")
	if _, err := d.Recognize(context.Background(), nil, ""); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestAssemblyAIRecognizer_UploadTranscribePoll(t *testing.T) {
	polls := 0
	var mux http.ServeMux
	var srv *httptest.Server
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		json.NewEncoder(w).Encode(assemblyUploadResponse{UploadURL: srv.URL + "/cdn/audio"})
	})
	mux.HandleFunc("/transcript", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Error(err)
		}
		if got := payload["language_code"]; got != "en" {
			t.Errorf("expected bare language code, got %v", got)
		}
		json.NewEncoder(w).Encode(assemblyTranscript{ID: "tx-1", Status: "queued"})
	})
	mux.HandleFunc("/transcript/tx-1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 2 {
			json.NewEncoder(w).Encode(assemblyTranscript{ID: "tx-1", Status: "processing"})
			return
		}
		json.NewEncoder(w).Encode(assemblyTranscript{ID: "tx-1", Status: "completed", Text: "kal demo rakh lete hain"})
	})
	srv = httptest.NewServer(&mux)
	defer srv.Close()

	a := NewAssemblyAIRecognizer("test-key")
	a.BaseURL = srv.URL
	a.PollInterval = time.Millisecond

	got, err := a.Recognize(context.Background(), []byte("fakewav"), "en-IN")
	if err != nil {
		t.Fatal(err)
	}
	if got != "kal demo rakh lete hain" {
		t.Fatalf("unexpected transcript %q", got)
	}
	if polls < 2 {
		t.Fatalf("expected at least two polls, got %d", polls)
	}
}

func TestAssemblyAIRecognizer_TranscriptErrorIsUnintelligible(t *testing.T) {
	var mux http.ServeMux
	var srv *httptest.Server
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(assemblyUploadResponse{UploadURL: srv.URL + "/cdn/audio"})
	})
	mux.HandleFunc("/transcript", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(assemblyTranscript{ID: "tx-2", Status: "queued"})
	})
	mux.HandleFunc("/transcript/tx-2", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(assemblyTranscript{ID: "tx-2", Status: "error", Error: "audio too quiet"})
	})
	srv = httptest.NewServer(&mux)
	defer srv.Close()

	a := NewAssemblyAIRecognizer("test-key")
	a.BaseURL = srv.URL
	a.PollInterval = time.Millisecond

	_, err := a.Recognize(context.Background(), []byte("fakewav"), "en-IN")
	if !errors.Is(err, ErrUnintelligible) {
		t.Fatalf("expected ErrUnintelligible, got %v", err)
	}
	if !strings.Contains(err.Error(), "audio too quiet") {
		t.Fatalf("error should carry the service message, got %v", err)
	}
}

func TestAssemblyAIRecognizer_CancelledPollIsUnavailable(t *testing.T) {
	var mux http.ServeMux
	var srv *httptest.Server
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(assemblyUploadResponse{UploadURL: srv.URL + "/cdn/audio"})
	})
	mux.HandleFunc("/transcript", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(assemblyTranscript{ID: "tx-3", Status: "queued"})
	})
	mux.HandleFunc("/transcript/tx-3", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(assemblyTranscript{ID: "tx-3", Status: "processing"})
	})
	srv = httptest.NewServer(&mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	a := NewAssemblyAIRecognizer("test-key")
	a.BaseURL = srv.URL
	a.PollInterval = 5 * time.Millisecond

	_, err := a.Recognize(ctx, []byte("fakewav"), "en-IN")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on cancellation, got %v", err)
	}
}
