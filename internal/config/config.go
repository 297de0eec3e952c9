package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string

	GeminiAPIKey  string
	GeminiModelID string

	DeepgramAPIKey string
	AssemblyAIKey  string

	// Locale parameters for speech I/O. All default to India-English.
	RecognitionLanguage string
	TTSLanguage         string
	TTSTLD              string

	// TTSEngine selects the synthesis backend: "google" or "deepgram".
	TTSEngine string

	DataDir string
	LogDir  string

	// ListenTimeout bounds how long a single recognition call waits for the
	// user to start speaking.
	ListenTimeout time.Duration

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set - response generation will not work")
	}
	geminiModel := os.Getenv("GEMINI_MODEL_ID")
	if geminiModel == "" {
		geminiModel = "gemini-1.5-pro"
	}

	deepgramKey := os.Getenv("DEEPGRAM_API_KEY")
	if deepgramKey == "" {
		log.Println("Warning: DEEPGRAM_API_KEY not set - speech recognition will not work")
	}
	assemblyKey := os.Getenv("ASSEMBLYAI_API_KEY")
	if assemblyKey == "" {
		log.Println("Warning: ASSEMBLYAI_API_KEY not set - recognition fallback disabled")
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	listenTimeout := 5 * time.Second
	if raw := os.Getenv("LISTEN_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			listenTimeout = time.Duration(secs) * time.Second
		} else {
			log.Printf("Warning: invalid LISTEN_TIMEOUT_SECONDS=%q - using default", raw)
		}
	}

	log.Printf("config: HTTP_ADDRESS=%s", addr)
	return Config{
		HTTPAddress:         addr,
		GeminiAPIKey:        geminiKey,
		GeminiModelID:       geminiModel,
		DeepgramAPIKey:      deepgramKey,
		AssemblyAIKey:       assemblyKey,
		RecognitionLanguage: envOrDefault("SPEECH_RECOGNITION_LANGUAGE", "en-IN"),
		TTSLanguage:         envOrDefault("TEXT_TO_SPEECH_LANGUAGE", "en-IN"),
		TTSTLD:              envOrDefault("TEXT_TO_SPEECH_TLD", "co.in"),
		TTSEngine:           envOrDefault("TTS_ENGINE", "google"),
		DataDir:             dataDir,
		LogDir:              logDir,
		ListenTimeout:       listenTimeout,
		SupabaseURL:         os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey:  os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:      envOrDefault("SUPABASE_BUCKET", "call-logs"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
