package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/config"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/controller"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/httpserver"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/llm"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/scenario"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/speech"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/storage"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	onStatus := func(msg string) { log.Printf("status: %s", msg) }

	gen := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModelID)
	store := scenario.NewStore(cfg.DataDir, onStatus)

	var fallback speech.Recognizer
	if cfg.AssemblyAIKey != "" {
		fallback = speech.NewAssemblyAIRecognizer(cfg.AssemblyAIKey)
	}
	var synth speech.Synthesizer
	if cfg.TTSEngine == "deepgram" {
		synth = speech.NewDeepgramSynthesizer(cfg.DeepgramAPIKey, "")
	} else {
		synth = speech.NewGoogleTTS(cfg.TTSLanguage, cfg.TTSTLD)
	}
	processor := speech.NewProcessor(
		speech.Options{
			RecognitionLanguage: cfg.RecognitionLanguage,
			DefaultTimeout:      cfg.ListenTimeout,
		},
		speech.NewDeepgramRecognizer(cfg.DeepgramAPIKey),
		fallback,
		synth,
		speech.NewOtoPlayer(),
		onStatus,
	)

	var uploader controller.Uploader
	if cfg.SupabaseURL != "" {
		up, err := storage.New(storage.Config{
			URL:            cfg.SupabaseURL,
			ServiceRoleKey: cfg.SupabaseServiceKey,
			Bucket:         cfg.SupabaseBucket,
		})
		if err != nil {
			log.Printf("supabase disabled: %v", err)
		} else {
			uploader = up
		}
	}

	hub := httpserver.NewHub()
	ctrl := controller.New(controller.Options{
		LogDir:        cfg.LogDir,
		ListenTimeout: cfg.ListenTimeout,
	}, gen, store, processor, uploader, hub.Broadcast)

	srv := httpserver.New(ctrl, hub, cfg.LogDir)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Echo,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	// Wind down any in-flight call so its log gets saved
	if _, err := ctrl.End(); err != nil && err != controller.ErrNoActiveCall {
		log.Printf("end call on shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}
