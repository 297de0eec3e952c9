// Command speechtest exercises the speech stack in isolation: transcribe a
// WAV file, synthesize a sentence, or run a live mic round trip. Useful for
// checking API keys and audio devices before starting the agent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/config"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/speech"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg := config.Load()

	mode := flag.String("mode", "", "test mode: asr, tts or mic")
	audioPath := flag.String("audio", "", "asr: input WAV file path")
	text := flag.String("text", "Namaste! Yeh ek test sentence hai.", "tts: input text")
	outputPath := flag.String("out", "", "tts: output audio path (default tts-output-<epoch>)")
	engine := flag.String("engine", "", "tts engine: google or deepgram (default from config)")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "asr":
		runASR(ctx, cfg, *audioPath)
	case "tts":
		runTTS(ctx, cfg, *engine, *text, *outputPath)
	case "mic":
		runMic(ctx, cfg)
	default:
		flag.Usage()
		log.Fatal("specify -mode=asr, -mode=tts or -mode=mic")
	}
}

func runASR(ctx context.Context, cfg config.Config, audioPath string) {
	if audioPath == "" {
		log.Fatal("asr mode needs -audio with a WAV file path")
	}
	wav, err := os.ReadFile(audioPath)
	if err != nil {
		log.Fatalf("read audio file: %v", err)
	}

	rec := speech.NewDeepgramRecognizer(cfg.DeepgramAPIKey)
	log.Printf("transcribing %s (%d bytes, language=%s)", audioPath, len(wav), cfg.RecognitionLanguage)
	text, err := rec.Recognize(ctx, wav, cfg.RecognitionLanguage)
	if err != nil {
		log.Fatalf("recognition failed: %v", err)
	}
	log.Printf("transcript: %q", text)
}

func runTTS(ctx context.Context, cfg config.Config, engine, text, outputPath string) {
	if engine == "" {
		engine = cfg.TTSEngine
	}
	var synth speech.Synthesizer
	switch engine {
	case "deepgram":
		synth = speech.NewDeepgramSynthesizer(cfg.DeepgramAPIKey, "")
	case "google":
		synth = speech.NewGoogleTTS(cfg.TTSLanguage, cfg.TTSTLD)
	default:
		log.Fatalf("unknown tts engine %q", engine)
	}

	log.Printf("synthesizing %d chars via %s", len(text), engine)
	audio, format, err := synth.Synthesize(ctx, text)
	if err != nil {
		log.Fatalf("synthesis failed: %v", err)
	}

	if outputPath == "" {
		ext := "mp3"
		if format.Encoding != "mp3" {
			ext = "pcm"
		}
		outputPath = fmt.Sprintf("tts-output-%d.%s", time.Now().Unix(), ext)
	}
	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		log.Fatalf("write output: %v", err)
	}
	log.Printf("wrote %d bytes (%s %dHz %dch) to %s", len(audio), format.Encoding, format.SampleRate, format.Channels, outputPath)

	player := speech.NewOtoPlayer()
	if err := player.PlayFile(outputPath, format); err != nil {
		log.Printf("playback skipped: %v", err)
	}
}

func runMic(ctx context.Context, cfg config.Config) {
	log.Printf("speak now (timeout %s)...", cfg.ListenTimeout)
	pcm, err := speech.CaptureUtterance(ctx, cfg.ListenTimeout, 0)
	if err != nil {
		log.Fatalf("capture failed: %v", err)
	}
	if len(pcm) == 0 {
		log.Fatal("no speech detected before timeout")
	}
	log.Printf("captured %d PCM bytes", len(pcm))

	wav := speech.EncodeWAV(pcm, speech.CaptureSampleRate, speech.CaptureChannels)
	rec := speech.NewDeepgramRecognizer(cfg.DeepgramAPIKey)
	text, err := rec.Recognize(ctx, wav, cfg.RecognitionLanguage)
	if err != nil {
		log.Fatalf("recognition failed: %v", err)
	}
	log.Printf("you said: %q", text)
}
