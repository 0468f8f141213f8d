package main

import (
	"log"

	"pact/ai"
	"pact/anki"
	"pact/audio"
	"pact/internal/api"
	"pact/internal/config"
	"pact/internal/service"
	"pact/session"
)

func main() {
	log.Println("pact backend starting...")

	cfg := config.Load()

	ankiCfg, err := config.LoadAnki(cfg.AnkiConfigPath)
	if err != nil {
		// Экспорт без конфига просто недоступен, остальной движок работает
		log.Printf("Anki config unavailable: %v", err)
	}

	strategy, err := ai.NewStrategy(ai.Config{
		Type:        ai.StrategyType(cfg.Strategy),
		EncoderPath: cfg.EncoderPath,
		DecoderPath: cfg.DecoderPath,
		TokensPath:  cfg.TokensPath,
		Language:    cfg.Language,
	})
	if err != nil {
		log.Fatalf("Failed to create transcription strategy: %v", err)
	}
	log.Printf("Transcription strategy: %s", strategy.Name())

	extractor := audio.NewExtractor()
	extractor.FFmpegPath = cfg.FFmpegPath

	player, err := audio.NewPlayer()
	if err != nil {
		log.Fatalf("Failed to init audio playback: %v", err)
	}
	defer player.Close()

	sessions := session.NewManager()
	transcription := service.NewTranscriptionService(sessions, extractor, strategy)
	export := service.NewExportService(sessions, extractor, anki.NewClient(ankiCfg))

	server := api.NewServer(cfg, sessions, extractor, player, transcription, export)
	server.Start()
}
