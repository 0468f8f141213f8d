package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"pact/anki"
)

type Config struct {
	Port     string
	GRPCAddr string

	// Стратегия транскрипции
	Strategy    string
	EncoderPath string
	DecoderPath string
	TokensPath  string
	Language    string

	// Внешний транскодер
	FFmpegPath string

	// Настройки экспорта в Anki
	AnkiConfigPath string
}

func Load() *Config {
	port := flag.String("port", "8080", "Server port")
	grpcAddr := flag.String("grpc", "", "gRPC address (unix:/path or npipe:path)")
	strategy := flag.String("strategy", "sherpa", "Transcription strategy (sherpa, stub)")
	encoder := flag.String("encoder", "", "Path to Whisper encoder ONNX model")
	decoder := flag.String("decoder", "", "Path to Whisper decoder ONNX model")
	tokens := flag.String("tokens", "", "Path to Whisper tokens file")
	language := flag.String("language", "", "Recognition language (empty = auto)")
	ffmpeg := flag.String("ffmpeg", "ffmpeg", "Path to ffmpeg binary")
	ankiConfig := flag.String("anki", "anki.json", "Path to Anki export config")
	flag.Parse()

	return &Config{
		Port:           *port,
		GRPCAddr:       *grpcAddr,
		Strategy:       *strategy,
		EncoderPath:    *encoder,
		DecoderPath:    *decoder,
		TokensPath:     *tokens,
		Language:       *language,
		FFmpegPath:     *ffmpeg,
		AnkiConfigPath: *ankiConfig,
	}
}

// LoadAnki читает настройки экспорта из JSON файла
func LoadAnki(path string) (anki.NoteConfig, error) {
	var cfg anki.NoteConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read anki config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse anki config: %w", err)
	}
	return cfg, nil
}
