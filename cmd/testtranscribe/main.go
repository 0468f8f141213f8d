// Тест стратегии транскрипции на клипе из MP3 файла
//
// Запуск: go run ./cmd/testtranscribe -in song.mp3 -start 5000 -end 15000 \
//     -encoder models/encoder.onnx -decoder models/decoder.onnx -tokens models/tokens.txt

package main

import (
	"context"
	"flag"
	"log"

	"pact/ai"
	"pact/audio"
)

func main() {
	in := flag.String("in", "", "Path to source MP3")
	startMs := flag.Int64("start", 0, "Clip start (ms)")
	endMs := flag.Int64("end", 0, "Clip end (ms)")
	encoder := flag.String("encoder", "", "Path to Whisper encoder ONNX model")
	decoder := flag.String("decoder", "", "Path to Whisper decoder ONNX model")
	tokens := flag.String("tokens", "", "Path to Whisper tokens file")
	language := flag.String("language", "", "Recognition language")
	flag.Parse()

	if *in == "" {
		log.Fatal("-in is required")
	}

	seg, err := audio.NewExtractor().Extract(context.Background(), *in, *startMs, *endMs)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	strategy, err := ai.NewSherpaStrategy(ai.Config{
		EncoderPath: *encoder,
		DecoderPath: *decoder,
		TokensPath:  *tokens,
		Language:    *language,
	})
	if err != nil {
		log.Fatalf("Strategy init failed: %v", err)
	}
	defer strategy.Close()

	done := make(chan struct{})
	err = strategy.Start(seg, ai.Callbacks{
		OnProgress: func(percent int) {
			log.Printf("progress: %d%%", percent)
		},
		OnFinished: func(text string) {
			log.Printf("result: %s", text)
			close(done)
		},
		OnError: func(err error) {
			log.Printf("error: %v", err)
			close(done)
		},
	})
	if err != nil {
		log.Fatalf("Start failed: %v", err)
	}
	<-done
}
