// Тест извлечения клипа через ffmpeg stream copy
//
// Запуск: go run ./cmd/testclip -in song.mp3 -start 5000 -end 8000 [-out clip.mp3] [-play]

package main

import (
	"context"
	"flag"
	"log"

	"pact/audio"
	"pact/session"
)

func main() {
	in := flag.String("in", "", "Path to source MP3")
	startMs := flag.Int64("start", 0, "Clip start (ms)")
	endMs := flag.Int64("end", 0, "Clip end (ms)")
	out := flag.String("out", "", "Optional: save clip to MP3 file")
	play := flag.Bool("play", false, "Play the clip after extraction")
	flag.Parse()

	if *in == "" {
		log.Fatal("-in is required")
	}

	extractor := audio.NewExtractor()

	seg, err := extractor.Extract(context.Background(), *in, *startMs, *endMs)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	log.Printf("Clip %s: %d samples @ %dHz (%s)",
		session.IntervalString(*startMs, *endMs, "n/a"),
		len(seg.Samples), seg.SampleRate, session.TimeString(seg.DurationMs()))

	env := audio.Envelope(seg.Samples, 20)
	for i, p := range env {
		log.Printf("  bucket %2d: peak=%.3f rms=%.3f", i, p.Peak, p.RMS)
	}

	if *out != "" {
		if err := audio.EncodeMP3(seg, *out); err != nil {
			log.Fatalf("Encoding failed: %v", err)
		}
	}

	if *play {
		player, err := audio.NewPlayer()
		if err != nil {
			log.Fatalf("Playback init failed: %v", err)
		}
		defer player.Close()

		done := make(chan struct{})
		player.OnDone = func() { close(done) }
		if err := player.Play(seg); err != nil {
			log.Fatalf("Playback failed: %v", err)
		}
		<-done
	}
}
