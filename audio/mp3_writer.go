package audio

import (
	"fmt"
	"log"
	"os"

	"github.com/braheezy/shine-mp3/pkg/mp3"
)

// EncodeMP3 кодирует фрагмент в MP3 файл через shine-mp3 (чистый Go).
// Используется при экспорте клипа в медиа-хранилище карточного сервиса.
func EncodeMP3(seg *Segment, path string) error {
	if seg == nil || len(seg.Samples) == 0 {
		return fmt.Errorf("nothing to encode: empty segment")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	encoder := mp3.NewEncoder(seg.SampleRate, 1)

	// Конвертируем float32 в int16 с клэмпом
	pcm := make([]int16, len(seg.Samples))
	for i, s := range seg.Samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		pcm[i] = int16(s * 32767)
	}

	// Shine кодирует блоками по 1152 сэмпла, дополняем хвост нулями
	const blockSize = 1152
	for len(pcm)%blockSize != 0 {
		pcm = append(pcm, 0)
	}

	encoder.Write(file, pcm)

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	log.Printf("EncodeMP3: %s (%d samples @ %dHz)", path, len(seg.Samples), seg.SampleRate)
	return nil
}
