package audio

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

// Player воспроизводит фрагмент для предпрослушивания клипа.
// Одновременно может играть только один фрагмент.
type Player struct {
	ctx *malgo.AllocatedContext

	mu      sync.Mutex
	device  *malgo.Device
	playing bool

	// OnDone вызывается когда фрагмент доигран до конца (не при Stop)
	OnDone func()
}

// NewPlayer инициализирует аудио контекст
func NewPlayer() (*Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}
	return &Player{ctx: ctx}, nil
}

// Play начинает воспроизведение фрагмента. Текущее воспроизведение,
// если есть, останавливается.
func (p *Player) Play(seg *Segment) error {
	if seg == nil || len(seg.Samples) == 0 {
		return fmt.Errorf("nothing to play: empty segment")
	}

	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = uint32(seg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	pos := 0
	samples := seg.Samples
	done := false

	onSendFrames := func(pOutput, pInput []byte, frameCount uint32) {
		n := int(frameCount)
		for i := 0; i < n; i++ {
			var v float32
			if pos < len(samples) {
				v = samples[pos]
				pos++
			}
			binary.LittleEndian.PutUint32(pOutput[i*4:], math.Float32bits(v))
		}
		if pos >= len(samples) && !done {
			done = true
			// Уведомляем вне аудио коллбека
			go p.finished()
		}
	}

	device, err := malgo.InitDevice(p.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSendFrames,
	})
	if err != nil {
		return fmt.Errorf("failed to init playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start playback: %w", err)
	}

	p.device = device
	p.playing = true
	log.Printf("Player: playing %d samples @ %dHz", len(samples), seg.SampleRate)
	return nil
}

func (p *Player) finished() {
	p.Stop()
	if p.OnDone != nil {
		p.OnDone()
	}
}

// Stop останавливает воспроизведение. Безопасно вызывать в любой момент.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device != nil {
		p.device.Uninit()
		p.device = nil
	}
	p.playing = false
}

// IsPlaying возвращает true если фрагмент сейчас играет
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Close освобождает аудио контекст
func (p *Player) Close() {
	p.Stop()
	if p.ctx != nil {
		_ = p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
}
