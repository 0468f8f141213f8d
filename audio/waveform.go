package audio

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// EnvelopePoint одна точка огибающей: пик и RMS внутри бакета
type EnvelopePoint struct {
	Peak float64 `json:"peak"`
	RMS  float64 `json:"rms"`
}

// Envelope строит огибающую сигнала для отрисовки волны в окне клипа.
// Сигнал делится на buckets равных отрезков, для каждого считается
// пиковая амплитуда и RMS.
func Envelope(samples []float32, buckets int) []EnvelopePoint {
	if buckets <= 0 || len(samples) == 0 {
		return nil
	}
	if buckets > len(samples) {
		buckets = len(samples)
	}

	env := make([]EnvelopePoint, buckets)
	bucketLen := len(samples) / buckets

	abs := make([]float64, bucketLen)
	for b := 0; b < buckets; b++ {
		start := b * bucketLen
		end := start + bucketLen
		if b == buckets-1 {
			end = len(samples)
		}

		chunk := samples[start:end]
		if len(chunk) > len(abs) {
			abs = make([]float64, len(chunk))
		}
		abs = abs[:len(chunk)]
		for i, s := range chunk {
			abs[i] = math.Abs(float64(s))
		}

		env[b] = EnvelopePoint{
			Peak: floats.Max(abs),
			RMS:  floats.Norm(abs, 2) / math.Sqrt(float64(len(abs))),
		}
	}

	return env
}
