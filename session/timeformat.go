// Package session содержит модель закладок одной песни, слияние
// транскрипций и персистентность сессии.
package session

import (
	"fmt"
	"math"
)

// TimeString форматирует миллисекунды как "MM:SS.s".
// Секунды округляются до 0.1с и дополняются нулём до ширины 4
// (включая точку): 5600 -> "00:05.6", 66000 -> "01:06.0".
func TimeString(ms int64) string {
	totalSeconds := math.Round(float64(ms)/100.0) / 10.0
	mins := int(totalSeconds) / 60
	secs := totalSeconds - float64(mins*60)
	return fmt.Sprintf("%02d:%04.1f", mins, secs)
}

// IntervalString форматирует диапазон "start - end".
// Для пустого или вывернутого диапазона (start >= end) возвращается
// fallback вместо ошибки: так отображается состояние "границы не заданы".
func IntervalString(startMs, endMs int64, fallback string) string {
	if startMs >= endMs {
		return fallback
	}
	return fmt.Sprintf("%s - %s", TimeString(startMs), TimeString(endMs))
}
