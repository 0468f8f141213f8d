package session

import "strings"

// MergeTranscription вклеивает результат транскрипции клипа [startMs, endMs)
// в полную транскрипцию песни. Диапазон клипа проецируется на слова
// пропорционально времени (грубое выравнивание - коррекция носит
// рекомендательный характер). Свежая транскрипция подтверждает участок;
// в результате остаются слова самой транскрипции (с их пунктуацией),
// а незатронутый контекст слева и справа оборачивается в квадратные
// скобки, чтобы визуально отличать непроверенный текст.
//
// Клип на всю песню полностью заменяет транскрипцию новым текстом без
// скобок. Пустая или отсутствующая транскрипция тоже даёт новый текст
// как есть.
//
// Скобки - обычные символы внутри строки транскрипции; обратно они не
// парсятся, экранирования нет.
func MergeTranscription(full string, durationMs, startMs, endMs int64, text string) string {
	words := strings.Fields(full)
	if len(words) == 0 || durationMs <= 0 {
		return text
	}

	n := int64(len(words))
	i := int(n * startMs / durationMs)
	j := int(n * endMs / durationMs)

	if i < 0 {
		i = 0
	}
	if i > len(words) {
		i = len(words)
	}
	if j < i {
		j = i
	}
	if j > len(words) {
		j = len(words)
	}

	// Полное покрытие: новый текст замещает транскрипцию целиком
	if i == 0 && j == len(words) {
		return text
	}

	middle := strings.Join(words[i:j], " ")
	if middle == "" {
		// Проекция не зацепила ни одного слова - оставляем новый текст
		middle = text
	}

	var parts []string
	if i > 0 {
		parts = append(parts, "["+strings.Join(words[:i], " ")+"]")
	}
	if middle != "" {
		parts = append(parts, middle)
	}
	if j < len(words) {
		parts = append(parts, "["+strings.Join(words[j:], " ")+"]")
	}

	return strings.Join(parts, " ")
}
