package session

import "testing"

func TestMergeTranscription(t *testing.T) {
	full := "Tengo un perro, es muy guapo."
	const durationMs = 6000

	t.Run("MiddleClip", func(t *testing.T) {
		// 6 слов, клип [1000, 3000) покрывает слова [1, 3).
		// Подтверждённый участок сохраняет слова транскрипции вместе
		// с пунктуацией: запятая из "un perro," остаётся
		got := MergeTranscription(full, durationMs, 1000, 3000, "un perro")
		want := "[Tengo] un perro, [es muy guapo.]"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("WholeSong", func(t *testing.T) {
		// Закладка "вся песня": полная замена, без скобок
		got := MergeTranscription(full, durationMs, 0, durationMs, "texto nuevo")
		if got != "texto nuevo" {
			t.Errorf("got %q, want %q", got, "texto nuevo")
		}
	})

	t.Run("ClipAtStart", func(t *testing.T) {
		// i == 0: ведущей скобки нет
		got := MergeTranscription(full, durationMs, 0, 3000, "tengo un perro")
		want := "Tengo un perro, [es muy guapo.]"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("ClipAtEnd", func(t *testing.T) {
		// j == wordcount: замыкающей скобки нет
		got := MergeTranscription(full, durationMs, 3000, durationMs, "es muy guapo")
		want := "[Tengo un perro,] es muy guapo."
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("EmptyFullTranscript", func(t *testing.T) {
		if got := MergeTranscription("", durationMs, 1000, 3000, "hola"); got != "hola" {
			t.Errorf("got %q, want %q", got, "hola")
		}
		if got := MergeTranscription("   ", durationMs, 1000, 3000, "hola"); got != "hola" {
			t.Errorf("whitespace transcript: got %q, want %q", got, "hola")
		}
	})

	t.Run("BracketsAreData", func(t *testing.T) {
		// Скобки в тексте - данные, не синтаксис; остаются как есть
		got := MergeTranscription("", durationMs, 1000, 3000, "un [sic] perro")
		if got != "un [sic] perro" {
			t.Errorf("got %q, want %q", got, "un [sic] perro")
		}

		// То же для скобок внутри самой транскрипции
		got = MergeTranscription("uno [dos] tres cuatro", 4000, 2000, 3000, "tres")
		want := "[uno [dos]] tres [cuatro]"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("BoundsPastSongEnd", func(t *testing.T) {
		got := MergeTranscription(full, durationMs, 5000, 99999, "guapo.")
		want := "[Tengo un perro, es muy] guapo."
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}
