package session

import "testing"

func TestTimeString(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "00:00.0"},
		{5600, "00:05.6"},
		{5650, "00:05.7"},
		{9900, "00:09.9"},
		{10000, "00:10.0"},
		{59999, "01:00.0"},
		{60000, "01:00.0"},
		{66000, "01:06.0"},
		{125300, "02:05.3"},
		{3600000, "60:00.0"},
	}

	for _, c := range cases {
		if got := TimeString(c.ms); got != c.want {
			t.Errorf("TimeString(%d) = %q, want %q", c.ms, got, c.want)
		}
	}
}

func TestIntervalString(t *testing.T) {
	if got := IntervalString(5600, 7600, "n/a"); got != "00:05.6 - 00:07.6" {
		t.Errorf("IntervalString = %q", got)
	}

	t.Run("InvalidRange", func(t *testing.T) {
		// Пустой или вывернутый диапазон отображается через fallback
		if got := IntervalString(100, 100, "n/a"); got != "n/a" {
			t.Errorf("equal bounds: got %q, want fallback", got)
		}
		if got := IntervalString(7600, 5600, "-"); got != "-" {
			t.Errorf("inverted bounds: got %q, want fallback", got)
		}
	})
}
