package downloader

import "testing"

func TestDurationToSeconds(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"3:45", 225},
		{"1:02:03", 3723},
		{"0:00", 0},
		{"", 0},
		{"45", 45},
		{"10:00", 600},
	}

	for _, c := range cases {
		if got := durationToSeconds(c.input); got != c.want {
			t.Errorf("durationToSeconds(%q) = %d, 期望 %d", c.input, got, c.want)
		}
	}
}
