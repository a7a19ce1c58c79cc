package downloader

import (
	"strconv"
	"strings"
)

// durationToSeconds 把 "H:MM:SS" 或 "M:SS" 形式的时长换算成总秒数，
// 空串为 0
func durationToSeconds(duration string) int {
	if duration == "" {
		return 0
	}

	total := 0
	for _, part := range strings.Split(duration, ":") {
		n, err := strconv.Atoi(part)
		if err != nil {
			n = 0
		}
		total = total*60 + n
	}

	return total
}
