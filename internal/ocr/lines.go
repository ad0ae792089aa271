package ocr

import (
	"strings"

	"github.com/joseph-ayodele/lease-intake/constants"
)

// lineText keeps LINE blocks in response order and reports their mean confidence (0..1).
func lineText(blocks []Block) ([]string, float64) {
	var (
		lines []string
		sum   float64
		n     int
	)
	for _, b := range blocks {
		if b.Type != constants.BlockTypeLine {
			continue
		}
		lines = append(lines, b.Text)
		if b.Confidence > 0 {
			sum += b.Confidence
			n++
		}
	}
	if n == 0 {
		return lines, 0
	}
	return lines, sum / float64(n) / 100.0
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
