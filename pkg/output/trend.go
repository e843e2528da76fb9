package output

import (
	"math"
	"strings"
	"sync"
)

// trendBlocks map a share of the ceiling onto eight heights, ▁ through █.
var trendBlocks = []rune("▁▂▃▄▅▆▇█")

// Trend keeps a rolling window of displayed percentages per source. It
// feeds the TREND column only; samplers never read it back.
type Trend struct {
	mu     sync.Mutex
	series map[string]*trendSeries
	window int
}

type trendSeries struct {
	ceiling float64
	values  []float64
}

// NewTrend creates a trend keeping the last window values of each source.
func NewTrend(window int) *Trend {
	if window < 1 {
		window = 20
	}
	return &Trend{
		series: make(map[string]*trendSeries),
		window: window,
	}
}

// Record appends percent to key's series. ceiling is the largest value the
// source can report (100, or 100 × cores when unnormalized) and fixes the
// top of the scale, so an idle source stays flat instead of being stretched.
func (t *Trend) Record(key string, percent, ceiling float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.series[key]
	if !ok {
		s = &trendSeries{}
		t.series[key] = s
	}
	s.ceiling = ceiling
	s.values = append(s.values, percent)
	if n := len(s.values); n > t.window {
		s.values = s.values[n-t.window:]
	}
}

// Line renders key's series, oldest first.
func (t *Trend) Line(key string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.series[key]
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, v := range s.values {
		b.WriteRune(trendBlocks[level(v, s.ceiling)])
	}
	return b.String()
}

func level(percent, ceiling float64) int {
	if ceiling <= 0 {
		ceiling = 100
	}
	share := percent / ceiling
	if math.IsNaN(share) || share < 0 {
		share = 0
	}
	share = math.Min(share, 1)
	return int(math.Round(share * float64(len(trendBlocks)-1)))
}
