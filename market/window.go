package market

import "sort"

// HighestHigh returns the maximum high over the window. Zero for an empty
// window.
func HighestHigh(window []Candle) float64 {
	var hi float64
	for i, c := range window {
		if i == 0 || c.High > hi {
			hi = c.High
		}
	}
	return hi
}

// LowestLow returns the minimum low over the window. Zero for an empty window.
func LowestLow(window []Candle) float64 {
	var lo float64
	for i, c := range window {
		if i == 0 || c.Low < lo {
			lo = c.Low
		}
	}
	return lo
}

// MedianRange returns the median high-low spread over the window.
func MedianRange(window []Candle) float64 {
	if len(window) == 0 {
		return 0
	}

	ranges := make([]float64, len(window))
	for i, c := range window {
		ranges[i] = c.Range()
	}
	sort.Float64s(ranges)

	n := len(ranges)
	if n%2 == 1 {
		return ranges[n/2]
	}
	return (ranges[n/2-1] + ranges[n/2]) / 2
}
