package analyzer

import "gonum.org/v1/gonum/floats"

// Levels summarizes a byte spectrum into coarse band energies in [0, 1].
type Levels struct {
	Bass    float64 `json:"bass"`
	Mid     float64 `json:"mid"`
	Treble  float64 `json:"treble"`
	Overall float64 `json:"overall"`
}

// band edges as fractions of the bin count
const (
	bassEdge = 0.06
	midEdge  = 0.35
)

// Summarize computes band levels from byte frequency data. scratch is reused
// when it has enough capacity.
func Summarize(freq []byte, scratch []float64) (Levels, []float64) {
	if len(freq) == 0 {
		return Levels{}, scratch
	}
	if cap(scratch) < len(freq) {
		scratch = make([]float64, len(freq))
	}
	scratch = scratch[:len(freq)]
	for i, v := range freq {
		scratch[i] = float64(v) / 255
	}

	bassEnd := max(1, int(float64(len(freq))*bassEdge))
	midEnd := max(bassEnd+1, int(float64(len(freq))*midEdge))
	if midEnd > len(freq) {
		midEnd = len(freq)
	}

	return Levels{
		Bass:    average(scratch[:bassEnd]),
		Mid:     average(scratch[bassEnd:midEnd]),
		Treble:  average(scratch[midEnd:]),
		Overall: average(scratch),
	}, scratch
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values) / float64(len(values))
}
