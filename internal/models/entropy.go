package models

import "math"

type classCounts [numSeverities]int

func countClasses(instances []Instance) classCounts {
	var counts classCounts
	for _, inst := range instances {
		counts[inst.Class.index()]++
	}
	return counts
}

func (cc classCounts) sub(other classCounts) classCounts {
	for i := range cc {
		cc[i] -= other[i]
	}
	return cc
}

// entropy over only the classes actually present; total must be > 0.
func (cc classCounts) entropy(total int) float64 {
	n := float64(total)
	h := 0.0
	for _, count := range cc {
		if count == 0 {
			continue
		}
		p := float64(count) / n
		h -= p * math.Log2(p)
	}
	return h
}

// Entropy returns the Shannon entropy (bits) of the class distribution of
// instances. Callers must not pass an empty slice.
func Entropy(instances []Instance) float64 {
	return countClasses(instances).entropy(len(instances))
}
