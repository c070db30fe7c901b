package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Candidate is one evaluated split point for an attribute.
type Candidate struct {
	Threshold decimal.Decimal
	Gain      float64
}

func sortedBy(instances []Instance, attr Attribute) []Instance {
	sorted := make([]Instance, len(instances))
	copy(sorted, instances)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value(attr).LessThan(sorted[j].Value(attr))
	})
	return sorted
}

// SplitCandidates evaluates every observed value of attr as a threshold and
// returns the candidates in ascending threshold order. When several
// instances share a value, the gain computed last for that value wins.
//
// The right partition is weighted by (n-i+1)/n, not by its size.
// Existing trees depend on that weight.
func SplitCandidates(instances []Instance, attr Attribute) []Candidate {
	n := len(instances)
	if n == 0 {
		return nil
	}

	sorted := sortedBy(instances, attr)
	total := countClasses(sorted)
	base := total.entropy(n)

	candidates := make([]Candidate, 0, n)
	add := func(threshold decimal.Decimal, gain float64) {
		if last := len(candidates) - 1; last >= 0 && candidates[last].Threshold.Equal(threshold) {
			candidates[last] = Candidate{Threshold: threshold, Gain: gain}
			return
		}
		candidates = append(candidates, Candidate{Threshold: threshold, Gain: gain})
	}

	var left classCounts
	for i := 0; i < n-1; i++ {
		left[sorted[i].Class.index()]++
		right := total.sub(left)

		leftEntropy := left.entropy(i + 1)
		rightEntropy := right.entropy(n - i - 1)
		gain := base -
			(float64(i+1)/float64(n))*leftEntropy -
			(float64(n-i+1)/float64(n))*rightEntropy

		add(sorted[i].Value(attr), gain)
	}

	add(sorted[n-1].Value(attr), base-total.entropy(n))

	return candidates
}

// BestSplit picks the candidate with the strictly greatest gain. The scan
// starts from a zero threshold with zero gain, so if nothing beats zero the
// zero split is returned.
func BestSplit(instances []Instance, attr Attribute) Candidate {
	best := Candidate{Threshold: decimal.Zero, Gain: 0}
	for _, c := range SplitCandidates(instances, attr) {
		if c.Gain > best.Gain {
			best = c
		}
	}
	return best
}
