package scoring

import "math"

// WeightedScore is one evaluated assignment as it enters the average:
// the recorded score and the size of the group it was shared with.
type WeightedScore struct {
	Score     int
	GroupSize int
}

// WeightedAverage computes sum(score_i / n_i) / sum(1 / n_i), weighting each
// assignment by the inverse of its group size, so work shared among more
// students counts proportionally less. Returns nil when there is nothing to
// average; zero is a real grade and must stay distinguishable from "no data".
func WeightedAverage(scores []WeightedScore) *float64 {
	var weightedSum, weightTotal float64

	for _, s := range scores {
		if s.GroupSize <= 0 {
			continue
		}
		weight := 1.0 / float64(s.GroupSize)
		weightedSum += float64(s.Score) * weight
		weightTotal += weight
	}

	if weightTotal == 0 {
		return nil
	}

	avg := Round2(weightedSum / weightTotal)
	return &avg
}

// Round2 rounds to two decimal places for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
