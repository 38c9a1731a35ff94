package scoring

import "math"

// Clamp limits v to [0, 1]. Every normalized component passes through
// here before weighting, so sparse or extreme inputs can never push a
// pillar outside its range.
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SafeDiv divides num by denom with the denominator floored to 1, so a
// month with zero income or zero expenses never produces NaN or Inf.
func SafeDiv(num, denom float64) float64 {
	if denom < 1 {
		denom = 1
	}
	return num / denom
}

// Mean returns the arithmetic mean of vs, or 0 for an empty slice.
func Mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// StdDev returns the population standard deviation of vs, or 0 for
// fewer than two values.
func StdDev(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	m := Mean(vs)
	var sq float64
	for _, v := range vs {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vs)))
}
