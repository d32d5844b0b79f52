// Package stats provides the scalar statistics shared by the anomaly
// detectors: moments, z-scores, and least-squares trend fits.
package stats

import "math"

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStdDev returns the sample standard deviation (n-1 denominator).
// Fewer than two values yield 0.
func SampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	var acc float64
	for _, v := range values {
		d := v - mean
		acc += d * d
	}
	return math.Sqrt(acc / float64(n-1))
}

// PopStdDev returns the population standard deviation (n denominator).
func PopStdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := Mean(values)
	var acc float64
	for _, v := range values {
		d := v - mean
		acc += d * d
	}
	return math.Sqrt(acc / float64(n))
}

// ZScore returns |value-mean|/std, or 0 when std is not positive.
func ZScore(value, mean, std float64) float64 {
	if std <= 0 {
		return 0
	}
	return math.Abs((value - mean) / std)
}

// LinearFit fits y = slope*x + intercept over y with x = 0..len(y)-1.
func LinearFit(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	if len(y) < 2 {
		if len(y) == 1 {
			return 0, y[0]
		}
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, Mean(y)
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// QuadraticFit fits y = a*x^2 + b*x + c over y with x = 0..len(y)-1 by
// solving the normal equations with Cramer's rule. Fewer than three points
// collapse to the linear fit with a = 0.
func QuadraticFit(y []float64) (a, b, c float64) {
	if len(y) < 3 {
		b, c = LinearFit(y)
		return 0, b, c
	}

	n := float64(len(y))
	var s1, s2, s3, s4 float64
	var t0, t1, t2 float64
	for i, v := range y {
		x := float64(i)
		x2 := x * x
		s1 += x
		s2 += x2
		s3 += x2 * x
		s4 += x2 * x2
		t0 += v
		t1 += x * v
		t2 += x2 * v
	}

	det := func(a11, a12, a13, a21, a22, a23, a31, a32, a33 float64) float64 {
		return a11*(a22*a33-a23*a32) - a12*(a21*a33-a23*a31) + a13*(a21*a32-a22*a31)
	}

	d := det(s4, s3, s2, s3, s2, s1, s2, s1, n)
	if d == 0 {
		b, c = LinearFit(y)
		return 0, b, c
	}

	a = det(t2, s3, s2, t1, s2, s1, t0, s1, n) / d
	b = det(s4, t2, s2, s3, t1, s1, s2, t0, n) / d
	c = det(s4, s3, t2, s3, s2, t1, s2, s1, t0) / d
	return a, b, c
}

// Clamp01 restricts v to the [0,1] interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
