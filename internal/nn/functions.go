package nn

import (
	"fmt"
	"math"
)

// Sat clamps value to [min, max].
func Sat(value, max, min float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// SatDeadZone clamps value to [min, max] while zeroing values inside dead-zone bounds.
func SatDeadZone(value, max, min, deadZoneMax, deadZoneMin float64) float64 {
	if value < deadZoneMax && value > deadZoneMin {
		return 0
	}
	return Sat(value, max, min)
}

// ScaleValue maps value from [min, max] to [-1, 1].
func ScaleValue(value, max, min float64) float64 {
	if max == min {
		return 0
	}
	return (value*2 - (max + min)) / (max - min)
}

// ScaleSlice maps each value from [min, max] to [-1, 1].
func ScaleSlice(values []float64, max, min float64) []float64 {
	out := make([]float64, len(values))
	for i, value := range values {
		out[i] = ScaleValue(value, max, min)
	}
	return out
}

// Avg returns the arithmetic mean of values.
func Avg(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("values must not be empty")
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values)), nil
}

// Std returns population standard deviation.
func Std(values []float64) (float64, error) {
	mean, err := Avg(values)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, value := range values {
		diff := mean - value
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values))), nil
}
