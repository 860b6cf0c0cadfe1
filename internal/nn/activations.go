package nn

import "math"

// Sigmoid is the logistic curve tending towards 0 for negative inputs and 1
// for positive inputs.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// InverseSigmoid is the logit, defined only for x in (0, 1). Out-of-domain
// inputs produce a non-finite result; callers guard the domain themselves.
// Useful for seeding a bias from a desired output level, not used on the tick
// path.
func InverseSigmoid(x float64) float64 {
	return math.Log(x / (1.0 - x))
}

// ReLU is 0 for negative inputs and x otherwise.
func ReLU(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func initializeBuiltInActivations() {
	MustRegisterActivation("identity", func(x float64) float64 { return x })
	MustRegisterActivation("relu", ReLU)
	MustRegisterActivation("tanh", math.Tanh)
	MustRegisterActivation("sigmoid", Sigmoid)
}
