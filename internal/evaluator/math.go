package evaluator

import "github.com/chewxy/math32"

// expf wraps math32.Exp so evaluator.go reads as plain arithmetic; kept in
// its own file so the math32 import is easy to spot.
func expf(x float32) float32 {
	return math32.Exp(x)
}
