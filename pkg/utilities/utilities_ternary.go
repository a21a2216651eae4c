package utilities

// Ternary returns evalTrue when cond holds, evalFalse otherwise. Both
// arguments are evaluated before the call, so neither may have side
// effects that depend on cond.
func Ternary[T any](cond bool, evalTrue, evalFalse T) T {
	if cond {
		return evalTrue
	}
	return evalFalse
}
