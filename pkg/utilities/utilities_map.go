package utilities

// Map applies fn to every element of arr and returns the results in the
// same order.
func Map[T any, U any](arr []T, fn func(T) U) []U {
	mapped := make([]U, len(arr))
	for i, x := range arr {
		mapped[i] = fn(x)
	}
	return mapped
}
