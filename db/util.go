package db

import "golang.org/x/exp/constraints"

// All returns true if all entries of `ar` return true from the predicate `pred`
func All[T any, A ~[]T](ar A, pred func(T) bool) bool {
	for _, a := range ar {
		if !pred(a) {
			return false
		}
	}
	return true
}

// FindAll finds all T's that satisfies predicate `pred` in `ar`, if none is
// found an empty slice is returned (not nil!)
func FindAll[T any, A ~[]T](ar A, pred func(t T) bool) []T {
	ts := []T{}
	for _, t := range ar {
		if pred(t) {
			ts = append(ts, t)
		}
	}
	return ts
}

func RemoveIf[T any, A ~[]T](ar A, pred func(t T) bool) []T {
	newar := []T{}
	for _, a := range ar {
		if !pred(a) {
			newar = append(newar, a)
		}
	}
	return newar
}

// Sum adds up the value returned by `get` for every element of `ar`
func Sum[T any, N constraints.Integer | constraints.Float, A ~[]T](ar A, get func(T) N) N {
	var sum N
	for _, a := range ar {
		sum += get(a)
	}
	return sum
}
