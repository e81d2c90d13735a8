package parallel

import (
	"cmp"

	"github.com/utkarsh5026/forkpool/pool"
)

// sortGrain is the slice length below which merge sort switches to
// insertion sort.
const sortGrain = 32

// MergeSort sorts xs in ascending order.
func MergeSort[T cmp.Ordered](s pool.Scope, xs []T) {
	MergeSortFunc(s, xs, cmp.Compare[T])
}

// MergeSortFunc sorts xs with a parallel top-down merge sort. The sort is
// stable. compare returns a negative number when a < b, zero when equal and a
// positive number when a > b.
func MergeSortFunc[T any](s pool.Scope, xs []T, compare func(a, b T) int) {
	if len(xs) < 2 {
		return
	}

	buf := make([]T, len(xs))
	pool.Run(s, func(s pool.Scope) struct{} {
		mergeSort(s, xs, buf, compare)
		return struct{}{}
	})
}

// mergeSort sorts xs using buf, which has the same length, as scratch space.
func mergeSort[T any](s pool.Scope, xs, buf []T, compare func(a, b T) int) {
	if len(xs) <= sortGrain {
		insertionSort(xs, compare)
		return
	}

	mid := len(xs) / 2
	pool.Join(s,
		func(s pool.Scope) struct{} { mergeSort(s, xs[:mid], buf[:mid], compare); return struct{}{} },
		func(s pool.Scope) struct{} { mergeSort(s, xs[mid:], buf[mid:], compare); return struct{}{} },
	)

	// Already ordered halves need no merge.
	if compare(xs[mid-1], xs[mid]) <= 0 {
		return
	}

	merge(xs[:mid], xs[mid:], buf, compare)
	copy(xs, buf)
}

// merge writes the stable merge of the sorted slices a and b into dst.
func merge[T any](a, b, dst []T, compare func(a, b T) int) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if compare(b[j], a[i]) < 0 {
			dst[k] = b[j]
			j++
		} else {
			dst[k] = a[i]
			i++
		}
		k++
	}
	k += copy(dst[k:], a[i:])
	copy(dst[k:], b[j:])
}

func insertionSort[T any](xs []T, compare func(a, b T) int) {
	for i := 1; i < len(xs); i++ {
		x := xs[i]
		j := i
		for j > 0 && compare(xs[j-1], x) > 0 {
			xs[j] = xs[j-1]
			j--
		}
		xs[j] = x
	}
}
