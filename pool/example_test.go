package pool_test

import (
	"errors"
	"fmt"

	"github.com/utkarsh5026/forkpool/pool"
)

func fib(s pool.Scope, n int) int {
	if n < 2 {
		return n
	}
	a, b := pool.Join(s,
		func(s pool.Scope) int { return fib(s, n-1) },
		func(s pool.Scope) int { return fib(s, n-2) },
	)
	return a + b
}

func ExampleJoin() {
	p, err := pool.New(4)
	if err != nil {
		panic(err)
	}
	defer p.Close()

	a, b := pool.Join(p,
		func(s pool.Scope) int { return fib(s, 10) },
		func(s pool.Scope) int { return fib(s, 15) },
	)
	fmt.Println(a, b)
	// Output: 55 610
}

func ExampleTryJoin() {
	p, err := pool.New(2)
	if err != nil {
		panic(err)
	}
	defer p.Close()

	_, _, err = pool.TryJoin(p,
		func(pool.Scope) int { return 1 },
		func(pool.Scope) int { panic("out of range") },
	)

	var tp *pool.TaskPanic
	if errors.As(err, &tp) {
		fmt.Println("recovered:", tp.Value)
	}
	// Output: recovered: out of range
}

func ExampleNew_invalid() {
	_, err := pool.New(0)
	fmt.Println(errors.Is(err, pool.ErrInvalidParallelism))
	// Output: true
}
