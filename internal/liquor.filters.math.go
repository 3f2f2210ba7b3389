package internal

import (
	"errors"
	"math"
)

// Math filter names
const (
	FilterPlus      = "plus"
	FilterMinus     = "minus"
	FilterTimes     = "times"
	FilterDividedBy = "divided_by"
	FilterModulo    = "modulo"
	FilterAbs       = "abs"
	FilterCeil      = "ceil"
	FilterFloor     = "floor"
	FilterRound     = "round"
	FilterAtLeast   = "at_least"
	FilterAtMost    = "at_most"
)

// ErrDivisionByZero is returned by divided_by and modulo for a zero divisor
var ErrDivisionByZero = errors.New(ErrMsgDivisionByZero)

// Math error messages
const ErrMsgDivisionByZero = "division by zero"

func registerMathFilters(r *FilterRegistry) {
	r.MustRegister(&Filter{
		Name: FilterPlus, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return arithmetic(input, argAt(args, 0, nil), func(a, b float64) float64 { return a + b }), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterMinus, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return arithmetic(input, argAt(args, 0, nil), func(a, b float64) float64 { return a - b }), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterTimes, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return arithmetic(input, argAt(args, 0, nil), func(a, b float64) float64 { return a * b }), nil
		},
	})

	// divided_by truncates when both operands are integers
	r.MustRegister(&Filter{
		Name: FilterDividedBy, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			divisor := argAt(args, 0, nil)
			d, _ := ToNumber(divisor)
			if d == 0 {
				return nil, ErrDivisionByZero
			}
			n, _ := ToNumber(input)
			if isIntegral(input) && isIntegral(divisor) {
				return int(math.Floor(n / d)), nil
			}
			return n / d, nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterModulo, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			divisor := argAt(args, 0, nil)
			d, _ := ToNumber(divisor)
			if d == 0 {
				return nil, ErrDivisionByZero
			}
			return arithmetic(input, divisor, math.Mod), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterAbs, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			return unary(input, math.Abs), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterCeil, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			n, _ := ToNumber(input)
			return int(math.Ceil(n)), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterFloor, MinArgs: 0, MaxArgs: 0,
		Fn: func(input any, _ []any) (any, error) {
			n, _ := ToNumber(input)
			return int(math.Floor(n)), nil
		},
	})

	// round(x, digits=0)
	r.MustRegister(&Filter{
		Name: FilterRound, MinArgs: 0, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			n, _ := ToNumber(input)
			digits := intArg(args, 0, 0)
			if digits <= 0 {
				return int(math.Round(n)), nil
			}
			scale := math.Pow(10, float64(digits))
			return math.Round(n*scale) / scale, nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterAtLeast, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return arithmetic(input, argAt(args, 0, nil), math.Max), nil
		},
	})

	r.MustRegister(&Filter{
		Name: FilterAtMost, MinArgs: 1, MaxArgs: 1,
		Fn: func(input any, args []any) (any, error) {
			return arithmetic(input, argAt(args, 0, nil), math.Min), nil
		},
	})
}

// arithmetic applies op to two operands coerced to numbers. Non-numeric
// operands count as zero. The result is an int when both operands are.
func arithmetic(a, b any, op func(float64, float64) float64) any {
	x, _ := ToNumber(a)
	y, _ := ToNumber(b)
	result := op(x, y)
	if isIntegral(a) && isIntegral(b) {
		return int(result)
	}
	return result
}

// unary applies op to a number, keeping integers integral
func unary(a any, op func(float64) float64) any {
	x, _ := ToNumber(a)
	result := op(x)
	if isIntegral(a) {
		return int(result)
	}
	return result
}
