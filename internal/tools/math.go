package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
)

const binaryParams = `{
	"type": "object",
	"properties": {
		"a": {"type": "number", "description": "First operand"},
		"b": {"type": "number", "description": "Second operand"}
	},
	"required": ["a", "b"]
}`

type binaryArgs struct {
	A *float64 `json:"a"`
	B *float64 `json:"b"`
}

func (a binaryArgs) values() (float64, float64, error) {
	if a.A == nil || a.B == nil {
		return 0, 0, errors.New("both a and b are required")
	}
	return *a.A, *a.B, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func binary(name, description string, op func(a, b float64) (float64, error)) Tool {
	return newTool(name, description, binaryParams, func(_ context.Context, args binaryArgs) (string, error) {
		a, b, err := args.values()
		if err != nil {
			return "", err
		}
		v, err := op(a, b)
		if err != nil {
			return "", err
		}
		return formatNumber(v), nil
	})
}

// MathTools returns the arithmetic tools.
func MathTools() []Tool {
	return []Tool{
		binary("add", "Add two numbers", func(a, b float64) (float64, error) { return a + b, nil }),
		binary("subtract", "Subtract b from a", func(a, b float64) (float64, error) { return a - b, nil }),
		binary("multiply", "Multiply two numbers", func(a, b float64) (float64, error) { return a * b, nil }),
		binary("divide", "Divide a by b", func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, errors.New("cannot divide by zero")
			}
			return a / b, nil
		}),
		binary("power", "Raise a to the power of b", func(a, b float64) (float64, error) {
			v := math.Pow(a, b)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("%s^%s is not a finite number", formatNumber(a), formatNumber(b))
			}
			return v, nil
		}),
		newTool("factorial", "Compute n! for a non-negative integer n",
			`{"type":"object","properties":{"n":{"type":"integer","description":"Non-negative integer, at most 170"}},"required":["n"]}`,
			func(_ context.Context, args struct {
				N *float64 `json:"n"`
			}) (string, error) {
				if args.N == nil {
					return "", errors.New("n is required")
				}
				n := *args.N
				switch {
				case n < 0:
					return "", errors.New("factorial is not defined for negative numbers")
				case n != math.Trunc(n):
					return "", errors.New("factorial requires an integer")
				case n > 170:
					return "", errors.New("factorial overflows for n > 170")
				}
				result := 1.0
				for i := 2.0; i <= n; i++ {
					result *= i
				}
				return formatNumber(result), nil
			}),
	}
}
