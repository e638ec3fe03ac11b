package celengine

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/cel-go/cel"
)

const (
	VarWeight   = "weight"
	VarMaterial = "material"
)

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

// RateEnv returns the shared environment for earnings expressions:
// weight (double, kg) and material (string).
func RateEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable(VarWeight, cel.DoubleType),
			cel.Variable(VarMaterial, cel.StringType),
		)
	})
	return env, envErr
}

// Compile checks expr and requires it to produce a double.
func Compile(expr string) (cel.Program, error) {
	e, err := RateEnv()
	if err != nil {
		return nil, err
	}

	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}

	if !ast.OutputType().IsExactType(cel.DoubleType) {
		return nil, fmt.Errorf("expression must evaluate to double, got %s", ast.OutputType())
	}

	return e.Program(ast)
}

func Evaluate(prg cel.Program, material string, weight float64) (float64, error) {
	out, _, err := prg.Eval(map[string]any{
		VarWeight:   weight,
		VarMaterial: material,
	})
	if err != nil {
		return 0, err
	}

	v, ok := out.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("expected double from expression, got %T (%v)", out.Value(), out.Value())
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("expression produced invalid amount %v", v)
	}

	return v, nil
}
