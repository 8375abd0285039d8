package store

import (
	"fmt"

	"github.com/aretw0/statekit/pkg/domain"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// CompilePredicate compiles a boolean expression evaluated against an entity,
// e.g. `completed == false && title startsWith "a"`. Entity fields are
// variables; a missing field evaluates to nil.
func CompilePredicate(expression string) (func(domain.Tree) bool, error) {
	program, err := expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("invalid predicate %q: %w", expression, err)
	}
	return func(e domain.Tree) bool {
		return runPredicate(program, e)
	}, nil
}

// WhereExpr is Where with a compiled expression.
func WhereExpr(expression string) (AllOption, error) {
	pred, err := CompilePredicate(expression)
	if err != nil {
		return nil, err
	}
	return Where(pred), nil
}

func runPredicate(program *vm.Program, e domain.Tree) bool {
	if e == nil {
		e = domain.Tree{}
	}
	out, err := expr.Run(program, e)
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}
