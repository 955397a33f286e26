// Package rules compiles and evaluates the CEL expressions that drive
// responsive column visibility ("hide this column below 80 cells"). Rules
// see the viewport, not the data: the variables are the available width
// and the registered column count. The allocator core knows nothing about
// rules; hosts evaluate them on viewport changes and push the outcome
// through SetVisibility.
package rules

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
	celext "github.com/google/cel-go/ext"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Variable names available to visibility rules.
const (
	VarWidth   = "width"   // available width offered to the column region (double)
	VarColumns = "columns" // number of registered columns (int)
)

// Env carries the viewport facts a rule is evaluated against.
type Env struct {
	Width   float64
	Columns int
}

// Engine compiles visibility rules against a fixed CEL environment.
type Engine struct {
	env *cel.Env
}

// NewEngine creates a rule engine with the viewport variables and the
// strings/math extension libraries enabled.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarWidth, cel.DoubleType),
		cel.Variable(VarColumns, cel.IntType),
		celext.Strings(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Engine{env: env}, nil
}

// Rule is one compiled visibility expression.
type Rule struct {
	expr string
	prg  cel.Program
	vars []string
}

// Compile parses and type-checks expr, rejecting anything that does not
// evaluate to a boolean.
func (e *Engine) Compile(expr string) (Rule, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return Rule{}, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return Rule{}, fmt.Errorf("visibility rule %q must evaluate to bool, got %s", expr, ast.OutputType())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return Rule{}, fmt.Errorf("program error: %w", err)
	}
	return Rule{expr: expr, prg: prg, vars: referencedVariables(ast)}, nil
}

// Expr returns the original expression text.
func (r Rule) Expr() string { return r.expr }

// Variables returns the sorted viewport variables the rule references.
// Hosts can skip re-evaluation when none of them changed.
func (r Rule) Variables() []string {
	return append([]string(nil), r.vars...)
}

// DependsOn reports whether the rule references the named variable.
func (r Rule) DependsOn(name string) bool {
	for _, v := range r.vars {
		if v == name {
			return true
		}
	}
	return false
}

// Eval runs the rule against the viewport env.
func (r Rule) Eval(env Env) (bool, error) {
	if r.prg == nil {
		return false, fmt.Errorf("rule is not compiled")
	}
	out, _, err := r.prg.Eval(map[string]interface{}{
		VarWidth:   env.Width,
		VarColumns: env.Columns,
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	visible, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q returned %T, want bool", r.expr, out.Value())
	}
	return visible, nil
}

// referencedVariables walks the checked proto AST and collects the declared
// viewport variables the expression mentions.
func referencedVariables(ast *cel.Ast) []string {
	checked, err := cel.AstToCheckedExpr(ast)
	if err != nil || checked.GetExpr() == nil {
		return nil
	}

	declared := map[string]bool{VarWidth: true, VarColumns: true}
	seen := map[string]bool{}

	var walk func(e *exprpb.Expr)
	walk = func(e *exprpb.Expr) {
		if e == nil {
			return
		}
		switch e.ExprKind.(type) {
		case *exprpb.Expr_IdentExpr:
			if name := e.GetIdentExpr().GetName(); declared[name] {
				seen[name] = true
			}
		case *exprpb.Expr_SelectExpr:
			walk(e.GetSelectExpr().GetOperand())
		case *exprpb.Expr_CallExpr:
			call := e.GetCallExpr()
			walk(call.GetTarget())
			for _, arg := range call.GetArgs() {
				walk(arg)
			}
		case *exprpb.Expr_ListExpr:
			for _, elem := range e.GetListExpr().GetElements() {
				walk(elem)
			}
		case *exprpb.Expr_StructExpr:
			for _, entry := range e.GetStructExpr().GetEntries() {
				walk(entry.GetMapKey())
				walk(entry.GetValue())
			}
		case *exprpb.Expr_ComprehensionExpr:
			c := e.GetComprehensionExpr()
			walk(c.GetIterRange())
			walk(c.GetAccuInit())
			walk(c.GetLoopCondition())
			walk(c.GetLoopStep())
			walk(c.GetResult())
		}
	}
	walk(checked.GetExpr())

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
