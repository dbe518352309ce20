package settings

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// EngineExpr names the expr-lang backend.
const EngineExpr = "expr"

// ExprEngineOption configures an expr engine instance.
type ExprEngineOption func(*exprEngine)

// ExprWithProgramCache wires a ProgramCache into the expr engine.
func ExprWithProgramCache(cache ProgramCache) ExprEngineOption {
	return func(e *exprEngine) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr engine.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEngineOption {
	return func(e *exprEngine) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// exprEngine evaluates rule predicates using github.com/expr-lang/expr.
type exprEngine struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewExprEngine constructs an Engine backed by expr-lang/expr.
func NewExprEngine(opts ...ExprEngineOption) Engine {
	e := &exprEngine{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEngine) Name() string { return EngineExpr }

// Evaluate compiles and runs expr against the section payload. Payload keys
// are exposed as top-level variables so rules read naturally, e.g.
// `theme in ["light", "dark"]`.
func (e *exprEngine) Evaluate(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, wrapEngineError(EngineExpr, fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaultNow()
	env := e.environment(ctx)
	if e.cache == nil {
		result, err := exprlang.Eval(expr, env)
		if err != nil {
			return nil, wrapEvalError(EngineExpr, expr, ctx.Section, err)
		}
		return result, nil
	}
	program, err := e.loadOrCompile(expr)
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return nil, wrapEvalError(EngineExpr, expr, ctx.Section, err)
	}
	return result, nil
}

func (e *exprEngine) loadOrCompile(expr string) (*exprvm.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expr); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range e.registryNames() {
		fn := e.registryFunction(name)
		options = append(options, exprlang.Function(name, fn))
	}
	program, err := exprlang.Compile(expr, options...)
	if err != nil {
		return nil, wrapEvalError(EngineExpr, expr, "", err)
	}
	if e.cache != nil {
		e.cache.Set(expr, program)
	}
	return program, nil
}

func (e *exprEngine) environment(ctx RuleContext) map[string]any {
	env := map[string]any{
		"now":     ctx.timestamp(),
		"section": ctx.Section,
		"field":   ctx.Field,
		"value":   ctx.payload(),
	}
	if ctx.Document != nil {
		env["document"] = map[string]map[string]any(ctx.Document)
	}
	for key, value := range ctx.payload() {
		env[key] = value
	}
	if e.registry != nil {
		env["call"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		}
		for _, name := range e.registry.Names() {
			fn := name
			env[fn] = func(arguments ...any) (any, error) {
				return e.registry.Call(fn, arguments...)
			}
		}
	}
	return env
}

func (e *exprEngine) registryNames() []string {
	if e == nil || e.registry == nil {
		return nil
	}
	return e.registry.Names()
}

func (e *exprEngine) registryFunction(name string) func(...any) (any, error) {
	if e == nil || e.registry == nil {
		return nil
	}
	return func(arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}
}
