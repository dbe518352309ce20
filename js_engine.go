//go:build js_eval

package settings

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEngine struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSEngine constructs an Engine backed by goja.
func NewJSEngine(opts ...JSEngineOption) Engine {
	cfg := applyJSEngineOptions(opts)
	return &jsEngine{
		cache:    cfg.cache,
		registry: cfg.registry,
	}
}

func (e *jsEngine) Name() string { return EngineJS }

func (e *jsEngine) Evaluate(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, wrapEngineError(EngineJS, fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaultNow()
	if e.cache == nil {
		return e.run(ctx, expr, nil)
	}
	program, err := e.loadOrCompile(expr)
	if err != nil {
		return nil, wrapEvalError(EngineJS, expr, ctx.Section, err)
	}
	return e.run(ctx, expr, program)
}

func (e *jsEngine) loadOrCompile(expr string) (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expr); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", e.wrapExpression(expr), false)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(expr, program)
	}
	return program, nil
}

func (e *jsEngine) run(ctx RuleContext, expr string, program *goja.Program) (any, error) {
	vm := goja.New()
	e.injectContext(vm, ctx)
	if program != nil {
		value, err := vm.RunProgram(program)
		if err != nil {
			return nil, wrapEvalError(EngineJS, expr, ctx.Section, err)
		}
		return value.Export(), nil
	}
	value, err := vm.RunString(e.wrapExpression(expr))
	if err != nil {
		return nil, wrapEvalError(EngineJS, expr, ctx.Section, err)
	}
	return value.Export(), nil
}

func (e *jsEngine) injectContext(vm *goja.Runtime, ctx RuleContext) {
	vm.Set("now", ctx.timestamp())
	vm.Set("section", ctx.Section)
	vm.Set("field", ctx.Field)
	vm.Set("value", ctx.payload())
	vm.Set("document", documentAsMap(ctx.Document))
	for key, value := range ctx.payload() {
		vm.Set(key, value)
	}
	if e.registry != nil {
		vm.Set("call", func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		})
		for _, name := range e.registry.Names() {
			fn := name
			vm.Set(fn, func(arguments ...any) (any, error) {
				return e.registry.Call(fn, arguments...)
			})
		}
	}
}

func (e *jsEngine) wrapExpression(expr string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expr)
}

func jsEngineAvailable() bool {
	return true
}
