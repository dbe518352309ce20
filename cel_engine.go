package settings

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// EngineCEL names the cel-go backend.
const EngineCEL = "cel"

// maxCallArgs bounds the number of arguments accepted by the registry-backed
// call() function, since each arity needs its own CEL overload.
const maxCallArgs = 8

// CELEngineOption configures the CEL engine.
type CELEngineOption func(*celEngine)

// CELWithProgramCache wires a ProgramCache into the CEL engine.
func CELWithProgramCache(cache ProgramCache) CELEngineOption {
	return func(e *celEngine) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL engine.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEngineOption {
	return func(e *celEngine) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEngine struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEngine constructs an Engine backed by cel-go.
func NewCELEngine(opts ...CELEngineOption) Engine {
	e := &celEngine{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEngine) Name() string { return EngineCEL }

func (e *celEngine) Evaluate(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, wrapEngineError(EngineCEL, fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaultNow()
	payload := ctx.payload()
	program, err := e.loadOrCompile(ctx.Section, expr, payload)
	if err != nil {
		return nil, wrapEvalError(EngineCEL, expr, ctx.Section, err)
	}
	out, _, err := program.program.Eval(e.activation(ctx, payload))
	if err != nil {
		return nil, wrapEvalError(EngineCEL, expr, ctx.Section, err)
	}
	return out.Value(), nil
}

// Compiled programs declare one variable per payload key, so the cache key
// includes the section name to keep programs from leaking across sections
// with different shapes.
func (e *celEngine) loadOrCompile(section, expr string, payload map[string]any) (*celProgram, error) {
	cacheKey := section + "\x00" + expr
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(payload)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(cacheKey, bundle)
	}
	return bundle, nil
}

func (e *celEngine) buildEnv(payload map[string]any) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("section", celgo.StringType),
		celgo.Variable("field", celgo.StringType),
		celgo.Variable("value", celgo.DynType),
		celgo.Variable("document", celgo.DynType),
	}
	if e.registry != nil {
		// CEL overloads are fixed-arity, so the variadic call(name, args...)
		// declaration is expanded into one overload per supported arity.
		binding := e.callBinding()
		callOpts := make([]celgo.FunctionOpt, 0, maxCallArgs+1)
		argTypes := []*celgo.Type{celgo.StringType}
		for i := 0; i <= maxCallArgs; i++ {
			callOpts = append(callOpts, celgo.Overload(
				fmt.Sprintf("call_dyn_%d", i),
				append([]*celgo.Type(nil), argTypes...),
				celgo.DynType,
				celgo.FunctionBinding(binding),
			))
			argTypes = append(argTypes, celgo.DynType)
		}
		opts = append(opts, celgo.Function("call", callOpts...))
	}
	for key := range payload {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEngine) activation(ctx RuleContext, payload map[string]any) map[string]any {
	activation := map[string]any{
		"now":      ctx.timestamp(),
		"section":  ctx.Section,
		"field":    ctx.Field,
		"value":    payload,
		"document": documentAsMap(ctx.Document),
	}
	for key, value := range payload {
		activation[key] = value
	}
	if e.registry != nil {
		activation["call"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		}
	}
	return activation
}

func (e *celEngine) callBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("settings: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("settings: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("settings: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr(err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

func documentAsMap(doc Document) map[string]any {
	if doc == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(doc))
	for section, payload := range doc {
		out[section] = payload
	}
	return out
}
