package settings

import "time"

// RuleContext carries the inputs an engine sees while evaluating one rule
// against a section payload.
type RuleContext struct {
	Section  string
	Field    string
	Value    map[string]any
	Document Document
	Now      *time.Time
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) payload() map[string]any {
	if ctx.Value == nil {
		return map[string]any{}
	}
	return ctx.Value
}

// Engine executes rule expressions against a rule context. Implementations
// must be pure with respect to the context: no I/O, deterministic results.
type Engine interface {
	Name() string
	Evaluate(ctx RuleContext, expr string) (any, error)
}

// ProgramCache stores compiled rule programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}
