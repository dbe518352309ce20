package settings

import (
	"errors"
	"testing"
	"time"
)

type mapCache struct {
	entries map[string]any
	hits    int
	misses  int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]any{}}
}

func (c *mapCache) Get(key string) (any, bool) {
	value, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return value, ok
}

func (c *mapCache) Set(key string, value any) {
	c.entries[key] = value
}

func TestExprEngineEvaluatesPayloadVariables(t *testing.T) {
	engine := NewExprEngine()
	ctx := RuleContext{
		Section: "design",
		Field:   "theme",
		Value:   map[string]any{"theme": "dark", "fontFamily": "serif"},
	}

	tests := []struct {
		expr string
		want bool
	}{
		{`theme in ["light", "dark"]`, true},
		{`theme == "neon"`, false},
		{`fontFamily == "serif" && theme == "dark"`, true},
		{`section == "design"`, true},
		{`field == "theme"`, true},
		{`value.theme == "dark"`, true},
	}
	for _, tc := range tests {
		result, err := engine.Evaluate(ctx, tc.expr)
		if err != nil {
			t.Fatalf("%s: %v", tc.expr, err)
		}
		if result != tc.want {
			t.Fatalf("%s = %v, want %v", tc.expr, result, tc.want)
		}
	}
}

func TestExprEngineDocumentAccess(t *testing.T) {
	engine := NewExprEngine()
	ctx := RuleContext{
		Section: "notifications",
		Value:   map[string]any{"emailEnabled": true},
		Document: Document{
			"notifications": {"emailEnabled": true},
			"settings":      {"storeName": "Acme"},
		},
	}

	result, err := engine.Evaluate(ctx, `document.settings.storeName == "Acme"`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result != true {
		t.Fatalf("result = %v", result)
	}
}

func TestExprEngineNowInjected(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := NewExprEngine()
	result, err := engine.Evaluate(RuleContext{
		Section: "content",
		Value:   map[string]any{},
		Now:     &frozen,
	}, `now.Year() == 2026`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result != true {
		t.Fatalf("result = %v", result)
	}
}

func TestExprEngineEmptyExpression(t *testing.T) {
	engine := NewExprEngine()
	if _, err := engine.Evaluate(RuleContext{Section: "design"}, ""); err == nil {
		t.Fatal("empty expression should error")
	}
}

func TestExprEngineBadExpressionWrapsEvalError(t *testing.T) {
	engine := NewExprEngine()
	_, err := engine.Evaluate(RuleContext{Section: "design", Value: map[string]any{}}, `theme ==`)
	if err == nil {
		t.Fatal("malformed expression should error")
	}
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvalError, got %T: %v", err, err)
	}
	if evalErr.Engine != EngineExpr || evalErr.Section != "design" {
		t.Fatalf("metadata missing: %+v", evalErr)
	}
}

func TestExprEngineProgramCache(t *testing.T) {
	cache := newMapCache()
	engine := NewExprEngine(ExprWithProgramCache(cache))
	ctx := RuleContext{Section: "design", Value: map[string]any{"theme": "dark"}}

	for i := 0; i < 3; i++ {
		result, err := engine.Evaluate(ctx, `theme == "dark"`)
		if err != nil {
			t.Fatalf("evaluate %d: %v", i, err)
		}
		if result != true {
			t.Fatalf("result %d = %v", i, result)
		}
	}
	if cache.hits != 2 {
		t.Fatalf("cache hits = %d, want 2", cache.hits)
	}
	if len(cache.entries) != 1 {
		t.Fatalf("cache entries = %d, want 1", len(cache.entries))
	}
}

func TestExprEngineFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	err := registry.Register("validhex", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, errors.New("validhex takes one argument")
		}
		s, ok := args[0].(string)
		if !ok {
			return false, nil
		}
		return len(s) == 7 && s[0] == '#', nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	engine := NewExprEngine(ExprWithFunctionRegistry(registry))
	ctx := RuleContext{Section: "design", Value: map[string]any{"primaryColor": "#1a73e8"}}

	result, err := engine.Evaluate(ctx, `validhex(primaryColor)`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result != true {
		t.Fatalf("result = %v", result)
	}

	result, err = engine.Evaluate(ctx, `call("validhex", "oops")`)
	if err != nil {
		t.Fatalf("evaluate via call: %v", err)
	}
	if result != false {
		t.Fatalf("call result = %v", result)
	}
}
