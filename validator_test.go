package settings

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func mustRules(t *testing.T, data string) RuleSet {
	t.Helper()
	rs, err := ParseRules([]byte(data))
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	return rs
}

func TestRuleValidatorSectionPass(t *testing.T) {
	v := NewRuleValidator(mustRules(t, `
[[sections.design.rules]]
field = "theme"
expr = 'theme in ["light", "dark"]'
message = "theme must be light or dark"
`))

	if err := v.ValidateSection("design", map[string]any{"theme": "dark"}); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
}

func TestRuleValidatorSectionFailCarriesFieldDetail(t *testing.T) {
	v := NewRuleValidator(mustRules(t, `
[[sections.design.rules]]
field = "theme"
expr = 'theme in ["light", "dark"]'
message = "theme must be light or dark"
`))

	err := v.ValidateSection("design", map[string]any{"theme": "neon"})
	if err == nil {
		t.Fatal("invalid payload accepted")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Fields) != 1 {
		t.Fatalf("fields = %v", verr.Fields)
	}
	field := verr.Fields[0]
	if field.Path != "theme" || field.Message != "theme must be light or dark" {
		t.Fatalf("unexpected field error: %+v", field)
	}
	if field.Value != "neon" {
		t.Fatalf("offending value not captured: %v", field.Value)
	}
}

func TestRuleValidatorRequiredKeys(t *testing.T) {
	v := NewRuleValidator(mustRules(t, `
[sections.settings]
required = ["storeName", "currency"]
`))

	err := v.ValidateSection("settings", map[string]any{"storeName": "Acme"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Path != "currency" {
		t.Fatalf("fields = %v", verr.Fields)
	}
}

func TestRuleValidatorUndeclaredSectionPasses(t *testing.T) {
	v := NewRuleValidator(mustRules(t, `
[[sections.design.rules]]
field = "theme"
expr = "false"
`))
	if err := v.ValidateSection("content", map[string]any{"anything": "goes"}); err != nil {
		t.Fatalf("undeclared section rejected: %v", err)
	}
}

func TestRuleValidatorUnregisteredEngine(t *testing.T) {
	rs := RuleSet{Sections: map[string]SectionRules{
		"design": {Rules: []Rule{{Field: "theme", Expr: "true", Engine: "cel", Message: "bad"}}},
	}}
	v := NewRuleValidator(rs)

	err := v.ValidateSection("design", map[string]any{"theme": "light"})
	if err == nil || !strings.Contains(err.Error(), "rule failed to evaluate") {
		t.Fatalf("expected evaluation failure, got %v", err)
	}

	withCEL := NewRuleValidator(rs, WithEngine(NewCELEngine()))
	if err := withCEL.ValidateSection("design", map[string]any{"theme": "light"}); err != nil {
		t.Fatalf("cel-backed rule rejected: %v", err)
	}
}

func TestRuleValidatorNonBooleanResult(t *testing.T) {
	v := NewRuleValidator(mustRules(t, `
[[sections.design.rules]]
field = "theme"
expr = "1 + 1"
`))
	err := v.ValidateSection("design", map[string]any{"theme": "light"})
	if err == nil || !strings.Contains(err.Error(), "want bool") {
		t.Fatalf("expected non-bool failure, got %v", err)
	}
}

func TestRuleValidatorDocumentPrefixesPaths(t *testing.T) {
	v := NewRuleValidator(mustRules(t, `
[[sections.design.rules]]
field = "theme"
expr = 'theme in ["light", "dark"]'
message = "theme must be light or dark"

[[sections.security.rules]]
field = "sessionTimeoutMinutes"
expr = "sessionTimeoutMinutes >= 5"
message = "too short"
`))

	_, err := v.ValidateDocument(Document{
		"design":   {"theme": "neon"},
		"security": {"sessionTimeoutMinutes": 1},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("fields = %v", verr.Fields)
	}
	paths := map[string]bool{}
	for _, field := range verr.Fields {
		paths[field.Path] = true
	}
	if !paths["design.theme"] || !paths["security.sessionTimeoutMinutes"] {
		t.Fatalf("paths not section-prefixed: %v", paths)
	}
}

func TestRuleValidatorDocumentSkipsAbsentOptionalSections(t *testing.T) {
	v := NewRuleValidator(mustRules(t, `
[[sections.notifications.rules]]
field = "senderAddress"
expr = "senderAddress contains '@'"
`))

	if _, err := v.ValidateDocument(Document{"design": {"theme": "light"}}); err != nil {
		t.Fatalf("absent optional section rejected: %v", err)
	}
}

func TestRuleValidatorDocumentRequiredSectionMustExist(t *testing.T) {
	v := NewRuleValidator(mustRules(t, `
[sections.settings]
required = ["storeName"]
`))

	_, err := v.ValidateDocument(Document{"design": {"theme": "light"}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields[0].Path != "settings.storeName" {
		t.Fatalf("path = %q", verr.Fields[0].Path)
	}
}

func TestRuleValidatorNormalizeFillsDefaults(t *testing.T) {
	v := NewRuleValidator(mustRules(t, `
[sections.design.defaults]
theme = "light"
fontFamily = "sans-serif"
`))

	normalized, err := v.ValidateDocument(Document{"design": {"theme": "dark"}})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if normalized["design"]["theme"] != "dark" {
		t.Fatal("default overwrote an existing value")
	}
	if normalized["design"]["fontFamily"] != "sans-serif" {
		t.Fatal("missing key not defaulted")
	}
}

func TestRuleValidatorNormalizeDoesNotMutateInput(t *testing.T) {
	v := NewRuleValidator(mustRules(t, `
[sections.design.defaults]
fontFamily = "sans-serif"
`))

	input := Document{"design": {"theme": "dark"}}
	if _, err := v.ValidateDocument(input); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, ok := input["design"]["fontFamily"]; ok {
		t.Fatal("normalization mutated the input document")
	}
}

func TestRuleValidatorEngineLogger(t *testing.T) {
	var events []EngineLogEvent
	v := NewRuleValidator(mustRules(t, `
[[sections.design.rules]]
field = "theme"
expr = 'theme == "light"'
`), WithEngineLogger(EngineLoggerFunc(func(event EngineLogEvent) {
		events = append(events, event)
	})))

	if err := v.ValidateSection("design", map[string]any{"theme": "light"}); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one log event, got %d", len(events))
	}
	ev := events[0]
	if ev.Engine != EngineExpr || ev.Section != "design" || ev.Field != "theme" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Err != nil {
		t.Fatalf("event error: %v", ev.Err)
	}
	if ev.Duration < 0 || ev.Duration > time.Minute {
		t.Fatalf("implausible duration: %v", ev.Duration)
	}
}

func TestNoopValidatorAcceptsEverything(t *testing.T) {
	v := NoopValidator{}
	if err := v.ValidateSection("design", map[string]any{"theme": 42}); err != nil {
		t.Fatalf("noop rejected a section: %v", err)
	}
	doc := Document{"anything": {"goes": true}}
	normalized, err := v.ValidateDocument(doc)
	if err != nil {
		t.Fatalf("noop rejected a document: %v", err)
	}
	if !normalized.Equal(doc) {
		t.Fatal("noop changed the document")
	}
}
