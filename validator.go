package settings

import (
	"fmt"
	"time"
)

// Validator decides whether section payloads and whole documents are
// acceptable. Implementations must be pure: no side effects, no network,
// deterministic for a given input.
type Validator interface {
	// ValidateSection returns nil or a *ValidationError carrying field
	// detail. A single failing field rejects the entire section update.
	ValidateSection(section string, value map[string]any) error

	// ValidateDocument validates the whole document and may return a
	// normalized copy which, when validation passes, is authoritative over
	// the raw input.
	ValidateDocument(doc Document) (Document, error)
}

// ValidatorOption configures a RuleValidator.
type ValidatorOption func(*RuleValidator)

// WithEngine registers an additional engine (e.g. NewCELEngine()).
func WithEngine(engine Engine) ValidatorOption {
	return func(v *RuleValidator) {
		if engine == nil {
			return
		}
		v.engines[engine.Name()] = engine
	}
}

// WithEngineLogger attaches a logger receiving one event per evaluation.
func WithEngineLogger(logger EngineLogger) ValidatorOption {
	return func(v *RuleValidator) {
		if logger == nil {
			v.logger = noopEngineLogger{}
			return
		}
		v.logger = logger
	}
}

// RuleValidator evaluates a declarative RuleSet through pluggable
// expression engines. Sections with no declared rules pass untouched, as do
// unknown sections.
type RuleValidator struct {
	rules   RuleSet
	engines map[string]Engine
	logger  EngineLogger
}

// NewRuleValidator constructs a validator over rules. The expr engine is
// always registered; add CEL or JS backends via WithEngine.
func NewRuleValidator(rules RuleSet, opts ...ValidatorOption) *RuleValidator {
	v := &RuleValidator{
		rules: rules,
		engines: map[string]Engine{
			EngineExpr: NewExprEngine(),
		},
		logger: noopEngineLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// ValidateSection runs the section's required-key checks and rules against
// the candidate payload.
func (v *RuleValidator) ValidateSection(section string, value map[string]any) error {
	rules, ok := v.rules.Section(section)
	if !ok {
		return nil
	}
	verr := &ValidationError{}
	v.validatePayload(section, "", rules, value, verr)
	return verr.AsError()
}

// ValidateDocument validates every known section present in doc, then
// returns a normalized copy with declared defaults filled into missing
// keys. Unknown sections pass through unmodified.
func (v *RuleValidator) ValidateDocument(doc Document) (Document, error) {
	verr := &ValidationError{}
	for _, section := range KnownSections {
		rules, ok := v.rules.Section(section)
		if !ok {
			continue
		}
		payload := doc[section]
		if payload == nil && len(rules.Required) == 0 {
			continue
		}
		v.validatePayload(section, section, rules, payload, verr)
	}
	if err := verr.AsError(); err != nil {
		return nil, err
	}
	return v.normalize(doc), nil
}

func (v *RuleValidator) validatePayload(section, pathPrefix string, rules SectionRules, payload map[string]any, verr *ValidationError) {
	for _, key := range rules.Required {
		if _, ok := payload[key]; !ok {
			verr.Add(joinPath(pathPrefix, key), "required")
		}
	}
	if payload == nil {
		return
	}
	ctx := RuleContext{
		Section: section,
		Value:   payload,
	}
	for _, rule := range rules.Rules {
		ctx.Field = rule.Field
		pass, err := v.evaluate(ctx, rule)
		if err != nil {
			verr.Add(joinPath(pathPrefix, rule.Field), fmt.Sprintf("rule failed to evaluate: %v", err))
			continue
		}
		if !pass {
			value := payload[rule.Field]
			verr.AddValue(joinPath(pathPrefix, rule.Field), rule.Message, value)
		}
	}
}

func (v *RuleValidator) evaluate(ctx RuleContext, rule Rule) (bool, error) {
	name := rule.Engine
	if name == "" {
		name = EngineExpr
	}
	engine, ok := v.engines[name]
	if !ok || engine == nil {
		return false, fmt.Errorf("settings: engine %q not registered", name)
	}
	start := time.Now()
	result, err := engine.Evaluate(ctx, rule.Expr)
	v.logger.LogEvaluation(EngineLogEvent{
		Engine:   name,
		Expr:     rule.Expr,
		Section:  ctx.Section,
		Field:    rule.Field,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return false, err
	}
	pass, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("settings: rule expr %q returned %T, want bool", rule.Expr, result)
	}
	return pass, nil
}

// normalize deep-copies doc and fills declared defaults into missing keys.
func (v *RuleValidator) normalize(doc Document) Document {
	out := doc.Clone()
	if out == nil {
		out = NewDocument()
	}
	for section, rules := range v.rules.Sections {
		if len(rules.Defaults) == 0 {
			continue
		}
		payload, ok := out[section]
		if !ok {
			payload = make(map[string]any, len(rules.Defaults))
			out[section] = payload
		}
		for key, value := range rules.Defaults {
			if _, exists := payload[key]; !exists {
				payload[key] = cloneAny(value)
			}
		}
	}
	return out
}

func joinPath(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}

// NoopValidator accepts every payload and document unchanged. Useful when
// schema ownership lives entirely elsewhere.
type NoopValidator struct{}

// ValidateSection implements Validator.
func (NoopValidator) ValidateSection(string, map[string]any) error { return nil }

// ValidateDocument implements Validator.
func (NoopValidator) ValidateDocument(doc Document) (Document, error) { return doc, nil }
