package settings

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Rule is one declarative predicate applied to a section payload. Expr must
// evaluate to a boolean; false rejects the whole section update with
// Message attached to Field.
type Rule struct {
	Field   string `toml:"field"`
	Expr    string `toml:"expr"`
	Message string `toml:"message"`
	Engine  string `toml:"engine"`
}

// SectionRules bundles everything the validator knows about one section:
// required keys, declarative rules, and defaults filled in during document
// normalization.
type SectionRules struct {
	Required []string       `toml:"required"`
	Defaults map[string]any `toml:"defaults"`
	Rules    []Rule         `toml:"rules"`
}

// RuleSet maps section names to their validation rules. Sections without an
// entry validate as-is; unknown sections always pass through.
type RuleSet struct {
	Sections map[string]SectionRules `toml:"sections"`
}

// Section returns the rules declared for name, ok=false when none exist.
func (rs RuleSet) Section(name string) (SectionRules, bool) {
	rules, ok := rs.Sections[name]
	return rules, ok
}

// LoadRules reads and validates a TOML rule file.
//
// Example:
//
//	[sections.design.defaults]
//	theme = "light"
//
//	[[sections.design.rules]]
//	field = "theme"
//	expr = 'theme in ["light", "dark"]'
//	message = "theme must be light or dark"
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("settings: read rules %q: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates TOML rule content.
func ParseRules(data []byte) (RuleSet, error) {
	var rs RuleSet
	if err := toml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("settings: parse rules: %w", err)
	}
	if err := rs.validate(); err != nil {
		return RuleSet{}, err
	}
	rs.applyDefaults()
	return rs, nil
}

func (rs RuleSet) validate() error {
	for section, rules := range rs.Sections {
		for i, rule := range rules.Rules {
			if rule.Expr == "" {
				return fmt.Errorf("settings: section %q rule %d: expr is required", section, i)
			}
			switch rule.Engine {
			case "", EngineExpr, EngineCEL:
			case EngineJS:
				if !jsEngineAvailable() {
					return fmt.Errorf("settings: section %q rule %d: js engine requires the js_eval build tag", section, i)
				}
			default:
				return fmt.Errorf("settings: section %q rule %d: unknown engine %q", section, i, rule.Engine)
			}
		}
	}
	return nil
}

func (rs *RuleSet) applyDefaults() {
	for section, rules := range rs.Sections {
		for i, rule := range rules.Rules {
			if rule.Engine == "" {
				rule.Engine = EngineExpr
			}
			if rule.Message == "" {
				rule.Message = "invalid value"
			}
			rules.Rules[i] = rule
		}
		rs.Sections[section] = rules
	}
}
