package settings

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConflict indicates the writer's version token no longer matches the
// remote's current token. Recoverable by reloading; the Store reloads itself
// before surfacing it.
var ErrConflict = errors.New("settings: version conflict")

// ErrNotLoaded indicates an operation that needs a baseline document was
// invoked before Load established one.
var ErrNotLoaded = errors.New("settings: store not loaded")

// FieldError pinpoints one invalid field inside a section payload.
type FieldError struct {
	Path    string
	Message string
	Value   any
}

// Error implements the error interface.
func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationError aggregates field-level failures for a section or document
// validation pass. It is always recoverable locally: no mutation happens
// when one is returned.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch len(e.Fields) {
	case 0:
		return "settings: validation failed"
	case 1:
		return "settings: " + e.Fields[0].Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Error())
	}
	return fmt.Sprintf("settings: %d validation errors:\n  - %s", len(e.Fields), strings.Join(parts, "\n  - "))
}

// Add records a failure for the given field path.
func (e *ValidationError) Add(path, message string) {
	e.Fields = append(e.Fields, FieldError{Path: path, Message: message})
}

// AddValue records a failure alongside the offending value.
func (e *ValidationError) AddValue(path, message string, value any) {
	e.Fields = append(e.Fields, FieldError{Path: path, Message: message, Value: value})
}

// Merge appends all failures from other, prefixing their paths when prefix
// is non-empty (used to lift section errors into document scope).
func (e *ValidationError) Merge(prefix string, other *ValidationError) {
	if other == nil {
		return
	}
	for _, field := range other.Fields {
		if prefix != "" && field.Path != "" {
			field.Path = prefix + "." + field.Path
		} else if prefix != "" {
			field.Path = prefix
		}
		e.Fields = append(e.Fields, field)
	}
}

// HasErrors reports whether any failure was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// AsError returns e when failures were recorded, nil otherwise.
func (e *ValidationError) AsError() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// TransportError wraps a remote-store failure with enough context to
// diagnose which operation against which section went wrong.
type TransportError struct {
	Op      string
	Section string
	Err     error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("settings: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("settings: %s section=%s: %v", e.Op, e.Section, e.Err)
}

// Unwrap exposes the underlying transport failure.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// EvalError captures engine metadata alongside the originating rule failure.
type EvalError struct {
	Engine  string
	Expr    string
	Section string
	Err     error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("settings: %s engine expr=%q section=%s: %v", e.Engine, e.Expr, e.Section, e.Err)
}

// Unwrap exposes the originating error.
func (e *EvalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapEngineError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return err
	}
	if strings.HasPrefix(err.Error(), "settings:") {
		return err
	}
	return fmt.Errorf("settings: %s engine: %w", engine, err)
}

func wrapEvalError(engine, expr, section string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Section == "" {
			evalErr.Section = section
		}
		return evalErr
	}
	return &EvalError{
		Engine:  engine,
		Expr:    expr,
		Section: section,
		Err:     err,
	}
}
