package settings

import (
	"strings"
	"testing"
)

func TestFunctionRegistryRegisterAndCall(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("double", func(args ...any) (any, error) {
		return args[0].(int) * 2, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := registry.Call("double", 21)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if result != 42 {
		t.Fatalf("result = %v", result)
	}

	// lookup is case-insensitive
	if _, err := registry.Call("DOUBLE", 1); err != nil {
		t.Fatalf("case-insensitive call: %v", err)
	}
}

func TestFunctionRegistryRejectsDuplicates(t *testing.T) {
	registry := NewFunctionRegistry()
	fn := func(...any) (any, error) { return nil, nil }
	if err := registry.Register("fn", fn); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("FN", fn); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestFunctionRegistryRejectsInvalidInput(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatal("empty name should fail")
	}
	if err := registry.Register("nilfn", nil); err == nil {
		t.Fatal("nil function should fail")
	}
}

func TestFunctionRegistryCallUnknown(t *testing.T) {
	registry := NewFunctionRegistry()
	_, err := registry.Call("missing")
	if err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Fatalf("expected not-registered error, got %v", err)
	}
}

func TestFunctionRegistryCloneIsIndependent(t *testing.T) {
	registry := NewFunctionRegistry()
	fn := func(...any) (any, error) { return "ok", nil }
	if err := registry.Register("original", fn); err != nil {
		t.Fatalf("register: %v", err)
	}

	clone := registry.Clone()
	if err := clone.Register("extra", fn); err != nil {
		t.Fatalf("register on clone: %v", err)
	}

	if _, err := registry.Call("extra"); err == nil {
		t.Fatal("clone registration leaked into the source registry")
	}
	if _, err := clone.Call("original"); err != nil {
		t.Fatalf("clone lost the original function: %v", err)
	}

	var nilRegistry *FunctionRegistry
	if nilRegistry.Clone() != nil {
		t.Fatal("nil registry should clone to nil")
	}
}

func TestFunctionRegistryNamesSorted(t *testing.T) {
	registry := NewFunctionRegistry()
	fn := func(...any) (any, error) { return nil, nil }
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(name, fn); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	names := registry.Names()
	if len(names) != 3 || names[0] != "alpha" || names[2] != "zeta" {
		t.Fatalf("names = %v", names)
	}
}
