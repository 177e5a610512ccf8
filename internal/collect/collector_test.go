package collect

import (
	"context"
	"testing"
)

func stub(name string) Func {
	return NewFunc(name, func(ctx context.Context) (any, error) { return name, nil })
}

func TestSubset(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"alpha", "bravo", "charlie"} {
		reg.Register(stub(name))
	}

	only, err := reg.Subset([]string{"bravo", "alpha"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := only.Names(); len(got) != 2 || got[0] != "alpha" || got[1] != "bravo" {
		t.Errorf("unexpected subset: %v", got)
	}

	excluded, err := reg.Subset(nil, []string{"charlie"})
	if err != nil {
		t.Fatal(err)
	}
	if got := excluded.Names(); len(got) != 2 || got[1] != "bravo" {
		t.Errorf("unexpected exclusion result: %v", got)
	}

	// The receiver is untouched.
	if reg.Len() != 3 {
		t.Errorf("subset mutated the source registry: %v", reg.Names())
	}
}

func TestSubsetUnknownName(t *testing.T) {
	reg := NewRegistry()
	reg.Register(stub("alpha"))

	if _, err := reg.Subset([]string{"missing"}, nil); err == nil {
		t.Error("expected error for unknown name in only list")
	}
	if _, err := reg.Subset(nil, []string{"missing"}); err == nil {
		t.Error("expected error for unknown name in exclude list")
	}
}
