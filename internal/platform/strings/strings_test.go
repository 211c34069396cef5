package strings

import "testing"

func TestIfEmpty(t *testing.T) {
	def := []string{"a", "b"}
	if got := IfEmpty(nil, def); len(got) != 2 {
		t.Fatalf("nil input should yield default, got %v", got)
	}
	in := []string{"x"}
	if got := IfEmpty(in, def); len(got) != 1 || got[0] != "x" {
		t.Fatalf("non-empty input replaced: %v", got)
	}
}

func TestMustString(t *testing.T) {
	if got := MustString("ok", "field"); got != "ok" {
		t.Fatalf("got %q", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on whitespace input")
		}
	}()
	MustString("   ", "field")
}

func TestEmptyToNil(t *testing.T) {
	if got := EmptyToNil("  "); got != "" {
		t.Fatalf("whitespace should collapse, got %q", got)
	}
	if got := EmptyToNil(" x "); got != " x " {
		t.Fatalf("content must pass through, got %q", got)
	}
}

func TestPtr(t *testing.T) {
	if Ptr("") != nil {
		t.Fatal("empty string should map to nil")
	}
	if p := Ptr("v"); p == nil || *p != "v" {
		t.Fatalf("got %v", p)
	}
}
