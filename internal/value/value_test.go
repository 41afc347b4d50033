package value

import "testing"

func TestIsTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Nil, false},
		{NewBool(false), false},
		{NewBool(true), true},
		{NewNumber(0), true},
		{NewString(""), true},
		{NewArray(nil), true},
	}
	for _, c := range cases {
		if got := c.v.IsTruthy(); got != c.want {
			t.Errorf("IsTruthy(%v) = %v, want %v", Describe(c.v), got, c.want)
		}
	}
}

func TestToStringFormatsIntegersWithoutDecimal(t *testing.T) {
	if got := NewNumber(5).ToString(); got != "5" {
		t.Errorf("expected '5', got %q", got)
	}
	if got := NewNumber(5.5).ToString(); got != "5.5" {
		t.Errorf("expected '5.5', got %q", got)
	}
}

func TestToStringListOnArrayAndString(t *testing.T) {
	arr := NewArray([]Value{NewString("a"), NewNumber(2)})
	got := arr.ToStringList()
	want := []string{"a", "2"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected list: %v", got)
	}

	if got := NewString("solo").ToStringList(); len(got) != 1 || got[0] != "solo" {
		t.Fatalf("expected single-element list, got %v", got)
	}

	if got := NewNumber(1).ToStringList(); got != nil {
		t.Fatalf("expected nil for non-array/string, got %v", got)
	}
}

func TestEqualCrossTypeFallback(t *testing.T) {
	if !Equal(NewString("5"), NewString("5")) {
		t.Error("expected equal strings to be equal")
	}
	if !Equal(NewNumber(5), NewString("5")) {
		t.Error("expected number 5 and string \"5\" to be equal through the stringification fallback")
	}
	if !Equal(NewNumber(5), NewNumber(5)) {
		t.Error("expected equal numbers to be equal")
	}
	if !Equal(Nil, Nil) {
		t.Error("expected nil to equal nil")
	}
}

func TestOrderedMapLastDuplicateWins(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", NewNumber(1))
	m.Set("b", NewNumber(2))
	m.Set("a", NewNumber(3))

	if got := m.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected insertion-order keys [a b], got %v", got)
	}
	v, ok := m.Get("a")
	if !ok || v.Num != 3 {
		t.Fatalf("expected last-write-wins value 3, got %v (ok=%v)", v, ok)
	}
}
