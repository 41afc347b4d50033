package cache

import "testing"

func TestGenerateKeyIsOrderIndependent(t *testing.T) {
	a := GenerateKey("app", []string{"a.cpp", "b.cpp"}, []string{"-O2", "-Wall"}, "gcc-13")
	b := GenerateKey("app", []string{"b.cpp", "a.cpp"}, []string{"-Wall", "-O2"}, "gcc-13")
	if a != b {
		t.Fatalf("expected order-independent keys, got %q and %q", a, b)
	}
}

func TestGenerateKeyDiffersByInputs(t *testing.T) {
	a := GenerateKey("app", []string{"a.cpp"}, []string{"-O2"}, "gcc-13")
	b := GenerateKey("app", []string{"a.cpp"}, []string{"-O3"}, "gcc-13")
	if a == b {
		t.Fatal("expected different flags to produce different keys")
	}
}

func TestDisabledManagerAlwaysMisses(t *testing.T) {
	m := &Manager{disabled: true}
	_, found, err := m.Get("target:anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected a disabled manager to always report a miss")
	}
	if err := m.Store("target:anything", Entry{}); err != nil {
		t.Fatalf("unexpected error storing into a disabled manager: %v", err)
	}
}
