package model

import "testing"

func TestHasTargetAndFindTarget(t *testing.T) {
	cfg := &BuildConfig{}
	cfg.AddTarget(&Target{Name: "core", Kind: StaticLibrary})

	if !cfg.HasTarget("core") {
		t.Fatal("expected HasTarget to find the added target")
	}
	if cfg.HasTarget("app") {
		t.Fatal("did not expect HasTarget to find an undeclared target")
	}

	target, ok := cfg.FindTarget("core")
	if !ok || target.Kind != StaticLibrary {
		t.Fatalf("unexpected FindTarget result: %+v (ok=%v)", target, ok)
	}
}

func TestParseDefines(t *testing.T) {
	defines := ParseDefines([]string{"DEBUG", "VERSION=2", "EMPTY="})
	if defines["DEBUG"] != "" {
		t.Errorf("expected bare DEBUG to map to empty value, got %q", defines["DEBUG"])
	}
	if defines["VERSION"] != "2" {
		t.Errorf("expected VERSION=2, got %q", defines["VERSION"])
	}
	if v, ok := defines["EMPTY"]; !ok || v != "" {
		t.Errorf("expected EMPTY to map to empty string, got %q (ok=%v)", v, ok)
	}
}

func TestAddDependencyPreservesOrder(t *testing.T) {
	cfg := &BuildConfig{}
	cfg.AddDependency(&Dependency{Name: "zlib", Kind: DepSystem})
	cfg.AddDependency(&Dependency{Name: "curl", Kind: DepDownload, URL: "https://example.invalid/curl.tar.gz"})

	if len(cfg.Dependencies) != 2 || cfg.Dependencies[0].Name != "zlib" || cfg.Dependencies[1].Name != "curl" {
		t.Fatalf("unexpected dependency order: %+v", cfg.Dependencies)
	}
}
