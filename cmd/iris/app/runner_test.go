package app

import (
	"testing"

	"github.com/irisbuild/iris/internal/model"
	"github.com/irisbuild/iris/internal/secrets"
)

func TestParseSetVars(t *testing.T) {
	vars, err := parseSetVars([]string{"buildtype=release", "prefix=/usr/local"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vars["buildtype"] != "release" || vars["prefix"] != "/usr/local" {
		t.Fatalf("unexpected vars: %+v", vars)
	}
}

func TestParseSetVarsRejectsMissingEquals(t *testing.T) {
	if _, err := parseSetVars([]string{"justakey"}); err == nil {
		t.Fatal("expected an error for a --set entry without '='")
	}
}

// fakeSecretsManager is an in-memory secrets.Manager for exercising
// registryAuthHeaders without touching a real OS credential store.
type fakeSecretsManager struct {
	values map[string]string
}

func newFakeSecretsManager() *fakeSecretsManager {
	return &fakeSecretsManager{values: make(map[string]string)}
}

func (f *fakeSecretsManager) key(namespace, k string) string { return namespace + ":" + k }

func (f *fakeSecretsManager) Set(namespace, key, value string) error {
	f.values[f.key(namespace, key)] = value
	return nil
}

func (f *fakeSecretsManager) Get(namespace, key string) (string, error) {
	v, ok := f.values[f.key(namespace, key)]
	if !ok {
		return "", secrets.ErrSecretNotFound
	}
	return v, nil
}

func (f *fakeSecretsManager) Delete(namespace, key string) error {
	delete(f.values, f.key(namespace, key))
	return nil
}

func (f *fakeSecretsManager) Exists(namespace, key string) (bool, error) {
	_, ok := f.values[f.key(namespace, key)]
	return ok, nil
}

func (f *fakeSecretsManager) List(namespace string) ([]string, error) { return nil, nil }

func (f *fakeSecretsManager) ListNamespaces() ([]string, error) { return nil, nil }

func TestRegistryAuthHeadersPrefersDependencyNamespace(t *testing.T) {
	mgr := newFakeSecretsManager()
	_ = mgr.Set("curl", "registry_token", "dep-specific-token")
	_ = mgr.Set("iris", "registry_token", "shared-token")

	headers := registryAuthHeaders(mgr, "curl")
	if headers["Authorization"] != "Bearer dep-specific-token" {
		t.Fatalf("expected the dependency-specific token to win, got %q", headers["Authorization"])
	}
}

func TestRegistryAuthHeadersFallsBackToSharedNamespace(t *testing.T) {
	mgr := newFakeSecretsManager()
	_ = mgr.Set("iris", "registry_token", "shared-token")

	headers := registryAuthHeaders(mgr, "zlib")
	if headers["Authorization"] != "Bearer shared-token" {
		t.Fatalf("expected the shared token as a fallback, got %q", headers["Authorization"])
	}
}

func TestRegistryAuthHeadersNilWithoutAnyToken(t *testing.T) {
	mgr := newFakeSecretsManager()
	if headers := registryAuthHeaders(mgr, "zlib"); headers != nil {
		t.Fatalf("expected no headers, got %v", headers)
	}
	if headers := registryAuthHeaders(nil, "zlib"); headers != nil {
		t.Fatalf("expected no headers with a nil manager, got %v", headers)
	}
}

func TestCacheIdentityStableAndOrderIndependent(t *testing.T) {
	cfg := &model.BuildConfig{Compiler: model.Compiler{CC: "cc", CXX: "c++", GlobalFlags: []string{"-Wall"}}}
	t1 := &model.Target{Name: "core", Sources: []string{"a.c", "b.c"}, Flags: []string{"-O2"}}
	t2 := &model.Target{Name: "core", Sources: []string{"b.c", "a.c"}, Flags: []string{"-O2"}}

	key1, input1, cmd1 := cacheIdentity(cfg, t1)
	key2, input2, cmd2 := cacheIdentity(cfg, t2)

	if key1 != key2 || input1 != input2 || cmd1 != cmd2 {
		t.Fatal("expected cacheIdentity to be independent of source declaration order")
	}

	t3 := &model.Target{Name: "core", Sources: []string{"a.c", "b.c", "c.c"}, Flags: []string{"-O2"}}
	key3, input3, _ := cacheIdentity(cfg, t3)
	if key3 == key1 || input3 == input1 {
		t.Fatal("expected a changed source list to change the cache identity")
	}
}
