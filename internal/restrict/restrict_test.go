package restrict

import (
	"testing"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestModeFromEnv(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want Mode
	}{
		{"normal", nil, Mode{}},
		{"hosted", map[string]string{EnvHosted: "1"}, Mode{Hosted: true}},
		{"hosted anonymous", map[string]string{EnvHosted: "1", EnvAnonymous: "1"}, Mode{Hosted: true, Anonymous: true}},
		{"anonymous without hosted is ignored", map[string]string{EnvAnonymous: "1"}, Mode{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModeFromEnv(fakeEnv(tt.vars)); got != tt.want {
				t.Errorf("ModeFromEnv() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestModeKey(t *testing.T) {
	if got := (Mode{}).Key(); got != "normal" {
		t.Errorf("normal mode key = %q", got)
	}
	if got := (Mode{Hosted: true}).Key(); got != "hosted" {
		t.Errorf("hosted mode key = %q", got)
	}
	if got := (Mode{Hosted: true, Anonymous: true}).Key(); got != "hosted-anonymous" {
		t.Errorf("hosted-anonymous mode key = %q", got)
	}
}

func TestLoad(t *testing.T) {
	p, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(p.rules.Universal) == 0 || len(p.rules.Hosted) == 0 || len(p.rules.Anonymous) == 0 {
		t.Fatalf("embedded rules incomplete: %+v", p.rules)
	}
}

func TestUniversalRestrictions(t *testing.T) {
	p := mustLoad(t)
	modes := []Mode{{}, {Hosted: true}, {Hosted: true, Anonymous: true}}
	for _, mode := range modes {
		for _, path := range []string{"shell", "completion", "version", "config:edit"} {
			if !p.IsRestricted(path, mode) {
				t.Errorf("%q should be restricted in mode %s", path, mode.Key())
			}
		}
	}
}

func TestNormalModeOnlyUniversal(t *testing.T) {
	p := mustLoad(t)
	for _, path := range []string{"accounts", "accounts:login", "apps:list", "config:show", "channels:publish"} {
		if p.IsRestricted(path, Mode{}) {
			t.Errorf("%q should not be restricted in normal mode", path)
		}
	}
}

func TestHostedModeRestrictsAccountSurface(t *testing.T) {
	p := mustLoad(t)
	mode := Mode{Hosted: true}

	restricted := []string{"accounts", "accounts:login", "accounts:switch", "config", "config:show"}
	for _, path := range restricted {
		if !p.IsRestricted(path, mode) {
			t.Errorf("%q should be restricted in hosted mode", path)
		}
	}
	allowed := []string{"channels:publish", "apps:list", "bench:publisher", "auth:which"}
	for _, path := range allowed {
		if p.IsRestricted(path, mode) {
			t.Errorf("%q should not be restricted in hosted mode", path)
		}
	}
}

func TestAnonymousRulesAreAdditive(t *testing.T) {
	p := mustLoad(t)
	mode := Mode{Hosted: true, Anonymous: true}

	// The hosted set still applies.
	for _, path := range []string{"accounts:login", "config:show"} {
		if !p.IsRestricted(path, mode) {
			t.Errorf("hosted rule for %q must survive in anonymous mode", path)
		}
	}
	// The anonymous set applies on top.
	for _, path := range []string{"apps", "apps:list", "bench:publisher", "integrations:list", "queues:create", "logs:tail", "stats:app"} {
		if !p.IsRestricted(path, mode) {
			t.Errorf("%q should be restricted in anonymous mode", path)
		}
	}
	// The realtime core stays available.
	for _, path := range []string{"channels", "channels:publish", "channels:subscribe", "auth:which", "status"} {
		if p.IsRestricted(path, mode) {
			t.Errorf("%q should stay available in anonymous mode", path)
		}
	}
}

func TestWildcardMatchesPrefixItself(t *testing.T) {
	p := &Policy{rules: ruleSet{Universal: []string{"queues:*"}}}
	if !p.IsRestricted("queues", Mode{}) {
		t.Error("wildcard should match the bare prefix")
	}
	if !p.IsRestricted("queues:create", Mode{}) {
		t.Error("wildcard should match children")
	}
	if p.IsRestricted("queuestats", Mode{}) {
		t.Error("wildcard must not match on a partial segment")
	}
}

func TestFilter(t *testing.T) {
	p := mustLoad(t)
	mode := Mode{Hosted: true}

	names := []string{"accounts", "apps", "channels", "config", "status"}
	got := p.Filter(names, "", mode)
	want := []string{"apps", "channels", "status"}
	if len(got) != len(want) {
		t.Fatalf("Filter() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Filter()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFilterWithPrefix(t *testing.T) {
	p := mustLoad(t)
	got := p.Filter([]string{"show", "set", "edit"}, "config", Mode{})
	want := []string{"show", "set"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

func mustLoad(t *testing.T) *Policy {
	t.Helper()
	p, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return p
}
