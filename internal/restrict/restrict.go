// Package restrict decides which commands are visible and executable in the
// interactive shell for a given runtime mode. Rules are data, loaded once at
// startup from an embedded document and never mutated.
package restrict

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// Env var names consumed when deriving the mode. These are read-only inputs;
// the mode itself is an explicit value passed into every policy call.
const (
	EnvHosted    = "BEAM_HOSTED_MODE"
	EnvAnonymous = "BEAM_ANONYMOUS_MODE"
)

// Mode describes the runtime context of a shell session. The zero value is
// normal (non-hosted) mode.
type Mode struct {
	// Hosted marks a web-embedded session with a reduced command surface.
	Hosted bool
	// Anonymous marks an unauthenticated hosted session. Anonymous implies
	// further restrictions on top of the hosted set, never instead of it.
	Anonymous bool
}

// ModeFromEnv derives a Mode from the environment. getenv is injected so the
// derivation stays a pure function of its inputs.
func ModeFromEnv(getenv func(string) string) Mode {
	hosted := getenv(EnvHosted) != ""
	return Mode{
		Hosted:    hosted,
		Anonymous: hosted && getenv(EnvAnonymous) != "",
	}
}

// Key returns a stable serialization of the mode, suitable as a cache key.
func (m Mode) Key() string {
	switch {
	case m.Hosted && m.Anonymous:
		return "hosted-anonymous"
	case m.Hosted:
		return "hosted"
	default:
		return "normal"
	}
}

type ruleSet struct {
	Universal []string `yaml:"universal"`
	Hosted    []string `yaml:"hosted"`
	Anonymous []string `yaml:"anonymous"`
}

// Policy evaluates restriction rules against command paths.
type Policy struct {
	rules ruleSet
}

// Load parses the embedded rule document. It is called once at shell startup.
func Load() (*Policy, error) {
	var rs ruleSet
	if err := yaml.Unmarshal(rulesYAML, &rs); err != nil {
		return nil, fmt.Errorf("parse restriction rules: %w", err)
	}
	return &Policy{rules: rs}, nil
}

// IsRestricted reports whether the colon-joined command path is restricted
// in mode. A path is restricted when it matches any rule active for the
// mode, by exact equality or prefix wildcard.
func (p *Policy) IsRestricted(path string, mode Mode) bool {
	if matchAny(p.rules.Universal, path) {
		return true
	}
	if mode.Hosted && matchAny(p.rules.Hosted, path) {
		return true
	}
	if mode.Anonymous && matchAny(p.rules.Anonymous, path) {
		return true
	}
	return false
}

// Filter returns the names whose full path (prefix + name) is not restricted
// in mode. prefix is the colon-joined parent path, empty for top level.
// Order is preserved.
func (p *Policy) Filter(names []string, prefix string, mode Mode) []string {
	var out []string
	for _, name := range names {
		path := name
		if prefix != "" {
			path = prefix + ":" + name
		}
		if !p.IsRestricted(path, mode) {
			out = append(out, name)
		}
	}
	return out
}

// matchAny reports whether path matches one of the patterns. A "prefix:*"
// pattern matches "prefix" itself and anything under "prefix:".
func matchAny(patterns []string, path string) bool {
	for _, pat := range patterns {
		if prefix, ok := strings.CutSuffix(pat, ":*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+":") {
				return true
			}
			continue
		}
		if path == pat {
			return true
		}
	}
	return false
}
