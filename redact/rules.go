// Package redact scrubs secrets and personal data from session records
// before they are printed or written to history.
package redact

import (
	"fmt"
	"regexp"
)

// Rule detects sensitive data in a string and provides a replacement.
type Rule interface {
	Name() string
	Kind() string
	Detect(s string) []Match
	Replacement(m Match) string
}

// Match represents a detected occurrence within a string.
type Match struct {
	Start int
	End   int
	Value string
}

type regexRule struct {
	name    string
	kind    string
	pattern *regexp.Regexp

	// with replaces the match instead of the [REDACTED:name] marker.
	with string
}

func (r *regexRule) Name() string { return r.name }
func (r *regexRule) Kind() string { return r.kind }

func (r *regexRule) Detect(s string) []Match {
	locs := r.pattern.FindAllStringIndex(s, -1)
	matches := make([]Match, len(locs))
	for i, loc := range locs {
		matches[i] = Match{Start: loc[0], End: loc[1], Value: s[loc[0]:loc[1]]}
	}
	return matches
}

func (r *regexRule) Replacement(_ Match) string {
	if r.with != "" {
		return r.with
	}
	return fmt.Sprintf("[REDACTED:%s]", r.name)
}

func secret(name, pattern string) *regexRule {
	return &regexRule{name: name, kind: "secret", pattern: regexp.MustCompile(pattern)}
}

func pii(name, pattern string) *regexRule {
	return &regexRule{name: name, kind: "pii", pattern: regexp.MustCompile(pattern)}
}

// SecretRules returns the built-in secret detection rules. Only tokens short
// enough to survive in a session name or a truncated error line are listed.
func SecretRules() []Rule {
	return []Rule{
		secret("aws_key", `AKIA[0-9A-Z]{16}`),
		secret("anthropic_key", `sk-ant-[a-zA-Z0-9_\-]{20,}`),
		secret("api_key", `(?:sk-[a-zA-Z0-9]{32,}|gh[po]_[a-zA-Z0-9]{36,}|glpat-[a-zA-Z0-9\-]{20,})`),
		secret("connection_string", `(?:postgres|mongodb|mysql|redis)://[^\s"'`+"`"+`]+`),
		secret("jwt", `eyJ[A-Za-z0-9\-_]+\.eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_.+/=]+`),
	}
}

// PIIRules returns the built-in PII detection rules. Home directories are
// folded to "~" rather than marked.
func PIIRules() []Rule {
	home := pii("home_dir", `(?:/home|/Users)/[^/\s]+`)
	home.with = "~"
	return []Rule{
		pii("email", `[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		pii("ipv4", `\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`),
		home,
	}
}
