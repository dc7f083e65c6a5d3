package redact

import (
	"regexp"
	"sort"

	"github.com/sonnes/lekha/core"
)

// Config controls which rules the Redactor applies.
type Config struct {
	Secrets    bool
	PII        bool
	ExtraRules []Rule
	Allowlist  []string // regex patterns to skip
}

// Redactor scrubs the free-text fields of a Record.
type Redactor struct {
	rules     []Rule
	allowlist []*regexp.Regexp
}

// New creates a Redactor from the given config.
func New(cfg Config) *Redactor {
	var rules []Rule
	if cfg.Secrets {
		rules = append(rules, SecretRules()...)
	}
	if cfg.PII {
		rules = append(rules, PIIRules()...)
	}
	rules = append(rules, cfg.ExtraRules...)

	allowlist := make([]*regexp.Regexp, 0, len(cfg.Allowlist))
	for _, pattern := range cfg.Allowlist {
		if re, err := regexp.Compile(pattern); err == nil {
			allowlist = append(allowlist, re)
		}
	}

	return &Redactor{rules: rules, allowlist: allowlist}
}

// Transform rewrites the session name, working directory, file paths,
// tool error messages and savings breakdown of rec in place.
func (r *Redactor) Transform(rec *core.Record) error {
	if len(r.rules) == 0 {
		return nil
	}
	rec.Name = r.redactString(rec.Name)
	rec.Dir = r.redactString(rec.Dir)
	if rec.Savings != nil {
		rec.Savings.Breakdown = r.redactString(rec.Savings.Breakdown)
	}

	s := rec.Snapshot
	if s == nil {
		return nil
	}
	for i := range s.Errors {
		s.Errors[i].Message = r.redactString(s.Errors[i].Message)
	}
	s.FilesRead = rekey(s.FilesRead, r.redactString, keepTrue)
	s.FilesCreated = rekey(s.FilesCreated, r.redactString, keepTrue)
	s.FilesEdited = rekey(s.FilesEdited, r.redactString, sum)
	return nil
}

// redactString applies all rules to s. Overlapping matches resolve to
// earliest start, then longest. Allowlisted values are skipped.
func (r *Redactor) redactString(s string) string {
	if len(s) == 0 {
		return s
	}

	type replacement struct {
		start int
		end   int
		text  string
	}

	var reps []replacement
	for _, rule := range r.rules {
		for _, m := range rule.Detect(s) {
			if r.isAllowed(m.Value) {
				continue
			}
			reps = append(reps, replacement{
				start: m.Start,
				end:   m.End,
				text:  rule.Replacement(m),
			})
		}
	}

	if len(reps) == 0 {
		return s
	}

	// Sort by start position, then longest match first for ties.
	sort.Slice(reps, func(i, j int) bool {
		if reps[i].start != reps[j].start {
			return reps[i].start < reps[j].start
		}
		return reps[i].end > reps[j].end
	})

	// Apply non-overlapping replacements.
	var result []byte
	pos := 0
	for _, rep := range reps {
		if rep.start < pos {
			continue // overlaps with a previous replacement
		}
		result = append(result, s[pos:rep.start]...)
		result = append(result, rep.text...)
		pos = rep.end
	}
	result = append(result, s[pos:]...)
	return string(result)
}

func (r *Redactor) isAllowed(value string) bool {
	for _, re := range r.allowlist {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}
