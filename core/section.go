package core

import "strings"

// Section identifies one block of the rendered report.
type Section string

const (
	SectionMeta     Section = "meta"
	SectionDuration Section = "duration"
	SectionTools    Section = "tools"
	SectionModels   Section = "models"
	SectionCache    Section = "cache"
	SectionCost     Section = "cost"

	SectionFiles    Section = "files"
	SectionLOC      Section = "loc"
	SectionGit      Section = "git"
	SectionErrors   Section = "errors"
	SectionFeatures Section = "features"
	SectionRTK      Section = "rtk"
	SectionRatio    Section = "ratio"
	SectionThinking Section = "thinking"
	SectionContext  Section = "context"
)

// DefaultOrder is the built-in rendering order and also the full set of
// known sections.
var DefaultOrder = []Section{
	SectionMeta,
	SectionDuration,
	SectionTools,
	SectionModels,
	SectionCache,
	SectionCost,
	SectionFiles,
	SectionLOC,
	SectionGit,
	SectionErrors,
	SectionFeatures,
	SectionRTK,
	SectionRatio,
	SectionThinking,
	SectionContext,
}

// Togglable lists the sections that can be switched off.
var Togglable = []Section{
	SectionFiles,
	SectionGit,
	SectionErrors,
	SectionLOC,
	SectionFeatures,
	SectionRTK,
	SectionRatio,
	SectionThinking,
	SectionContext,
}

// AlwaysOn reports whether s is rendered regardless of toggles.
func (s Section) AlwaysOn() bool {
	switch s {
	case SectionMeta, SectionDuration, SectionTools, SectionModels, SectionCache, SectionCost:
		return true
	}
	return false
}

// Known reports whether s names a section.
func (s Section) Known() bool {
	for _, k := range DefaultOrder {
		if k == s {
			return true
		}
	}
	return false
}

// DefaultToggles returns the built-in toggle state for every togglable section.
func DefaultToggles() map[Section]bool {
	return map[Section]bool{
		SectionFiles:    true,
		SectionGit:      true,
		SectionErrors:   true,
		SectionLOC:      true,
		SectionFeatures: true,
		SectionRTK:      true,
		SectionRatio:    false,
		SectionThinking: false,
		SectionContext:  false,
	}
}

// ParseOrder splits a comma-separated section list. Names are trimmed and
// lowercased; empty entries are dropped. Unknown names are kept so callers
// can decide whether to reject or skip them.
func ParseOrder(s string) []Section {
	var order []Section
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		order = append(order, Section(part))
	}
	return order
}

// JoinOrder is the inverse of ParseOrder.
func JoinOrder(order []Section) string {
	parts := make([]string, len(order))
	for i, s := range order {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

// RenderConfig is the resolved section state for one run.
type RenderConfig struct {
	Toggles map[Section]bool `json:"toggles"`
	Order   []Section        `json:"order"`
}

// DefaultRenderConfig returns the built-in section state.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Toggles: DefaultToggles(),
		Order:   append([]Section(nil), DefaultOrder...),
	}
}

// Enabled reports whether s should be consulted when rendering.
func (c RenderConfig) Enabled(s Section) bool {
	return s.AlwaysOn() || c.Toggles[s]
}

// Features derives the aggregation work needed by the enabled sections.
func (c RenderConfig) Features() Features {
	return Features{
		LOC:          c.Enabled(SectionLOC),
		FeatureUsage: c.Enabled(SectionFeatures),
		ErrorDetail:  c.Enabled(SectionErrors),
		Thinking:     c.Enabled(SectionThinking),
		PeakContext:  c.Enabled(SectionContext),
	}
}

// Features selects optional work during aggregation. Disabled features leave
// their counters at zero.
type Features struct {
	LOC          bool
	FeatureUsage bool
	ErrorDetail  bool
	Thinking     bool
	PeakContext  bool
}

// AllFeatures enables every optional statistic.
func AllFeatures() Features {
	return Features{LOC: true, FeatureUsage: true, ErrorDetail: true, Thinking: true, PeakContext: true}
}
