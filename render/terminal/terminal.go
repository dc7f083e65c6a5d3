// Package terminal renders a session report as a sectioned dashboard.
package terminal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/sonnes/lekha/core"
)

const (
	defaultWidth = 100
	maxWidth     = 120

	topTools     = 8
	topEdits     = 5
	maxErrors    = 5
	contextLimit = 200_000
)

// sectionFunc renders one section. An empty result omits the section.
type sectionFunc func(r *core.Report, st *styles, width int) string

var sections = map[core.Section]sectionFunc{
	core.SectionMeta:     renderMeta,
	core.SectionDuration: renderDuration,
	core.SectionTools:    renderTools,
	core.SectionModels:   renderModels,
	core.SectionCache:    renderCache,
	core.SectionCost:     renderCost,
	core.SectionFiles:    renderFiles,
	core.SectionLOC:      renderLOC,
	core.SectionGit:      renderGit,
	core.SectionErrors:   renderErrors,
	core.SectionFeatures: renderFeatures,
	core.SectionRTK:      renderSavings,
	core.SectionRatio:    renderRatio,
	core.SectionThinking: renderThinking,
	core.SectionContext:  renderContext,
}

// Renderer prints a report as a dashboard, one block per section.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int
}

// New creates a terminal Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the sections named by r.Config.Order to w. Sections that are
// unknown, toggled off, or empty are skipped. A session without any API
// request gets a short notice instead.
func (rd *Renderer) Render(w io.Writer, r *core.Report) error {
	st := newStyles(w)
	width := rd.termWidth(w)

	if r.Snapshot == nil || r.Snapshot.Requests() == 0 {
		_, err := io.WriteString(w, renderEmpty(r, st))
		return err
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, s := range r.Config.Order {
		fn, ok := sections[s]
		if !ok || !r.Config.Enabled(s) {
			continue
		}
		out := fn(r, st, width)
		if out == "" {
			continue
		}
		b.WriteString(out)
		if !strings.HasSuffix(out, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func (rd *Renderer) termWidth(w io.Writer) int {
	if rd.Width > 0 {
		return rd.Width
	}
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(f.Fd()); err == nil && tw > 0 {
			return min(tw, maxWidth)
		}
	}
	return defaultWidth
}

func renderEmpty(r *core.Report, st *styles) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(st.title.Render(title(r)) + "\n")
	if meta := metaLine(r, false); meta != "" {
		b.WriteString(st.meta.Render(meta) + "\n")
	}
	b.WriteString(st.dim.Render("Empty session: no API requests were made.") + "\n\n")
	return b.String()
}

func title(r *core.Report) string {
	if r.Name != "" {
		return r.Name
	}
	if r.SessionID != "" {
		return "Session " + r.SessionID
	}
	return "Session"
}

func metaLine(r *core.Report, full bool) string {
	var parts []string
	if r.SessionID != "" {
		parts = append(parts, r.SessionID)
	}
	if r.Branch != "" {
		parts = append(parts, "⎇ "+r.Branch)
	}
	if full {
		if r.Dir != "" {
			parts = append(parts, r.Dir)
		}
		parts = append(parts, r.Exit.String())
	}
	return strings.Join(parts, "  ")
}

// line joins a padded label with its values.
func line(st *styles, label string, values ...string) string {
	return st.label.Render(label) + strings.Join(values, st.dim.Render(" · ")) + "\n"
}

func renderMeta(r *core.Report, st *styles, _ int) string {
	return st.title.Render(title(r)) + "\n" + st.meta.Render(metaLine(r, true)) + "\n"
}

func renderDuration(r *core.Report, st *styles, _ int) string {
	s := r.Snapshot
	var values []string
	if wall := s.WallDuration(); wall > 0 {
		values = append(values, st.value.Render(formatDuration(wall))+" wall")
	}
	if s.ActiveMs > 0 {
		values = append(values, st.value.Render(formatDuration(s.ActiveDuration()))+" active")
	}
	if s.Turns > 0 {
		values = append(values, st.value.Render(humanize.Comma(int64(s.Turns)))+" "+plural(s.Turns, "turn"))
	}
	if len(values) == 0 {
		return ""
	}
	return line(st, "Duration", values...)
}

func renderTools(r *core.Report, st *styles, _ int) string {
	s := r.Snapshot
	calls := s.TotalCalls()
	if calls == 0 {
		return ""
	}

	values := []string{
		st.value.Render(humanize.Comma(int64(calls))) + " " + plural(calls, "call"),
		st.good.Render(humanize.Comma(int64(s.ToolOK()))) + " ok",
	}
	if s.ToolErrors > 0 {
		values = append(values, st.bad.Render(humanize.Comma(int64(s.ToolErrors)))+" "+plural(s.ToolErrors, "error"))
	}

	var b strings.Builder
	b.WriteString(line(st, "Tools", values...))
	b.WriteString(counts(st, s.TopTools(topTools), func(n string) string { return n }))
	return b.String()
}

// counts renders ranked name/count pairs as an indented two-column list.
func counts(st *styles, cs []core.Count, name func(string) string) string {
	if len(cs) == 0 {
		return ""
	}
	names := lo.Map(cs, func(c core.Count, _ int) string { return name(c.Name) })
	w := lo.Max(lo.Map(names, func(n string, _ int) int { return ansi.StringWidth(n) }))

	var b strings.Builder
	for i, c := range cs {
		pad := strings.Repeat(" ", w-ansi.StringWidth(names[i]))
		fmt.Fprintf(&b, "%s%s%s  %s\n", strings.Repeat(" ", labelWidth), st.tool.Render(names[i]), pad, humanize.Comma(int64(c.N)))
	}
	return b.String()
}

func renderCache(r *core.Report, st *styles, _ int) string {
	u := r.Snapshot.TotalUsage()
	if u.CacheRead == 0 && u.CacheCreate == 0 {
		return ""
	}
	return line(st, "Cache",
		st.value.Render(fmt.Sprintf("%.1f%%", r.Snapshot.CacheHitRate()*100))+" hit rate",
		humanize.Comma(u.CacheRead)+" read",
		humanize.Comma(u.CacheCreate)+" written",
	)
}

func renderCost(r *core.Report, st *styles, _ int) string {
	if r.Cost == nil {
		return ""
	}
	v := st.amount.Render("$" + r.Cost.Amount.StringFixed(3))
	if r.Cost.Source == core.CostEstimate {
		v += " " + st.dim.Render("(estimated)")
	}
	return line(st, "Cost", v)
}

func renderFiles(r *core.Report, st *styles, _ int) string {
	s := r.Snapshot
	read, created, edited := len(s.ReadOnlyFiles()), len(s.CreatedFiles()), len(s.FilesEdited)
	if read == 0 && created == 0 && edited == 0 {
		return ""
	}

	var values []string
	if read > 0 {
		values = append(values, st.value.Render(humanize.Comma(int64(read)))+" read")
	}
	if edited > 0 {
		values = append(values, st.value.Render(humanize.Comma(int64(edited)))+" edited")
	}
	if created > 0 {
		values = append(values, st.value.Render(humanize.Comma(int64(created)))+" created")
	}

	var b strings.Builder
	b.WriteString(line(st, "Files", values...))
	b.WriteString(counts(st, s.TopEdits(topEdits), filepath.Base))
	return b.String()
}

func renderLOC(r *core.Report, st *styles, _ int) string {
	s := r.Snapshot
	if s.LinesAdded == 0 && s.LinesRemoved == 0 {
		return ""
	}
	return line(st, "Lines",
		st.good.Render("+"+humanize.Comma(int64(s.LinesAdded)))+" "+
			st.bad.Render("-"+humanize.Comma(int64(s.LinesRemoved))))
}

func renderGit(r *core.Report, st *styles, _ int) string {
	d := r.Diff
	if d.Empty() {
		return ""
	}
	return line(st, "Git",
		st.value.Render(humanize.Comma(int64(d.Files)))+" "+plural(d.Files, "file")+" changed",
		st.good.Render("+"+humanize.Comma(int64(d.Insertions)))+" "+
			st.bad.Render("-"+humanize.Comma(int64(d.Deletions))))
}

func renderErrors(r *core.Report, st *styles, width int) string {
	s := r.Snapshot
	if s.ToolErrors == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(line(st, "Errors", st.bad.Render(humanize.Comma(int64(s.ToolErrors)))+" tool "+plural(s.ToolErrors, "error")))
	indent := strings.Repeat(" ", labelWidth)
	for _, e := range lo.Subset(s.Errors, 0, maxErrors) {
		detail := ansi.Truncate(e.Message, max(width-labelWidth-len(e.Tool)-2, 20), "...")
		b.WriteString(indent + st.tool.Render(e.Tool) + " " + st.dim.Render(detail) + "\n")
	}
	if extra := len(s.Errors) - maxErrors; extra > 0 {
		b.WriteString(indent + st.dim.Render(fmt.Sprintf("+%d more", extra)) + "\n")
	}
	return b.String()
}

func renderFeatures(r *core.Report, st *styles, _ int) string {
	s := r.Snapshot
	if !s.HasFeatures() {
		return ""
	}

	var values []string
	if len(s.MCPServers) > 0 {
		values = append(values, "MCP "+tally(s.MCPServers))
	}
	if len(s.SubAgents) > 0 {
		values = append(values, "agents "+tally(s.SubAgents))
	}
	if len(s.Skills) > 0 {
		skills := lo.Keys(s.Skills)
		sort.Strings(skills)
		values = append(values, "skills "+strings.Join(skills, ", "))
	}
	if s.TeamCreated {
		values = append(values, "team")
	}
	if s.PlanMode {
		values = append(values, "plan mode")
	}
	return line(st, "Features", values...)
}

// tally formats m as "name(n), ..." ranked by count.
func tally(m map[string]int) string {
	ranked := lo.Map(core.Rank(m, 0), func(c core.Count, _ int) string {
		return fmt.Sprintf("%s(%d)", c.Name, c.N)
	})
	return strings.Join(ranked, ", ")
}

func renderSavings(r *core.Report, st *styles, width int) string {
	d := r.Savings
	if d == nil {
		return ""
	}

	saved := st.good.Render(humanize.Comma(d.TokensSaved)) + " tokens saved"
	if d.Percent > 0 {
		saved += fmt.Sprintf(" (%.1f%%)", d.Percent)
	}
	values := []string{
		st.value.Render(humanize.Comma(d.Commands)) + " " + plural(int(d.Commands), "command"),
		saved,
	}
	if d.Estimated {
		values = append(values, st.dim.Render("estimated"))
	}

	var b strings.Builder
	b.WriteString(line(st, "rtk", values...))
	if d.Breakdown != "" {
		b.WriteString(strings.Repeat(" ", labelWidth) + st.dim.Render(ansi.Truncate(d.Breakdown, max(width-labelWidth, 20), "...")) + "\n")
	}
	return b.String()
}

func renderRatio(r *core.Report, st *styles, _ int) string {
	s := r.Snapshot
	if s.Prompts == 0 {
		return ""
	}
	prompts := float64(s.Prompts)
	return line(st, "Ratio",
		st.value.Render(humanize.Comma(int64(s.Prompts)))+" "+plural(s.Prompts, "prompt"),
		fmt.Sprintf("%.1f tool calls/prompt", float64(s.TotalCalls())/prompts),
		fmt.Sprintf("%.1f requests/prompt", float64(s.Requests())/prompts),
	)
}

func renderThinking(r *core.Report, st *styles, _ int) string {
	n := r.Snapshot.ThinkingBlocks
	if n == 0 {
		return ""
	}
	return line(st, "Thinking", st.value.Render(humanize.Comma(int64(n)))+" "+plural(n, "block"))
}

func renderContext(r *core.Report, st *styles, _ int) string {
	peak := r.Snapshot.PeakContext
	if peak == 0 {
		return ""
	}
	pct := float64(peak) / contextLimit * 100
	return line(st, "Context",
		st.value.Render(humanize.Comma(peak))+" peak tokens",
		fmt.Sprintf("%.1f%% of %dK", pct, contextLimit/1000))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
