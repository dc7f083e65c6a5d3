package terminal

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/samber/lo"
	"github.com/sonnes/lekha/core"
)

var modelHeaders = []string{"Model", "Requests", "Input", "Output", "Cache read", "Cache write"}

func renderModels(r *core.Report, st *styles, _ int) string {
	models := r.Snapshot.Models
	if len(models) == 0 {
		return ""
	}
	names := lo.Keys(models)
	sort.Strings(names)

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})),
	)
	table.Header(modelHeaders)

	alignments := make([]tw.Align, len(modelHeaders))
	for i := range alignments {
		alignments[i] = tw.AlignRight
	}
	alignments[0] = tw.AlignLeft
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.PerColumn = alignments
	})

	for _, name := range names {
		u := models[name]
		if err := table.Append([]string{
			name,
			humanize.Comma(u.Requests),
			humanize.Comma(u.Input),
			humanize.Comma(u.Output),
			humanize.Comma(u.CacheRead),
			humanize.Comma(u.CacheCreate),
		}); err != nil {
			log.Debug("models table row", "model", name, "err", err)
			return ""
		}
	}
	if err := table.Render(); err != nil {
		log.Debug("models table", "err", err)
		return ""
	}

	var b strings.Builder
	b.WriteString(line(st, "Models"))
	for _, row := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		b.WriteString(strings.Repeat(" ", labelWidth) + st.dim.Render(row) + "\n")
	}
	return b.String()
}
