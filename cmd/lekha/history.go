package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sonnes/lekha/config"
	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/history"
	jsonrender "github.com/sonnes/lekha/render/json"
	"github.com/urfave/cli/v3"
)

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent session reports",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "n",
				Usage:   "Number of records to show (0 for all)",
				Value:   20,
				Aliases: []string{"limit"},
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print records as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s := config.Load(config.Path(), os.Getenv)
			store, err := history.Open(s.LogFile)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(ctx, int(cmd.Int("n")))
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}

			if cmd.Bool("json") {
				return jsonrender.New().Write(os.Stdout, records)
			}
			if len(records) == 0 {
				fmt.Printf("No sessions recorded in %s\n", s.LogFile)
				return nil
			}
			return writeHistory(os.Stdout, records)
		},
	}
}

var historyHeaders = []string{"When", "Session", "Branch", "Exit", "Requests", "Tools", "Cost"}

// writeHistory prints records as a table, newest first.
func writeHistory(w io.Writer, records []*core.Record) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})),
	)
	table.Header(historyHeaders)

	alignments := []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignRight, tw.AlignRight}
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.PerColumn = alignments
	})

	for _, r := range records {
		if err := table.Append(historyRow(r)); err != nil {
			return err
		}
	}
	return table.Render()
}

func historyRow(r *core.Record) []string {
	name := r.Name
	if name == "" {
		name = core.Truncate(r.SessionID, 8)
	}

	var requests int64
	var tools int
	if r.Snapshot != nil {
		requests = r.Snapshot.Requests()
		tools = r.Snapshot.TotalCalls()
	}

	cost := "-"
	if r.Cost != nil {
		cost = "$" + r.Cost.Amount.StringFixed(2)
		if r.Cost.Source == core.CostEstimate {
			cost = "~" + cost
		}
	}

	return []string{
		core.RelativeTime(r.Timestamp),
		core.Truncate(name, 40),
		r.Branch,
		r.Exit.String(),
		humanize.Comma(requests),
		humanize.Comma(int64(tools)),
		cost,
	}
}
