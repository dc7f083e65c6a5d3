package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sonnes/lekha/config"
	"github.com/sonnes/lekha/core"
	"github.com/urfave/cli/v3"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect and edit lekha settings",
		Description: `Settings are layered: built-in defaults, then the config file, then
LEKHA_* environment variables. 'show' prints the resolved values;
'show --stored' prints only what the file contains.`,
		Commands: []*cli.Command{
			configShowCmd(),
			configSetCmd(),
			configResetCmd(),
			configOrderCmd(),
			configPreviewCmd(),
		},
	}
}

func configShowCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print settings",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stored",
				Usage: "Print only the values stored in the config file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := config.Path()
			var lines []string
			if cmd.Bool("stored") {
				var err error
				if lines, err = config.Stored(path); err != nil {
					return err
				}
			} else {
				lines = config.Show(config.Load(path, os.Getenv))
			}
			fmt.Printf("# %s\n", path)
			for _, l := range lines {
				fmt.Println(l)
			}
			return nil
		},
	}
}

func configSetCmd() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store one or more key=value settings",
		ArgsUsage: "key=value...",
		Description: fmt.Sprintf(`An empty value removes the key from the file.

Keys: %s`, strings.Join(config.Keys(), ", ")),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return fmt.Errorf("at least one key=value is required")
			}
			return config.Set(config.Path(), cmd.Args().Slice()...)
		},
	}
}

func configResetCmd() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Remove the config file and return to defaults",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return config.Reset(config.Path())
		},
	}
}

func configOrderCmd() *cli.Command {
	return &cli.Command{
		Name:      "order",
		Usage:     "Print or store the section order",
		ArgsUsage: "[section...]",
		Description: fmt.Sprintf(`Without arguments prints the resolved order. Sections may be given as
separate arguments or comma separated.

Sections: %s`, core.JoinOrder(core.DefaultOrder)),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := config.Path()
			if cmd.NArg() == 0 {
				s := config.Load(path, os.Getenv)
				fmt.Println(core.JoinOrder(s.Render.Order))
				return nil
			}
			order := core.ParseOrder(strings.Join(cmd.Args().Slice(), ","))
			return config.SetOrder(path, order)
		},
	}
}

func configPreviewCmd() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Render a report with the current settings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Transcript to aggregate instead of the built-in sample",
			},
			&cli.StringFlag{
				Name:  "o",
				Usage: "Output format: terminal, json",
				Value: "terminal",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a := newApp()
			s := config.Load(config.Path(), os.Getenv)

			rnd, err := a.renderer(cmd.String("o"))
			if err != nil {
				return err
			}

			rep := sampleReport(s.Render)
			if file := cmd.String("file"); file != "" {
				snap, err := a.reader.ReadFile(file, s.Render.Features())
				if err != nil {
					return err
				}
				rep.SessionID = strings.TrimSuffix(filepath.Base(file), ".jsonl")
				rep.Name = "Preview"
				rep.Snapshot = snap
				rep.Branch = snap.GitBranch
				rep.Cost = a.costs.Cost(ctx, "", snap.Models)
				rep.Savings, rep.Diff = nil, nil
			}
			return rnd.Render(os.Stdout, rep)
		},
	}
}
