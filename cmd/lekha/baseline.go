package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/sonnes/lekha/config"
	"github.com/urfave/cli/v3"
)

func baselineCmd() *cli.Command {
	return &cli.Command{
		Name:  "baseline",
		Usage: "Capture the rtk savings report at session start",
		Description: `Runs as a Claude Code SessionStart hook. The snapshot is stored per
working directory and consumed by the next 'lekha report' for the same
directory. Does nothing when rtk tracking is disabled or rtk is missing.`,
		Flags: hookFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s := config.Load(config.Path(), os.Getenv)
			if s.Skip || !s.RTKEnabled() {
				return nil
			}

			closeLog := hookLog()
			defer closeLog()

			in := hookInput(cmd)
			if err := newApp().savings.Capture(ctx, in.CWD); err != nil {
				log.Warn("capture savings baseline", "cwd", in.CWD, "err", err)
			}
			return nil
		},
	}
}
