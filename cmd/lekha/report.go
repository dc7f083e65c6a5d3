package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/sonnes/lekha/config"
	"github.com/sonnes/lekha/core"
	"github.com/urfave/cli/v3"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print the end-of-session dashboard and append it to history",
		Description: `Runs as a Claude Code SessionEnd hook. The hook payload is read from
stdin; flags override its fields. The dashboard is written to the
controlling terminal, falling back to stderr.

The command always exits 0 so a failure never blocks the agent.`,
		Flags: hookFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s := config.Load(config.Path(), os.Getenv)
			if s.Skip {
				return nil
			}

			closeLog := hookLog()
			defer closeLog()

			in := hookInput(cmd)
			a := newApp()
			rep := a.buildReport(ctx, in, s)

			out, closeOut := reportOutput()
			defer closeOut()
			if err := a.renderers["terminal"]().Render(out, rep); err != nil {
				log.Error("render report", "session", in.SessionID, "err", err)
			}

			if err := a.record(ctx, rep, s); err != nil {
				log.Error("append history", "path", s.LogFile, "err", err)
			}
			return nil
		},
	}
}

// hookFlags override fields of the hook payload.
func hookFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "session",
			Usage: "Session ID",
		},
		&cli.StringFlag{
			Name:  "transcript",
			Usage: "Path to the session transcript",
		},
		&cli.StringFlag{
			Name:  "cwd",
			Usage: "Working directory of the session",
		},
		&cli.StringFlag{
			Name:  "reason",
			Usage: "Session end reason, e.g. clear, logout, prompt_input_exit",
		},
	}
}

// hookInput merges the stdin payload with command flags. Flags win.
func hookInput(cmd *cli.Command) core.HookInput {
	var in core.HookInput
	if !term.IsTerminal(os.Stdin.Fd()) {
		var err error
		if in, err = readHookInput(os.Stdin); err != nil {
			log.Warn("hook input", "err", err)
		}
	}
	overrideInput(&in, cmd.String("session"), cmd.String("transcript"), cmd.String("cwd"), cmd.String("reason"))
	if in.CWD == "" {
		in.CWD, _ = os.Getwd()
	}
	return in
}

func overrideInput(in *core.HookInput, session, transcript, cwd, reason string) {
	if session != "" {
		in.SessionID = session
	}
	if transcript != "" {
		in.TranscriptPath = transcript
	}
	if cwd != "" {
		in.CWD = cwd
	}
	if reason != "" {
		in.Reason = reason
	}
}
