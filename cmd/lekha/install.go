package main

import (
	"context"
	"fmt"

	"github.com/sonnes/lekha/install"
	"github.com/urfave/cli/v3"
)

func installCmd() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Register lekha as a Claude Code hook",
		Description: `Adds a SessionStart hook that captures the rtk savings baseline and a
SessionEnd hook that prints the session report. Other settings and hooks
are left untouched; running install twice is harmless.

Without --dir the hooks go into the user settings (~/.claude/settings.json)
and apply to every project.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Project directory to install into instead of the user settings",
			},
			&cli.StringFlag{
				Name:  "command",
				Usage: "Command the hooks invoke",
				Value: "lekha",
			},
			&cli.BoolFlag{
				Name:  "uninstall",
				Usage: "Remove the lekha hooks",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := install.Config{
				Dir:     cmd.String("dir"),
				Command: cmd.String("command"),
			}
			path, err := install.SettingsPath(cfg.Dir)
			if err != nil {
				return err
			}

			if cmd.Bool("uninstall") {
				if err := install.Uninstall(cfg); err != nil {
					return err
				}
				fmt.Printf("Removed lekha hooks from %s\n", path)
				return nil
			}

			if err := install.Run(cfg); err != nil {
				return err
			}

			fmt.Println("Installed successfully.")
			fmt.Println()
			fmt.Printf("  Settings:      %s\n", path)
			fmt.Printf("  SessionStart:  %s baseline\n", cfg.Command)
			fmt.Printf("  SessionEnd:    %s report\n", cfg.Command)
			fmt.Println()
			fmt.Println("A report is printed to your terminal when each session ends.")
			fmt.Println("Run 'lekha config show' to see the settings.")
			return nil
		},
	}
}
