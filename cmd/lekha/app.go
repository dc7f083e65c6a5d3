package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sonnes/lekha/config"
	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/cost"
	"github.com/sonnes/lekha/git"
	"github.com/sonnes/lekha/history"
	"github.com/sonnes/lekha/reader"
	"github.com/sonnes/lekha/reader/claude"
	"github.com/sonnes/lekha/redact"
	"github.com/sonnes/lekha/render"
	jsonrender "github.com/sonnes/lekha/render/json"
	"github.com/sonnes/lekha/render/terminal"
	"github.com/sonnes/lekha/savings"
)

// app wires the collaborators a report needs. Fields are swapped out in tests.
type app struct {
	reader    reader.Reader
	renderers map[string]func() render.Renderer
	costs     *cost.Estimator
	savings   *savings.Reconciler
	diffStat  func(ctx context.Context, dir string) *core.GitDiff
	branch    func(ctx context.Context, dir string) string
	now       func() time.Time
}

func newApp() *app {
	return &app{
		reader: &claude.Reader{},
		renderers: map[string]func() render.Renderer{
			"terminal": func() render.Renderer { return terminal.New() },
			"json":     func() render.Renderer { return jsonrender.New() },
		},
		costs: &cost.Estimator{Service: &cost.Command{}},
		savings: &savings.Reconciler{
			Store: &savings.Store{Dir: config.BaselineDir()},
			Probe: &savings.Command{},
		},
		diffStat: git.DiffStat,
		branch:   git.Branch,
		now:      time.Now,
	}
}

func (a *app) renderer(name string) (render.Renderer, error) {
	fn, ok := a.renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", name)
	}
	return fn(), nil
}

// buildReport aggregates the session and gathers every auxiliary value the
// renderer shows. Failures of individual sources degrade to missing data.
func (a *app) buildReport(ctx context.Context, in core.HookInput, s config.Settings) *core.Report {
	rep := &core.Report{
		SessionID: in.SessionID,
		Dir:       in.CWD,
		Exit:      core.ParseExitReason(in.Reason),
		Config:    s.Render,
	}

	path, err := a.reader.ResolveTranscript(in.SessionID, in.TranscriptPath)
	if err != nil {
		log.Warn("resolve transcript", "session", in.SessionID, "err", err)
	}
	snap := core.NewSnapshot()
	if path != "" {
		snap, err = a.reader.ReadFile(path, s.Render.Features())
		if err != nil {
			log.Warn("read transcript", "path", path, "err", err)
		}
	}
	rep.Snapshot = snap

	info, err := a.reader.LookupSession(in.SessionID, in.CWD)
	if err != nil {
		log.Debug("session index", "session", in.SessionID, "err", err)
	}
	if info != nil {
		rep.Name = info.Name
		rep.Branch = info.Branch
	}
	if rep.Branch == "" {
		rep.Branch = snap.GitBranch
	}

	// The baseline is single use, so it is consumed even for empty sessions.
	if a.savings != nil && s.RTKEnabled() && in.CWD != "" {
		rep.Savings = a.savings.Run(ctx, in.CWD)
	}
	if snap.Requests() == 0 {
		return rep
	}

	if rep.Branch == "" && in.CWD != "" {
		rep.Branch = a.branch(ctx, in.CWD)
	}
	if in.CWD != "" && s.Render.Enabled(core.SectionGit) {
		rep.Diff = a.diffStat(ctx, in.CWD)
	}
	rep.Cost = a.costs.Cost(ctx, in.SessionID, snap.Models)
	return rep
}

// record converts rep into a history record, redacting it when enabled, and
// appends it to the configured log.
func (a *app) record(ctx context.Context, rep *core.Report, s config.Settings) error {
	rec := core.NewRecord(rep, a.now())
	if s.Redact {
		if err := core.Chain(rec, newRedactor()); err != nil {
			return fmt.Errorf("redact: %w", err)
		}
	}

	store, err := history.Open(s.LogFile)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Append(ctx, rec)
}

func newRedactor() *redact.Redactor {
	return redact.New(redact.Config{Secrets: true, PII: true})
}

// readHookInput decodes the hook payload. An interactive or empty stdin
// yields a zero value.
func readHookInput(r io.Reader) (core.HookInput, error) {
	var in core.HookInput
	data, err := io.ReadAll(r)
	if err != nil {
		return in, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return in, nil
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("decode hook input: %w", err)
	}
	return in, nil
}

// reportOutput is the controlling terminal when there is one. Hook stdout is
// captured by the agent, so the dashboard goes straight to the user.
func reportOutput() (io.Writer, func()) {
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return os.Stderr, func() {}
	}
	return tty, func() { tty.Close() }
}
