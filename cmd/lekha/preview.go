package main

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sonnes/lekha/core"
)

// sampleReport is a representative session used by config preview.
func sampleReport(rc core.RenderConfig) *core.Report {
	end := time.Now().Truncate(time.Second)
	start := end.Add(-42*time.Minute - 17*time.Second)

	s := core.NewSnapshot()
	s.Observe(start)
	s.Observe(end)
	s.Turns = 14
	s.ActiveMs = (18*time.Minute + 5*time.Second).Milliseconds()
	s.Model("claude-opus-4-6").Add(core.ModelUsage{
		Requests:    38,
		Input:       4_210,
		Output:      21_877,
		CacheRead:   2_431_960,
		CacheCreate: 187_344,
	})
	s.Model("claude-haiku-4-5").Add(core.ModelUsage{
		Requests: 6,
		Input:    12_480,
		Output:   1_932,
	})
	s.Tools = map[string]int{
		"Read": 31, "Edit": 17, "Bash": 12, "Grep": 9, "Glob": 4,
		"Write": 2, "Task": 2, "TodoWrite": 5, "mcp__github__get_issue": 1,
	}
	s.ToolResults = 80
	s.ToolErrors = 3
	s.Errors = []core.ToolError{
		{Tool: "Bash", Message: "go test ./...: FAIL github.com/acme/api/handler 0.412s"},
		{Tool: "Edit", Message: "String to replace not found in file."},
		{Tool: "Read", Message: "File does not exist."},
	}
	s.FilesRead = map[string]bool{
		"/src/api/handler/user.go": true, "/src/api/handler/auth.go": true,
		"/src/api/go.mod": true, "/src/api/store/user.go": true,
	}
	s.FilesEdited = map[string]int{
		"/src/api/handler/user.go": 7, "/src/api/handler/user_test.go": 5,
		"/src/api/store/user.go": 3, "/src/api/store/query.sql": 2,
	}
	s.FilesCreated = map[string]bool{"/src/api/store/migrations/004_email.sql": true}
	s.LinesAdded, s.LinesRemoved = 214, 63
	s.MCPServers = map[string]int{"github": 1}
	s.SubAgents = map[string]int{"Explore": 2}
	s.PlanMode = true
	s.Prompts = 9
	s.ThinkingBlocks = 21
	s.PeakContext = 131_402
	s.GitBranch = "feat/user-email"

	return &core.Report{
		SessionID: "3f9c2a1e-5b7d-4e0f-9a61-2c8d4b7e1f05",
		Name:      "Add email verification to user signup",
		Branch:    "feat/user-email",
		Dir:       "/src/api",
		Exit:      core.ParseExitReason("prompt_input_exit"),
		Snapshot:  s,
		Cost:      &core.Cost{Amount: decimal.RequireFromString("4.1875"), Source: core.CostService},
		Savings: &core.SavingsDelta{
			Commands:    23,
			TokensSaved: 48_200,
			Percent:     71.4,
			Breakdown:   "go test(31000), git diff(9800), ls(4100), grep(3300)",
		},
		Diff:   &core.GitDiff{Files: 6, Insertions: 214, Deletions: 63},
		Config: rc,
	}
}
