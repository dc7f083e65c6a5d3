package savings

import (
	"regexp"
	"strconv"
	"strings"
)

// Labels of the summary fields in `rtk gain` output.
const (
	labelCommands    = "Total commands"
	labelInput       = "Input tokens"
	labelOutput      = "Output tokens"
	labelSaved       = "Tokens saved"
	labelByCommand   = "By Command"
	maxCommandLength = 20
)

// numberRE matches a count such as 1,234 or 5.2M.
var numberRE = regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]+)?)([KMB])?`)

// columnRE separates table columns, which are padded with two or more spaces.
var columnRE = regexp.MustCompile(`\s{2,}`)

// Report holds the numbers extracted from one `rtk gain` report.
type Report struct {
	Commands     int64
	InputTokens  int64
	OutputTokens int64
	TokensSaved  int64
	ByCommand    map[string]int64
}

// Parse extracts the summary fields and the per-command table from report
// text. Fields that are absent parse as zero.
func Parse(text string) Report {
	lines := strings.Split(text, "\n")
	return Report{
		Commands:     field(lines, labelCommands),
		InputTokens:  field(lines, labelInput),
		OutputTokens: field(lines, labelOutput),
		TokensSaved:  field(lines, labelSaved),
		ByCommand:    byCommand(lines),
	}
}

// field finds the first line containing label and returns the first number
// that follows it.
func field(lines []string, label string) int64 {
	for _, line := range lines {
		i := strings.Index(line, label)
		if i < 0 {
			continue
		}
		n, _ := parseNumber(line[i+len(label):])
		return n
	}
	return 0
}

// parseNumber returns the first number in s, scaled by its K, M or B suffix.
func parseNumber(s string) (int64, bool) {
	m := numberRE.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "K":
		v *= 1e3
	case "M":
		v *= 1e6
	case "B":
		v *= 1e9
	}
	return int64(v + 0.5), true
}

// byCommand reads the rows of the table that follows the "By Command"
// heading. Each row starts with the command and its run count.
func byCommand(lines []string) map[string]int64 {
	counts := make(map[string]int64)
	start := -1
	for i, line := range lines {
		if strings.Contains(line, labelByCommand) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return counts
	}

	for _, line := range lines[start:] {
		cols := columnRE.Split(strings.TrimSpace(line), -1)
		if len(cols) < 2 || cols[0] == "" {
			continue
		}
		n, ok := parseNumber(cols[1])
		if !ok || strings.TrimLeft(cols[1], "0123456789,.KMB") != "" {
			continue
		}
		counts[cols[0]] += n
	}
	return counts
}
